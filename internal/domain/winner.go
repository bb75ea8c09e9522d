package domain

import "time"

// Winner links one prize to the ticket that won it. At most one winner
// exists per (event, prize); a participant wins at most once per event.
// Winners are never mutated, only created by the draw engine or removed
// by explicit administrative deletion.
type Winner struct {
	ID            string
	EventID       string
	PrizeID       string
	TicketID      string
	ParticipantID string
	TicketNumber  int
	DrawnAt       time.Time
}
