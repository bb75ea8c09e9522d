package domain

import (
	"fmt"
	"time"
)

// Ticket is one generated, uniquely numbered entry belonging to a
// participant. Numbers are unique per event and fall inside the range of
// the ticket's region allocation. A ticket is immutable once created
// except for the validated flag.
type Ticket struct {
	ID            string
	EventID       string
	ParticipantID string
	Region        string
	Number        int
	Code          string
	Validated     bool
	AssignedAt    time.Time
	CreatedAt     time.Time
}

// TicketCode builds the human-readable code printed on a ticket:
// prefix, region zero-padded to 2 characters, number zero-padded to 5.
func TicketCode(prefix, region string, number int) string {
	for len(region) < 2 {
		region = "0" + region
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, region, number)
}
