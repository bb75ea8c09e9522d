package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

// DrawRunner is the minimal interface needed for draw endpoints.
type DrawRunner interface {
	DrawWinner(ctx context.Context, eventID, prizeID string) (domain.Winner, error)
	ListWinners(ctx context.Context, eventID string) ([]domain.Winner, error)
	DeleteWinner(ctx context.Context, eventID, winnerID string) error
}

// HandleDrawWinner returns an HTTP handler for
// POST /events/{eventID}/prizes/{prizeID}/draw.
func HandleDrawWinner(svc DrawRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		winner, err := svc.DrawWinner(r.Context(), r.PathValue("eventID"), r.PathValue("prizeID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newWinnerResponse(winner))
	}
}

// HandleListWinners returns an HTTP handler for GET /events/{eventID}/winners.
func HandleListWinners(svc DrawRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		winners, err := svc.ListWinners(r.Context(), r.PathValue("eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := make([]winnerResponse, 0, len(winners))
		for _, winner := range winners {
			resp = append(resp, newWinnerResponse(winner))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleDeleteWinner returns an HTTP handler for
// DELETE /events/{eventID}/winners/{winnerID}, which voids a draw so the
// prize can be drawn again.
func HandleDeleteWinner(svc DrawRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteWinner(r.Context(), r.PathValue("eventID"), r.PathValue("winnerID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type winnerResponse struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	PrizeID       string    `json:"prize_id"`
	TicketID      string    `json:"ticket_id"`
	ParticipantID string    `json:"participant_id"`
	TicketNumber  int       `json:"ticket_number"`
	DrawnAt       time.Time `json:"drawn_at"`
}

func newWinnerResponse(winner domain.Winner) winnerResponse {
	return winnerResponse{
		ID:            winner.ID,
		EventID:       winner.EventID,
		PrizeID:       winner.PrizeID,
		TicketID:      winner.TicketID,
		ParticipantID: winner.ParticipantID,
		TicketNumber:  winner.TicketNumber,
		DrawnAt:       winner.DrawnAt,
	}
}
