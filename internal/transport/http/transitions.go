package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

// EventTransitioner is the minimal interface needed to move an event
// through its lifecycle.
type EventTransitioner interface {
	Transition(ctx context.Context, eventID string, target domain.Status) (domain.Event, error)
}

// HandleTransitionEvent returns an HTTP handler for
// POST /events/{eventID}/transition.
func HandleTransitionEvent(svc EventTransitioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		target, err := domain.ParseStatus(req.Target)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
			return
		}

		event, err := svc.Transition(r.Context(), r.PathValue("eventID"), target)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

type transitionRequest struct {
	Target string `json:"target"`
}
