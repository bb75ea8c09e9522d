package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/app"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

// EventAdminService is the minimal interface needed for event endpoints.
type EventAdminService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// HandleCreateEvent returns an HTTP handler for POST /events.
func HandleCreateEvent(svc EventAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, codeEventNameRequired, domain.ErrEventNameRequired.Error())
			return
		}

		var scheduledAt *time.Time
		if req.ScheduledAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.ScheduledAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidScheduledAt, "invalid scheduled_at format")
				return
			}
			scheduledAt = &parsed
		}

		event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
			Name:        req.Name,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEventResponse(event))
	}
}

// HandleListEvents returns an HTTP handler for GET /events.
func HandleListEvents(svc EventAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := make([]eventResponse, 0, len(events))
		for _, event := range events {
			resp = append(resp, newEventResponse(event))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleGetEvent returns an HTTP handler for GET /events/{eventID}.
func HandleGetEvent(svc EventAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.GetEvent(r.Context(), r.PathValue("eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

// HandleDeleteEvent returns an HTTP handler for DELETE /events/{eventID}.
func HandleDeleteEvent(svc EventAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteEvent(r.Context(), r.PathValue("eventID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type createEventRequest struct {
	Name        string `json:"name"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`
}

func newEventResponse(event domain.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Name:        event.Name,
		ScheduledAt: event.ScheduledAt,
		Status:      string(event.Status),
		Public:      event.Public,
		CreatedAt:   event.CreatedAt,
	}
}
