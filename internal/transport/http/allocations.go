package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/app"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

// AllocationPlanner is the minimal interface needed for allocation endpoints.
type AllocationPlanner interface {
	Replace(ctx context.Context, in app.ReplaceAllocationsInput) ([]domain.Allocation, error)
	List(ctx context.Context, eventID string) ([]domain.Allocation, error)
}

// HandleReplaceAllocations returns an HTTP handler for
// PUT /events/{eventID}/allocations. The request carries the full quota
// set; any previous set for the event is replaced.
func HandleReplaceAllocations(svc AllocationPlanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replaceAllocationsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		entries := make([]app.AllocationEntry, 0, len(req.Allocations))
		for _, a := range req.Allocations {
			entries = append(entries, app.AllocationEntry{
				Region:    a.Region,
				Quota:     a.Quota,
				RangeFrom: a.RangeFrom,
				RangeTo:   a.RangeTo,
			})
		}

		allocations, err := svc.Replace(r.Context(), app.ReplaceAllocationsInput{
			EventID: r.PathValue("eventID"),
			Entries: entries,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newAllocationsResponse(allocations))
	}
}

// HandleListAllocations returns an HTTP handler for GET /events/{eventID}/allocations.
func HandleListAllocations(svc AllocationPlanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allocations, err := svc.List(r.Context(), r.PathValue("eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newAllocationsResponse(allocations))
	}
}

type replaceAllocationsRequest struct {
	Allocations []allocationEntryRequest `json:"allocations"`
}

type allocationEntryRequest struct {
	Region    string `json:"region"`
	Quota     int    `json:"quota"`
	RangeFrom *int   `json:"range_from,omitempty"`
	RangeTo   *int   `json:"range_to,omitempty"`
}

type allocationResponse struct {
	ID        string  `json:"id"`
	EventID   string  `json:"event_id"`
	Region    string  `json:"region"`
	RangeFrom int     `json:"range_from"`
	RangeTo   int     `json:"range_to"`
	Quota     int     `json:"quota"`
	Percent   float64 `json:"percent"`
}

func newAllocationsResponse(allocations []domain.Allocation) []allocationResponse {
	resp := make([]allocationResponse, 0, len(allocations))
	for _, a := range allocations {
		resp = append(resp, allocationResponse{
			ID:        a.ID,
			EventID:   a.EventID,
			Region:    a.Region,
			RangeFrom: a.RangeFrom,
			RangeTo:   a.RangeTo,
			Quota:     a.Quota,
			Percent:   a.Percent,
		})
	}
	return resp
}
