package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/app"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

// TicketGenerator is the minimal interface needed for generation endpoints.
type TicketGenerator interface {
	Generate(ctx context.Context, in app.GenerateInput) (app.GenerateResult, error)
	Progress(ctx context.Context, eventID string) (*domain.GenerationProgress, error)
}

// HandleGenerateTickets returns an HTTP handler for
// POST /events/{eventID}/tickets/generate. The run is synchronous; a
// concurrent run for the same event is rejected with a conflict.
func HandleGenerateTickets(svc TicketGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateTicketsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Prefix == "" {
			writeError(w, http.StatusBadRequest, codePrefixRequired, domain.ErrPrefixRequired.Error())
			return
		}

		result, err := svc.Generate(r.Context(), app.GenerateInput{
			EventID: r.PathValue("eventID"),
			Prefix:  req.Prefix,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, generateTicketsResponse{
			TotalGenerated: result.TotalGenerated,
			PerRegion:      result.PerRegion,
			Warnings:       result.Warnings,
		})
	}
}

// HandleGenerationProgress returns an HTTP handler for
// GET /events/{eventID}/tickets/progress.
func HandleGenerationProgress(svc TicketGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		progress, err := svc.Progress(r.Context(), r.PathValue("eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if progress == nil {
			writeJSON(w, http.StatusOK, progressResponse{Started: false})
			return
		}
		writeJSON(w, http.StatusOK, progressResponse{
			Started:       true,
			TotalTarget:   progress.TotalTarget,
			Generated:     progress.Generated,
			Percentage:    progress.Percentage,
			CurrentRegion: progress.CurrentRegion,
			RegionsDone:   progress.RegionsDone,
			RegionsTotal:  progress.RegionsTotal,
			UpdatedAt:     &progress.UpdatedAt,
		})
	}
}

type generateTicketsRequest struct {
	Prefix string `json:"prefix"`
}

type generateTicketsResponse struct {
	TotalGenerated int            `json:"total_generated"`
	PerRegion      map[string]int `json:"per_region"`
	Warnings       []app.Warning  `json:"warnings,omitempty"`
}

type progressResponse struct {
	Started       bool       `json:"started"`
	TotalTarget   int        `json:"total_target,omitempty"`
	Generated     int        `json:"generated,omitempty"`
	Percentage    float64    `json:"percentage,omitempty"`
	CurrentRegion string     `json:"current_region,omitempty"`
	RegionsDone   int        `json:"regions_done,omitempty"`
	RegionsTotal  int        `json:"regions_total,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}
