package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/app"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

// PrizeAdminService is the minimal interface needed for prize endpoints.
type PrizeAdminService interface {
	CreatePrize(ctx context.Context, in app.CreatePrizeInput) (domain.Prize, error)
	ListPrizes(ctx context.Context, eventID string) ([]domain.Prize, error)
}

// HandleCreatePrize returns an HTTP handler for POST /events/{eventID}/prizes.
func HandleCreatePrize(svc PrizeAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPrizeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, codePrizeNameRequired, domain.ErrPrizeNameRequired.Error())
			return
		}

		prize, err := svc.CreatePrize(r.Context(), app.CreatePrizeInput{
			EventID:  r.PathValue("eventID"),
			Name:     req.Name,
			Position: req.Position,
			Scope:    domain.PrizeScope(req.Scope),
			Region:   req.Region,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newPrizeResponse(prize))
	}
}

// HandleListPrizes returns an HTTP handler for GET /events/{eventID}/prizes.
func HandleListPrizes(svc PrizeAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prizes, err := svc.ListPrizes(r.Context(), r.PathValue("eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := make([]prizeResponse, 0, len(prizes))
		for _, prize := range prizes {
			resp = append(resp, newPrizeResponse(prize))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type createPrizeRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Scope    string `json:"scope,omitempty"`
	Region   string `json:"region,omitempty"`
}

type prizeResponse struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Scope    string `json:"scope"`
	Region   string `json:"region,omitempty"`
}

func newPrizeResponse(prize domain.Prize) prizeResponse {
	return prizeResponse{
		ID:       prize.ID,
		EventID:  prize.EventID,
		Name:     prize.Name,
		Position: prize.Position,
		Scope:    string(prize.Scope),
		Region:   prize.Region,
	}
}
