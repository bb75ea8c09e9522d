package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/app"
)

// ParticipantImporter is the minimal interface needed to bulk-load the
// source population.
type ParticipantImporter interface {
	ImportParticipants(ctx context.Context, in app.ImportParticipantsInput) (app.ImportParticipantsResult, error)
}

// HandleImportParticipants returns an HTTP handler for
// POST /events/{eventID}/participants.
func HandleImportParticipants(svc ParticipantImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importParticipantsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		people := make([]app.ParticipantInput, 0, len(req.Participants))
		for _, p := range req.Participants {
			people = append(people, app.ParticipantInput{
				Document: p.Document,
				FullName: p.FullName,
				Region:   p.Region,
			})
		}

		result, err := svc.ImportParticipants(r.Context(), app.ImportParticipantsInput{
			EventID: r.PathValue("eventID"),
			People:  people,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, importParticipantsResponse{
			Imported:  result.Imported,
			PerRegion: result.PerRegion,
		})
	}
}

type importParticipantsRequest struct {
	Participants []participantRequest `json:"participants"`
}

type participantRequest struct {
	Document string `json:"document"`
	FullName string `json:"full_name"`
	Region   string `json:"region"`
}

type importParticipantsResponse struct {
	Imported  int            `json:"imported"`
	PerRegion map[string]int `json:"per_region"`
}
