package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/app"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

const (
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidScheduledAt   = "invalid_scheduled_at"
	codeInvalidStatus        = "invalid_status"
	codeEventNameRequired    = "event_name_required"
	codePrizeNameRequired    = "prize_name_required"
	codePrefixRequired       = "prefix_required"
	codeRegionRequired       = "region_required"
	codeDocumentRequired     = "document_required"
	codeInvalidQuota         = "invalid_quota"
	codeInvalidRange         = "invalid_range"
	codeInvalidScope         = "invalid_scope"
	codeDuplicateRegion      = "duplicate_region"
	codeZeroTotalQuota       = "zero_total_quota"
	codeRangeQuotaMismatch   = "range_quota_mismatch"
	codeOverlappingRanges    = "overlapping_ranges"
	codeMixedRangeMode       = "mixed_range_mode"
	codeEventNotFound        = "event_not_found"
	codePrizeNotFound        = "prize_not_found"
	codeWinnerNotFound       = "winner_not_found"
	codeNoAllocations        = "no_allocations"
	codeNoEligibleCandidates = "no_eligible_candidates"
	codePrizeAlreadyDrawn    = "prize_already_drawn"
	codeParticipantWon       = "participant_already_won"
	codeGenerationInProgress = "generation_in_progress"
	codeInvalidState         = "invalid_state"
	codePendingPrizes        = "pending_prizes"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// pendingPrizesResponse extends the error envelope with the prizes that
// still have no winner, so a client can show what is blocking the close.
type pendingPrizesResponse struct {
	Error         string          `json:"error"`
	Code          string          `json:"code"`
	PendingPrizes []prizeResponse `json:"pending_prizes"`
}

var errorStatus = map[error]struct {
	status int
	code   string
}{
	domain.ErrEventNotFound:         {http.StatusNotFound, codeEventNotFound},
	domain.ErrPrizeNotFound:         {http.StatusNotFound, codePrizeNotFound},
	domain.ErrWinnerNotFound:        {http.StatusNotFound, codeWinnerNotFound},
	domain.ErrInvalidID:             {http.StatusNotFound, codeInvalidID},
	domain.ErrEventNameRequired:     {http.StatusBadRequest, codeEventNameRequired},
	domain.ErrPrizeNameRequired:     {http.StatusBadRequest, codePrizeNameRequired},
	domain.ErrPrefixRequired:        {http.StatusBadRequest, codePrefixRequired},
	domain.ErrRegionRequired:        {http.StatusBadRequest, codeRegionRequired},
	domain.ErrDocumentRequired:      {http.StatusBadRequest, codeDocumentRequired},
	domain.ErrInvalidQuota:          {http.StatusBadRequest, codeInvalidQuota},
	domain.ErrInvalidRange:          {http.StatusBadRequest, codeInvalidRange},
	domain.ErrInvalidScope:          {http.StatusBadRequest, codeInvalidScope},
	domain.ErrInvalidStatus:         {http.StatusBadRequest, codeInvalidStatus},
	domain.ErrDuplicateRegion:       {http.StatusBadRequest, codeDuplicateRegion},
	domain.ErrZeroTotalQuota:        {http.StatusBadRequest, codeZeroTotalQuota},
	domain.ErrRangeQuotaMismatch:    {http.StatusBadRequest, codeRangeQuotaMismatch},
	domain.ErrOverlappingRanges:     {http.StatusBadRequest, codeOverlappingRanges},
	domain.ErrMixedRangeMode:        {http.StatusBadRequest, codeMixedRangeMode},
	domain.ErrNoAllocations:         {http.StatusConflict, codeNoAllocations},
	domain.ErrNoEligibleCandidates:  {http.StatusConflict, codeNoEligibleCandidates},
	domain.ErrPrizeAlreadyDrawn:     {http.StatusConflict, codePrizeAlreadyDrawn},
	domain.ErrParticipantAlreadyWon: {http.StatusConflict, codeParticipantWon},
	domain.ErrGenerationInProgress:  {http.StatusConflict, codeGenerationInProgress},
}

// writeServiceError maps service errors onto the JSON envelope. Lifecycle
// violations and the pending-prize guard carry richer payloads.
func writeServiceError(w http.ResponseWriter, err error) {
	var stateErr *domain.StateError
	if errors.As(err, &stateErr) {
		writeError(w, http.StatusConflict, codeInvalidState, stateErr.Error())
		return
	}
	var pendingErr *domain.PendingPrizesError
	if errors.As(err, &pendingErr) {
		prizes := make([]prizeResponse, 0, len(pendingErr.Prizes))
		for _, prize := range pendingErr.Prizes {
			prizes = append(prizes, newPrizeResponse(prize))
		}
		writeJSON(w, http.StatusConflict, pendingPrizesResponse{
			Error:         pendingErr.Error(),
			Code:          codePendingPrizes,
			PendingPrizes: prizes,
		})
		return
	}
	var partialErr *app.PartialGenerationError
	if errors.As(err, &partialErr) {
		// the partial count is already persisted in the progress
		// snapshot, the envelope only reports the failure
		writeError(w, http.StatusInternalServerError, codeInternalError, partialErr.Error())
		return
	}

	for sentinel, mapping := range errorStatus {
		if errors.Is(err, sentinel) {
			writeError(w, mapping.status, mapping.code, sentinel.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
