package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrPrizeNotFound         = errors.New("prize not found")
	ErrWinnerNotFound        = errors.New("winner not found")
	ErrNoAllocations         = errors.New("event has no region allocations")
	ErrEventNameRequired     = errors.New("event name required")
	ErrPrizeNameRequired     = errors.New("prize name required")
	ErrPrefixRequired        = errors.New("ticket prefix required")
	ErrRegionRequired        = errors.New("region required")
	ErrDocumentRequired      = errors.New("document required")
	ErrInvalidQuota          = errors.New("quota must be a positive integer")
	ErrDuplicateRegion       = errors.New("duplicate region in allocation set")
	ErrZeroTotalQuota        = errors.New("total quota must be greater than zero")
	ErrInvalidRange          = errors.New("range bounds are invalid")
	ErrRangeQuotaMismatch    = errors.New("range width does not match quota")
	ErrOverlappingRanges     = errors.New("allocation ranges overlap")
	ErrMixedRangeMode        = errors.New("cannot mix explicit ranges with auto-assignment")
	ErrInvalidScope          = errors.New("invalid prize scope")
	ErrInvalidStatus         = errors.New("unknown lifecycle status")
	ErrInvalidID             = errors.New("invalid id")
	ErrNoEligibleCandidates  = errors.New("no eligible tickets to draw from")
	ErrPrizeAlreadyDrawn     = errors.New("prize already has a winner")
	ErrParticipantAlreadyWon = errors.New("participant already won a prize in this event")
	ErrDuplicateTicketNumber = errors.New("ticket number already taken in this event")
	ErrGenerationInProgress  = errors.New("ticket generation already running for this event")
)

// StateError reports an operation attempted while the event lifecycle
// does not permit it.
type StateError struct {
	Op     string
	Status Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed while event is %s", e.Op, e.Status)
}

// PendingPrizesError blocks the open to closed transition while prizes
// remain without a winner. It carries the unassigned prizes so the
// caller can show them.
type PendingPrizesError struct {
	Prizes []Prize
}

func (e *PendingPrizesError) Error() string {
	return fmt.Sprintf("%d prizes have no winner yet", len(e.Prizes))
}
