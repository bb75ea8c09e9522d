package app

import (
	"context"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListUnassignedPrizes(ctx context.Context, eventID string) ([]domain.Prize, error)
	// UpdateEventStatus compare-and-sets the status, optionally setting
	// the public flag. It reports whether a row matched (id, from).
	UpdateEventStatus(ctx context.Context, eventID string, from, to domain.Status, public *bool) (bool, error)
}

// LifecycleService validates and applies event state transitions.
// Transitions are single-row updates; the only side effect besides the
// status itself is the public visibility flag.
type LifecycleService struct {
	repo LifecycleRepository
}

func NewLifecycleService(repo LifecycleRepository) *LifecycleService {
	return &LifecycleService{repo: repo}
}

// Transition moves the event to target if the lifecycle table permits
// it. open -> closed is refused with PendingPrizesError while any prize
// lacks a winner. A concurrent transition losing the compare-and-set
// surfaces as a StateError against the fresh status.
func (s *LifecycleService) Transition(ctx context.Context, eventID string, target domain.Status) (domain.Event, error) {
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.Status.CanTransitionTo(target) {
			return &domain.StateError{Op: "transition to " + string(target), Status: event.Status}
		}

		if event.Status == domain.StatusOpen && target == domain.StatusClosed {
			pending, err := s.repo.ListUnassignedPrizes(txCtx, eventID)
			if err != nil {
				return err
			}
			if len(pending) > 0 {
				return &domain.PendingPrizesError{Prizes: pending}
			}
		}

		var public *bool
		if domain.MakesPublic(event.Status, target) {
			v := true
			public = &v
		}

		updated, err := s.repo.UpdateEventStatus(txCtx, eventID, event.Status, target, public)
		if err != nil {
			return err
		}
		if !updated {
			fresh, err := s.repo.GetEvent(txCtx, eventID)
			if err != nil {
				return err
			}
			return &domain.StateError{Op: "transition to " + string(target), Status: fresh.Status}
		}

		result = event
		result.Status = target
		if public != nil {
			result.Public = true
		}
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return result, nil
}
