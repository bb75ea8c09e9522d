package app

import (
	"context"
	"sort"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/google/uuid"
)

type AllocationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	DeleteAllocations(ctx context.Context, eventID string) error
	InsertAllocations(ctx context.Context, allocations []domain.Allocation) error
	ListAllocations(ctx context.Context, eventID string) ([]domain.Allocation, error)
}

// AllocationService replaces an event's entire region allocation set in
// one atomic operation. Re-running with the same input is idempotent.
type AllocationService struct {
	repo       AllocationRepository
	baseOffset int
}

const defaultBaseOffset = 1

func NewAllocationService(repo AllocationRepository, opts ...AllocationServiceOption) *AllocationService {
	svc := &AllocationService{
		repo:       repo,
		baseOffset: defaultBaseOffset,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type AllocationServiceOption func(*AllocationService)

// WithBaseOffset sets the first ticket number handed out when ranges are
// auto-assigned.
func WithBaseOffset(n int) AllocationServiceOption {
	return func(s *AllocationService) {
		if n > 0 {
			s.baseOffset = n
		}
	}
}

type AllocationEntry struct {
	Region    string
	Quota     int
	RangeFrom *int
	RangeTo   *int
}

type ReplaceAllocationsInput struct {
	EventID string
	Entries []AllocationEntry
}

// Replace validates the quota set, derives ranges when none are given,
// and swaps the event's allocation set inside a single transaction. The
// previous set is deleted first; on any failure nothing persists.
func (s *AllocationService) Replace(ctx context.Context, in ReplaceAllocationsInput) ([]domain.Allocation, error) {
	allocations, err := s.buildSet(in)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEvent(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if !event.Status.AllowsSetup() {
			return &domain.StateError{Op: "allocation replacement", Status: event.Status}
		}
		if err := s.repo.DeleteAllocations(txCtx, in.EventID); err != nil {
			return err
		}
		return s.repo.InsertAllocations(txCtx, allocations)
	})
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (s *AllocationService) List(ctx context.Context, eventID string) ([]domain.Allocation, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListAllocations(ctx, eventID)
}

// buildSet turns the raw entries into a validated, range-assigned
// allocation set. No writes happen here.
func (s *AllocationService) buildSet(in ReplaceAllocationsInput) ([]domain.Allocation, error) {
	if len(in.Entries) == 0 {
		return nil, domain.ErrZeroTotalQuota
	}

	total := 0
	seen := make(map[string]bool, len(in.Entries))
	explicit := 0
	for _, e := range in.Entries {
		if e.Region == "" {
			return nil, domain.ErrRegionRequired
		}
		if seen[e.Region] {
			return nil, domain.ErrDuplicateRegion
		}
		seen[e.Region] = true
		if e.Quota <= 0 {
			return nil, domain.ErrInvalidQuota
		}
		total += e.Quota
		if (e.RangeFrom == nil) != (e.RangeTo == nil) {
			return nil, domain.ErrInvalidRange
		}
		if e.RangeFrom != nil {
			explicit++
		}
	}
	if total <= 0 {
		return nil, domain.ErrZeroTotalQuota
	}
	if explicit != 0 && explicit != len(in.Entries) {
		return nil, domain.ErrMixedRangeMode
	}

	entries := append([]AllocationEntry{}, in.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Region < entries[j].Region })

	allocations := make([]domain.Allocation, 0, len(entries))
	next := s.baseOffset
	for _, e := range entries {
		a := domain.Allocation{
			ID:      uuid.NewString(),
			EventID: in.EventID,
			Region:  e.Region,
			Quota:   e.Quota,
			Percent: float64(e.Quota) / float64(total) * 100,
		}
		if e.RangeFrom != nil {
			if *e.RangeFrom <= 0 || *e.RangeTo < *e.RangeFrom {
				return nil, domain.ErrInvalidRange
			}
			a.RangeFrom = *e.RangeFrom
			a.RangeTo = *e.RangeTo
			if a.Width() != e.Quota {
				return nil, domain.ErrRangeQuotaMismatch
			}
		} else {
			a.RangeFrom = next
			a.RangeTo = next + e.Quota - 1
			next = a.RangeTo + 1
		}
		allocations = append(allocations, a)
	}

	for i := range allocations {
		for j := i + 1; j < len(allocations); j++ {
			if allocations[i].Overlaps(allocations[j]) {
				return nil, domain.ErrOverlappingRanges
			}
		}
	}
	return allocations, nil
}
