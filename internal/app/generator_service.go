package app

import (
	"context"
	"fmt"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/clock"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type GeneratorRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListAllocations(ctx context.Context, eventID string) ([]domain.Allocation, error)
	// AcquireGenerationLock serializes runs per event. It returns
	// domain.ErrGenerationInProgress when another run holds the lock.
	AcquireGenerationLock(ctx context.Context, eventID string) (release func(), err error)
	DeleteTickets(ctx context.Context, eventID string) (int, error)
	// CandidateBatch returns up to limit participants of the region that
	// do not yet hold a ticket for the event, in randomized order.
	CandidateBatch(ctx context.Context, eventID, region string, limit int) ([]domain.Participant, error)
	// CountCandidates reports how many such participants remain.
	CountCandidates(ctx context.Context, eventID, region string) (int, error)
	InsertTickets(ctx context.Context, tickets []domain.Ticket) error
	UpdateEventMetadata(ctx context.Context, eventID string, meta domain.EventMetadata) error
}

// GeneratorService produces the event's ticket pool from its region
// allocations, batch by batch. Each batch commits on its own; a failed
// run leaves prior batches in place and callers clear them by replacing
// the allocation set and re-running.
type GeneratorService struct {
	repo      GeneratorRepository
	clock     clock.Clock
	log       *logrus.Logger
	batchSize int
}

const defaultBatchSize = 10000

func NewGeneratorService(repo GeneratorRepository, clk clock.Clock, log *logrus.Logger, opts ...GeneratorServiceOption) *GeneratorService {
	if log == nil {
		log = logrus.New()
	}
	svc := &GeneratorService{
		repo:      repo,
		clock:     clk,
		log:       log,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type GeneratorServiceOption func(*GeneratorService)

// WithBatchSize bounds how many tickets each transaction inserts.
func WithBatchSize(n int) GeneratorServiceOption {
	return func(s *GeneratorService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

type GenerateInput struct {
	EventID string
	Prefix  string
}

// Warning reports a region whose source population fell short of its
// quota. It accompanies an otherwise successful result.
type Warning struct {
	Region    string `json:"region"`
	Shortfall int    `json:"shortfall"`
}

type GenerateResult struct {
	TotalGenerated int
	PerRegion      map[string]int
	Warnings       []Warning
}

// PartialGenerationError carries the number of tickets already committed
// when a run fails mid-way, so the caller can inspect the partial state.
type PartialGenerationError struct {
	Committed int
	Err       error
}

func (e *PartialGenerationError) Error() string {
	return fmt.Sprintf("generation failed after committing %d tickets: %v", e.Committed, e.Err)
}

func (e *PartialGenerationError) Unwrap() error {
	return e.Err
}

// Generate runs region by region in name order, numbering the Nth ticket
// of a region rangeFrom+N-1 and stopping at the region's quota. After
// every committed batch the event's progress snapshot is updated.
func (s *GeneratorService) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	if in.Prefix == "" {
		return GenerateResult{}, domain.ErrPrefixRequired
	}

	event, err := s.repo.GetEvent(ctx, in.EventID)
	if err != nil {
		return GenerateResult{}, err
	}
	if !event.Status.AllowsSetup() {
		return GenerateResult{}, &domain.StateError{Op: "ticket generation", Status: event.Status}
	}

	release, err := s.repo.AcquireGenerationLock(ctx, in.EventID)
	if err != nil {
		return GenerateResult{}, err
	}
	defer release()

	allocations, err := s.repo.ListAllocations(ctx, in.EventID)
	if err != nil {
		return GenerateResult{}, err
	}
	if len(allocations) == 0 {
		return GenerateResult{}, domain.ErrNoAllocations
	}

	// A re-run replaces whatever pool the previous run left behind.
	cleared, err := s.repo.DeleteTickets(ctx, in.EventID)
	if err != nil {
		return GenerateResult{}, err
	}
	if cleared > 0 {
		s.log.WithFields(logrus.Fields{"event": in.EventID, "cleared": cleared}).Info("cleared previous ticket pool")
	}

	totalTarget := 0
	for _, a := range allocations {
		totalTarget += a.Quota
	}

	meta := event.Metadata
	meta.Totals = nil
	progress := &domain.GenerationProgress{
		TotalTarget:  totalTarget,
		RegionsTotal: len(allocations),
		UpdatedAt:    s.clock.Now(),
	}
	meta.Generation = progress
	if err := s.repo.UpdateEventMetadata(ctx, in.EventID, meta); err != nil {
		return GenerateResult{}, err
	}

	result := GenerateResult{PerRegion: make(map[string]int, len(allocations))}
	for i, alloc := range allocations {
		progress.CurrentRegion = alloc.Region

		generated, err := s.generateRegion(ctx, in, alloc, progress, &meta)
		result.PerRegion[alloc.Region] = generated
		result.TotalGenerated += generated
		if err != nil {
			return result, &PartialGenerationError{Committed: result.TotalGenerated, Err: err}
		}

		if shortfall := alloc.Quota - generated; shortfall > 0 {
			result.Warnings = append(result.Warnings, Warning{Region: alloc.Region, Shortfall: shortfall})
			s.log.WithFields(logrus.Fields{
				"event":     in.EventID,
				"region":    alloc.Region,
				"quota":     alloc.Quota,
				"shortfall": shortfall,
			}).Warn("source population short of quota")
		} else if surplus, countErr := s.repo.CountCandidates(ctx, in.EventID, alloc.Region); countErr != nil {
			s.log.WithError(countErr).WithFields(logrus.Fields{
				"event":  in.EventID,
				"region": alloc.Region,
			}).Warn("count remaining candidates")
		} else if surplus > 0 {
			s.log.WithFields(logrus.Fields{
				"event":   in.EventID,
				"region":  alloc.Region,
				"quota":   alloc.Quota,
				"surplus": surplus,
			}).Info("surplus candidates beyond quota skipped")
		}

		progress.RegionsDone = i + 1
		progress.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateEventMetadata(ctx, in.EventID, meta); err != nil {
			return result, &PartialGenerationError{Committed: result.TotalGenerated, Err: err}
		}
	}

	meta.Totals = &domain.GenerationTotals{
		Total:       result.TotalGenerated,
		PerRegion:   result.PerRegion,
		CompletedAt: s.clock.Now(),
	}
	progress.CurrentRegion = ""
	progress.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateEventMetadata(ctx, in.EventID, meta); err != nil {
		return result, &PartialGenerationError{Committed: result.TotalGenerated, Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"event": in.EventID,
		"total": result.TotalGenerated,
	}).Info("ticket generation complete")
	return result, nil
}

// generateRegion fills one region's range. Each candidate batch is
// fetched without replacement and its ticket inserts commit in one
// transaction; the region stops at its quota even when more candidates
// exist.
func (s *GeneratorService) generateRegion(ctx context.Context, in GenerateInput, alloc domain.Allocation, progress *domain.GenerationProgress, meta *domain.EventMetadata) (int, error) {
	generated := 0
	next := alloc.RangeFrom

	for generated < alloc.Quota {
		limit := s.batchSize
		if remaining := alloc.Quota - generated; remaining < limit {
			limit = remaining
		}

		candidates, err := s.repo.CandidateBatch(ctx, in.EventID, alloc.Region, limit)
		if err != nil {
			return generated, err
		}
		if len(candidates) == 0 {
			break
		}

		now := s.clock.Now()
		tickets := make([]domain.Ticket, 0, len(candidates))
		for _, p := range candidates {
			tickets = append(tickets, domain.Ticket{
				ID:            uuid.NewString(),
				EventID:       in.EventID,
				ParticipantID: p.ID,
				Region:        alloc.Region,
				Number:        next,
				Code:          domain.TicketCode(in.Prefix, alloc.Region, next),
				Validated:     true,
				AssignedAt:    now,
				CreatedAt:     now,
			})
			next++
		}

		err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
			return s.repo.InsertTickets(txCtx, tickets)
		})
		if err != nil {
			return generated, err
		}
		generated += len(tickets)

		progress.Generated += len(tickets)
		progress.Percentage = float64(progress.Generated) / float64(progress.TotalTarget) * 100
		progress.UpdatedAt = now
		if err := s.repo.UpdateEventMetadata(ctx, in.EventID, *meta); err != nil {
			return generated, err
		}

		s.log.WithFields(logrus.Fields{
			"event":     in.EventID,
			"region":    alloc.Region,
			"batch":     len(tickets),
			"generated": progress.Generated,
			"target":    progress.TotalTarget,
		}).Info("ticket batch committed")
	}
	return generated, nil
}

// Progress returns the persisted snapshot of the latest generation run,
// or nil when no run has started.
func (s *GeneratorService) Progress(ctx context.Context, eventID string) (*domain.GenerationProgress, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return event.Metadata.Generation, nil
}
