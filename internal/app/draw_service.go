package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/clock"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/google/uuid"
)

type DrawRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	GetPrize(ctx context.Context, eventID, prizeID string) (domain.Prize, error)
	HasWinner(ctx context.Context, eventID, prizeID string) (bool, error)
	// SampleEligibleTickets returns up to limit eligible tickets in
	// random order. region narrows the pool for regional prizes; empty
	// means the whole event. A ticket is eligible when validated, number
	// assigned, and its holder has no winner row for the event.
	SampleEligibleTickets(ctx context.Context, eventID, region string, limit int) ([]domain.Ticket, error)
	InsertWinner(ctx context.Context, winner domain.Winner) error
	ListWinners(ctx context.Context, eventID string) ([]domain.Winner, error)
	DeleteWinner(ctx context.Context, eventID, winnerID string) error
}

// DrawService selects one winner per prize from the eligible ticket
// pool. Selection samples a bounded candidate set in the database and
// picks uniformly from it, trading strict uniformity for bounded cost.
type DrawService struct {
	repo       DrawRepository
	clock      clock.Clock
	rng        *rand.Rand
	sampleSize int
}

const defaultSampleSize = 500

func NewDrawService(repo DrawRepository, clk clock.Clock, opts ...DrawServiceOption) *DrawService {
	svc := &DrawService{
		repo:       repo,
		clock:      clk,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sampleSize: defaultSampleSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type DrawServiceOption func(*DrawService)

// WithSampleSize bounds the candidate sample drawn per selection.
func WithSampleSize(n int) DrawServiceOption {
	return func(s *DrawService) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithRand injects the random source, for deterministic tests.
func WithRand(r *rand.Rand) DrawServiceOption {
	return func(s *DrawService) {
		if r != nil {
			s.rng = r
		}
	}
}

// drawRetryLimit bounds re-sampling after a lost participant race.
const drawRetryLimit = 3

// DrawWinner selects and persists exactly one winner for the prize. The
// select + insert sequence runs in one transaction; a concurrent draw
// for the same prize loses on the (event, prize) uniqueness constraint
// and surfaces ErrPrizeAlreadyDrawn. Draws for different prizes that
// race on the same holder settle on the (event, participant)
// constraint: the loser re-samples with the committed winner excluded.
func (s *DrawService) DrawWinner(ctx context.Context, eventID, prizeID string) (domain.Winner, error) {
	var winner domain.Winner
	var err error
	for attempt := 0; attempt < drawRetryLimit; attempt++ {
		winner, err = s.drawOnce(ctx, eventID, prizeID)
		if !errors.Is(err, domain.ErrParticipantAlreadyWon) {
			return winner, err
		}
	}
	return domain.Winner{}, err
}

func (s *DrawService) drawOnce(ctx context.Context, eventID, prizeID string) (domain.Winner, error) {
	var result domain.Winner

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.Status.AllowsDraw() {
			return &domain.StateError{Op: "draw", Status: event.Status}
		}

		prize, err := s.repo.GetPrize(txCtx, eventID, prizeID)
		if err != nil {
			return err
		}

		taken, err := s.repo.HasWinner(txCtx, eventID, prizeID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrPrizeAlreadyDrawn
		}

		region := ""
		if prize.Scope == domain.PrizeScopeRegional {
			region = prize.Region
		}
		sample, err := s.repo.SampleEligibleTickets(txCtx, eventID, region, s.sampleSize)
		if err != nil {
			return err
		}
		if len(sample) == 0 {
			return domain.ErrNoEligibleCandidates
		}

		ticket := sample[s.rng.Intn(len(sample))]
		winner := domain.Winner{
			ID:            uuid.NewString(),
			EventID:       eventID,
			PrizeID:       prizeID,
			TicketID:      ticket.ID,
			ParticipantID: ticket.ParticipantID,
			TicketNumber:  ticket.Number,
			DrawnAt:       s.clock.Now(),
		}
		if err := s.repo.InsertWinner(txCtx, winner); err != nil {
			return err
		}

		result = winner
		return nil
	})
	if err != nil {
		return domain.Winner{}, err
	}
	return result, nil
}

func (s *DrawService) ListWinners(ctx context.Context, eventID string) ([]domain.Winner, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListWinners(ctx, eventID)
}

// DeleteWinner removes a winner record entirely. This is the explicit
// administrative escape hatch; there is no correction path.
func (s *DrawService) DeleteWinner(ctx context.Context, eventID, winnerID string) error {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return err
	}
	return s.repo.DeleteWinner(ctx, eventID, winnerID)
}
