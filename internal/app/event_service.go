package app

import (
	"context"
	"time"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/clock"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/google/uuid"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	CreatePrize(ctx context.Context, prize domain.Prize) error
	ListPrizes(ctx context.Context, eventID string) ([]domain.Prize, error)
	// InsertParticipants adds the batch, skipping documents the event
	// already has. It returns how many rows were actually inserted.
	InsertParticipants(ctx context.Context, participants []domain.Participant) (int, error)
	CountParticipantsByRegion(ctx context.Context, eventID string) (map[string]int, error)
}

// EventService is the administrative surface: events, prizes and the
// source population the generator draws from.
type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	Name        string
	ScheduledAt *time.Time
}

// CreateEvent creates an event in draft state, not publicly visible.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	scheduledAt := s.clock.Now()
	if in.ScheduledAt != nil {
		scheduledAt = *in.ScheduledAt
	}

	event := domain.Event{
		ID:          uuid.NewString(),
		Name:        in.Name,
		ScheduledAt: scheduledAt,
		Status:      domain.StatusDraft,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return s.repo.GetEvent(ctx, eventID)
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

// DeleteEvent removes the event and every dependent record in one
// transactional cascade.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, eventID)
}

type CreatePrizeInput struct {
	EventID  string
	Name     string
	Position int
	Scope    domain.PrizeScope
	Region   string
}

func (s *EventService) CreatePrize(ctx context.Context, in CreatePrizeInput) (domain.Prize, error) {
	if in.Name == "" {
		return domain.Prize{}, domain.ErrPrizeNameRequired
	}
	if in.Scope == "" {
		in.Scope = domain.PrizeScopeNational
	}
	switch in.Scope {
	case domain.PrizeScopeNational:
	case domain.PrizeScopeRegional:
		if in.Region == "" {
			return domain.Prize{}, domain.ErrRegionRequired
		}
	default:
		return domain.Prize{}, domain.ErrInvalidScope
	}

	if _, err := s.repo.GetEvent(ctx, in.EventID); err != nil {
		return domain.Prize{}, err
	}

	prize := domain.Prize{
		ID:       uuid.NewString(),
		EventID:  in.EventID,
		Name:     in.Name,
		Position: in.Position,
		Scope:    in.Scope,
		Region:   in.Region,
	}
	if err := s.repo.CreatePrize(ctx, prize); err != nil {
		return domain.Prize{}, err
	}
	return prize, nil
}

func (s *EventService) ListPrizes(ctx context.Context, eventID string) ([]domain.Prize, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListPrizes(ctx, eventID)
}

type ParticipantInput struct {
	Document string
	FullName string
	Region   string
}

type ImportParticipantsInput struct {
	EventID string
	People  []ParticipantInput
}

type ImportParticipantsResult struct {
	Imported  int
	PerRegion map[string]int
}

// ImportParticipants bulk-loads the source population. Documents the
// event already knows are skipped, so re-importing a file is harmless.
func (s *EventService) ImportParticipants(ctx context.Context, in ImportParticipantsInput) (ImportParticipantsResult, error) {
	event, err := s.repo.GetEvent(ctx, in.EventID)
	if err != nil {
		return ImportParticipantsResult{}, err
	}
	if !event.Status.AllowsSetup() {
		return ImportParticipantsResult{}, &domain.StateError{Op: "participant import", Status: event.Status}
	}

	now := s.clock.Now()
	participants := make([]domain.Participant, 0, len(in.People))
	for _, p := range in.People {
		if p.Document == "" {
			return ImportParticipantsResult{}, domain.ErrDocumentRequired
		}
		if p.Region == "" {
			return ImportParticipantsResult{}, domain.ErrRegionRequired
		}
		participants = append(participants, domain.Participant{
			ID:        uuid.NewString(),
			EventID:   in.EventID,
			Document:  p.Document,
			FullName:  p.FullName,
			Region:    p.Region,
			Validated: true,
			CreatedAt: now,
		})
	}
	if len(participants) == 0 {
		return ImportParticipantsResult{}, nil
	}

	inserted, err := s.repo.InsertParticipants(ctx, participants)
	if err != nil {
		return ImportParticipantsResult{}, err
	}
	counts, err := s.repo.CountParticipantsByRegion(ctx, in.EventID)
	if err != nil {
		return ImportParticipantsResult{}, err
	}
	return ImportParticipantsResult{Imported: inserted, PerRegion: counts}, nil
}
