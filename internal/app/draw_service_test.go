package app

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/clock"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

func TestDrawService_DrawWinner(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	makeSvc := func(repo *fakeDrawRepo, opts ...DrawServiceOption) *DrawService {
		opts = append([]DrawServiceOption{WithRand(rand.New(rand.NewSource(1)))}, opts...)
		return NewDrawService(repo, clock.NewFixed(now), opts...)
	}

	t.Run("draws one winner and persists it", func(t *testing.T) {
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		repo.prizes = []domain.Prize{{ID: "prize-1", EventID: "event-1", Scope: domain.PrizeScopeNational}}
		repo.tickets = []domain.Ticket{
			{ID: "t1", EventID: "event-1", ParticipantID: "p1", Region: "A", Number: 1, Validated: true, AssignedAt: now},
			{ID: "t2", EventID: "event-1", ParticipantID: "p2", Region: "A", Number: 2, Validated: true, AssignedAt: now},
		}

		winner, err := makeSvc(repo).DrawWinner(context.Background(), "event-1", "prize-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if winner.EventID != "event-1" || winner.PrizeID != "prize-1" {
			t.Fatalf("unexpected winner: %+v", winner)
		}
		if winner.TicketNumber != 1 && winner.TicketNumber != 2 {
			t.Fatalf("winner ticket number outside pool: %d", winner.TicketNumber)
		}
		if !winner.DrawnAt.Equal(now) {
			t.Fatalf("expected drawn_at %v, got %v", now, winner.DrawnAt)
		}
		if len(repo.winners) != 1 {
			t.Fatalf("expected 1 persisted winner, got %d", len(repo.winners))
		}
	})

	t.Run("a holder wins at most once per event", func(t *testing.T) {
		// 3 prizes, 2 eligible holders: the third draw has nobody left.
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		repo.prizes = []domain.Prize{
			{ID: "prize-1", EventID: "event-1", Scope: domain.PrizeScopeNational},
			{ID: "prize-2", EventID: "event-1", Scope: domain.PrizeScopeNational},
			{ID: "prize-3", EventID: "event-1", Scope: domain.PrizeScopeNational},
		}
		repo.tickets = []domain.Ticket{
			{ID: "t1", EventID: "event-1", ParticipantID: "p1", Number: 1, Validated: true, AssignedAt: now},
			{ID: "t2", EventID: "event-1", ParticipantID: "p2", Number: 2, Validated: true, AssignedAt: now},
		}
		svc := makeSvc(repo)

		first, err := svc.DrawWinner(context.Background(), "event-1", "prize-1")
		if err != nil {
			t.Fatalf("first draw: %v", err)
		}
		second, err := svc.DrawWinner(context.Background(), "event-1", "prize-2")
		if err != nil {
			t.Fatalf("second draw: %v", err)
		}
		if first.ParticipantID == second.ParticipantID {
			t.Fatalf("expected distinct winners, both %s", first.ParticipantID)
		}

		_, err = svc.DrawWinner(context.Background(), "event-1", "prize-3")
		if err != domain.ErrNoEligibleCandidates {
			t.Fatalf("expected ErrNoEligibleCandidates, got %v", err)
		}
	})

	t.Run("drawing a prize twice conflicts", func(t *testing.T) {
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		repo.prizes = []domain.Prize{{ID: "prize-1", EventID: "event-1", Scope: domain.PrizeScopeNational}}
		repo.tickets = []domain.Ticket{
			{ID: "t1", EventID: "event-1", ParticipantID: "p1", Number: 1, Validated: true, AssignedAt: now},
			{ID: "t2", EventID: "event-1", ParticipantID: "p2", Number: 2, Validated: true, AssignedAt: now},
		}
		svc := makeSvc(repo)

		if _, err := svc.DrawWinner(context.Background(), "event-1", "prize-1"); err != nil {
			t.Fatalf("first draw: %v", err)
		}
		if _, err := svc.DrawWinner(context.Background(), "event-1", "prize-1"); err != domain.ErrPrizeAlreadyDrawn {
			t.Fatalf("expected ErrPrizeAlreadyDrawn, got %v", err)
		}
		if len(repo.winners) != 1 {
			t.Fatalf("expected exactly 1 winner, got %d", len(repo.winners))
		}
	})

	t.Run("lost holder race re-samples and settles on another holder", func(t *testing.T) {
		// A draw for another prize commits the sampled holder's win
		// between this draw's sample and insert. The insert loses on the
		// (event, participant) constraint and the retry must pick one of
		// the remaining holders.
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		repo.prizes = []domain.Prize{
			{ID: "prize-1", EventID: "event-1", Scope: domain.PrizeScopeNational},
			{ID: "prize-2", EventID: "event-1", Scope: domain.PrizeScopeNational},
		}
		repo.tickets = []domain.Ticket{
			{ID: "t1", EventID: "event-1", ParticipantID: "p1", Number: 1, Validated: true, AssignedAt: now},
			{ID: "t2", EventID: "event-1", ParticipantID: "p2", Number: 2, Validated: true, AssignedAt: now},
		}
		var sniped string
		repo.beforeInsert = func(winner domain.Winner) {
			sniped = winner.ParticipantID
			repo.winners = append(repo.winners, domain.Winner{
				ID: "race", EventID: "event-1", PrizeID: "prize-1", ParticipantID: winner.ParticipantID,
			})
		}

		winner, err := makeSvc(repo).DrawWinner(context.Background(), "event-1", "prize-2")
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if winner.ParticipantID == sniped {
			t.Fatalf("holder %s won twice in the event", sniped)
		}
		if len(repo.winners) != 2 {
			t.Fatalf("expected 2 winners, got %d", len(repo.winners))
		}
	})

	t.Run("lost holder race with nobody left is exhaustion", func(t *testing.T) {
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		repo.prizes = []domain.Prize{
			{ID: "prize-1", EventID: "event-1", Scope: domain.PrizeScopeNational},
			{ID: "prize-2", EventID: "event-1", Scope: domain.PrizeScopeNational},
		}
		repo.tickets = []domain.Ticket{
			{ID: "t1", EventID: "event-1", ParticipantID: "p1", Number: 1, Validated: true, AssignedAt: now},
		}
		repo.beforeInsert = func(winner domain.Winner) {
			repo.winners = append(repo.winners, domain.Winner{
				ID: "race", EventID: "event-1", PrizeID: "prize-1", ParticipantID: winner.ParticipantID,
			})
		}

		_, err := makeSvc(repo).DrawWinner(context.Background(), "event-1", "prize-2")
		if err != domain.ErrNoEligibleCandidates {
			t.Fatalf("expected ErrNoEligibleCandidates, got %v", err)
		}
	})

	t.Run("regional prize samples only its region", func(t *testing.T) {
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		repo.prizes = []domain.Prize{{ID: "prize-1", EventID: "event-1", Scope: domain.PrizeScopeRegional, Region: "05"}}
		repo.tickets = []domain.Ticket{
			{ID: "t1", EventID: "event-1", ParticipantID: "p1", Region: "01", Number: 1, Validated: true, AssignedAt: now},
			{ID: "t2", EventID: "event-1", ParticipantID: "p2", Region: "05", Number: 101, Validated: true, AssignedAt: now},
		}

		winner, err := makeSvc(repo).DrawWinner(context.Background(), "event-1", "prize-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if winner.ParticipantID != "p2" {
			t.Fatalf("expected the region 05 holder, got %s", winner.ParticipantID)
		}
	})

	t.Run("unvalidated and unassigned tickets are not eligible", func(t *testing.T) {
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		repo.prizes = []domain.Prize{{ID: "prize-1", EventID: "event-1", Scope: domain.PrizeScopeNational}}
		repo.tickets = []domain.Ticket{
			{ID: "t1", EventID: "event-1", ParticipantID: "p1", Number: 1, Validated: false, AssignedAt: now},
			{ID: "t2", EventID: "event-1", ParticipantID: "p2", Number: 2, Validated: true},
		}

		_, err := makeSvc(repo).DrawWinner(context.Background(), "event-1", "prize-1")
		if err != domain.ErrNoEligibleCandidates {
			t.Fatalf("expected ErrNoEligibleCandidates, got %v", err)
		}
	})

	t.Run("draw only while open", func(t *testing.T) {
		for _, status := range []domain.Status{domain.StatusDraft, domain.StatusScheduled, domain.StatusClosed, domain.StatusCancelled} {
			repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: status})
			_, err := makeSvc(repo).DrawWinner(context.Background(), "event-1", "prize-1")
			var stateErr *domain.StateError
			if !asStateError(err, &stateErr) {
				t.Fatalf("status %s: expected StateError, got %v", status, err)
			}
		}
	})

	t.Run("missing event and prize", func(t *testing.T) {
		repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
		svc := makeSvc(repo)

		if _, err := svc.DrawWinner(context.Background(), "missing", "prize-1"); err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		if _, err := svc.DrawWinner(context.Background(), "event-1", "missing"); err != domain.ErrPrizeNotFound {
			t.Fatalf("expected ErrPrizeNotFound, got %v", err)
		}
	})
}

func TestDrawService_DeleteWinner(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	repo := newFakeDrawRepo(domain.Event{ID: "event-1", Status: domain.StatusOpen})
	repo.winners = []domain.Winner{{ID: "w1", EventID: "event-1", PrizeID: "prize-1"}}
	svc := NewDrawService(repo, clock.NewFixed(now))

	if err := svc.DeleteWinner(context.Background(), "event-1", "w1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.winners) != 0 {
		t.Fatalf("expected winner removed, got %d", len(repo.winners))
	}
	if err := svc.DeleteWinner(context.Background(), "event-1", "w1"); err != domain.ErrWinnerNotFound {
		t.Fatalf("expected ErrWinnerNotFound, got %v", err)
	}
}

type fakeDrawRepo struct {
	events  map[string]domain.Event
	prizes  []domain.Prize
	tickets []domain.Ticket
	winners []domain.Winner

	// beforeInsert runs once before the next InsertWinner, simulating a
	// concurrent draw committing between sample and insert.
	beforeInsert func(winner domain.Winner)
}

func newFakeDrawRepo(events ...domain.Event) *fakeDrawRepo {
	m := make(map[string]domain.Event, len(events))
	for _, e := range events {
		m[e.ID] = e
	}
	return &fakeDrawRepo{events: m}
}

func (f *fakeDrawRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeDrawRepo) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	e, ok := f.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeDrawRepo) GetPrize(_ context.Context, eventID, prizeID string) (domain.Prize, error) {
	for _, p := range f.prizes {
		if p.EventID == eventID && p.ID == prizeID {
			return p, nil
		}
	}
	return domain.Prize{}, domain.ErrPrizeNotFound
}

func (f *fakeDrawRepo) HasWinner(_ context.Context, eventID, prizeID string) (bool, error) {
	for _, w := range f.winners {
		if w.EventID == eventID && w.PrizeID == prizeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDrawRepo) SampleEligibleTickets(_ context.Context, eventID, region string, limit int) ([]domain.Ticket, error) {
	won := make(map[string]bool, len(f.winners))
	for _, w := range f.winners {
		if w.EventID == eventID {
			won[w.ParticipantID] = true
		}
	}
	var out []domain.Ticket
	for _, tk := range f.tickets {
		if len(out) == limit {
			break
		}
		if tk.EventID != eventID {
			continue
		}
		if region != "" && tk.Region != region {
			continue
		}
		if !tk.Validated || tk.AssignedAt.IsZero() || won[tk.ParticipantID] {
			continue
		}
		out = append(out, tk)
	}
	return out, nil
}

func (f *fakeDrawRepo) InsertWinner(_ context.Context, winner domain.Winner) error {
	if f.beforeInsert != nil {
		hook := f.beforeInsert
		f.beforeInsert = nil
		hook(winner)
	}
	for _, w := range f.winners {
		if w.EventID == winner.EventID && w.PrizeID == winner.PrizeID {
			return domain.ErrPrizeAlreadyDrawn
		}
		if w.EventID == winner.EventID && w.ParticipantID == winner.ParticipantID {
			return domain.ErrParticipantAlreadyWon
		}
	}
	f.winners = append(f.winners, winner)
	return nil
}

func (f *fakeDrawRepo) ListWinners(_ context.Context, eventID string) ([]domain.Winner, error) {
	var out []domain.Winner
	for _, w := range f.winners {
		if w.EventID == eventID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeDrawRepo) DeleteWinner(_ context.Context, eventID, winnerID string) error {
	for i, w := range f.winners {
		if w.EventID == eventID && w.ID == winnerID {
			f.winners = append(f.winners[:i], f.winners[i+1:]...)
			return nil
		}
	}
	return domain.ErrWinnerNotFound
}
