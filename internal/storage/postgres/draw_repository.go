package postgres

import (
	"context"
	"fmt"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DrawRepository is the draw engine's storage: eligibility sampling and
// winner records, guarded by the (event, prize) uniqueness constraint.
type DrawRepository struct {
	pool *pgxpool.Pool
	ev   *EventRepository
}

func NewDrawRepository(pool *pgxpool.Pool) *DrawRepository {
	return &DrawRepository{pool: pool, ev: NewEventRepository(pool)}
}

func (r *DrawRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *DrawRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return r.ev.GetEvent(ctx, eventID)
}

func (r *DrawRepository) GetPrize(ctx context.Context, eventID, prizeID string) (domain.Prize, error) {
	const query = `
SELECT id, event_id, name, position, scope, COALESCE(region, '')
FROM prizes
WHERE id = $1 AND event_id = $2`
	var p domain.Prize
	var scope string
	err := querier(ctx, r.pool).QueryRow(ctx, query, prizeID, eventID).
		Scan(&p.ID, &p.EventID, &p.Name, &p.Position, &scope, &p.Region)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Prize{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Prize{}, domain.ErrPrizeNotFound
		}
		return domain.Prize{}, fmt.Errorf("get prize: %w", err)
	}
	p.Scope = domain.PrizeScope(scope)
	return p, nil
}

func (r *DrawRepository) HasWinner(ctx context.Context, eventID, prizeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM winners WHERE event_id = $1 AND prize_id = $2)`
	var exists bool
	if err := querier(ctx, r.pool).QueryRow(ctx, query, eventID, prizeID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check winner: %w", err)
	}
	return exists, nil
}

// SampleEligibleTickets pulls a bounded random sample of tickets whose
// holder can still win: ticket validated, number assigned, and no winner
// row for this event. region narrows the pool; empty means event-wide.
func (r *DrawRepository) SampleEligibleTickets(ctx context.Context, eventID, region string, limit int) ([]domain.Ticket, error) {
	const query = `
SELECT t.id, t.event_id, t.participant_id, t.region, t.number, t.code, t.validated, t.assigned_at, t.created_at
FROM tickets t
WHERE t.event_id = $1
  AND ($2 = '' OR t.region = $2)
  AND t.validated
  AND t.assigned_at IS NOT NULL
  AND NOT EXISTS (SELECT 1 FROM winners w WHERE w.event_id = t.event_id AND w.participant_id = t.participant_id)
ORDER BY random()
LIMIT $3`
	rows, err := querier(ctx, r.pool).Query(ctx, query, eventID, region, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("sample eligible tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.EventID, &t.ParticipantID, &t.Region, &t.Number, &t.Code, &t.Validated, &t.AssignedAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tickets: %w", rows.Err())
	}
	return tickets, nil
}

func (r *DrawRepository) InsertWinner(ctx context.Context, winner domain.Winner) error {
	const stmt = `
INSERT INTO winners (id, event_id, prize_id, ticket_id, participant_id, ticket_number, drawn_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := querier(ctx, r.pool).Exec(ctx, stmt,
		winner.ID, winner.EventID, winner.PrizeID, winner.TicketID, winner.ParticipantID, winner.TicketNumber, winner.DrawnAt)
	if err != nil {
		// Both constraints settle concurrent draws: (event, prize) when
		// two draws race on one prize, (event, participant) when draws
		// for different prizes both sample the same holder.
		switch uniqueConstraint(err) {
		case "winners_event_prize_key":
			return domain.ErrPrizeAlreadyDrawn
		case "winners_event_participant_key":
			return domain.ErrParticipantAlreadyWon
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPrizeNotFound
		}
		return fmt.Errorf("insert winner: %w", err)
	}
	return nil
}

func (r *DrawRepository) ListWinners(ctx context.Context, eventID string) ([]domain.Winner, error) {
	const query = `
SELECT w.id, w.event_id, w.prize_id, w.ticket_id, w.participant_id, w.ticket_number, w.drawn_at
FROM winners w
JOIN prizes p ON p.id = w.prize_id
WHERE w.event_id = $1
ORDER BY p.position ASC, w.drawn_at ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list winners: %w", err)
	}
	defer rows.Close()

	var winners []domain.Winner
	for rows.Next() {
		var w domain.Winner
		if err := rows.Scan(&w.ID, &w.EventID, &w.PrizeID, &w.TicketID, &w.ParticipantID, &w.TicketNumber, &w.DrawnAt); err != nil {
			return nil, fmt.Errorf("scan winner: %w", err)
		}
		winners = append(winners, w)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate winners: %w", rows.Err())
	}
	return winners, nil
}

func (r *DrawRepository) DeleteWinner(ctx context.Context, eventID, winnerID string) error {
	tag, err := querier(ctx, r.pool).Exec(ctx, `DELETE FROM winners WHERE id = $1 AND event_id = $2`, winnerID, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete winner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWinnerNotFound
	}
	return nil
}
