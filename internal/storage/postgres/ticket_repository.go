package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketRepository is the ticket generator's storage: candidate batches
// from the source population, batched ticket inserts, and the per-event
// advisory lock that serializes runs.
type TicketRepository struct {
	pool *pgxpool.Pool
	ev   *EventRepository
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool, ev: NewEventRepository(pool)}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TicketRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return r.ev.GetEvent(ctx, eventID)
}

func (r *TicketRepository) ListAllocations(ctx context.Context, eventID string) ([]domain.Allocation, error) {
	return NewAllocationRepository(r.pool).ListAllocations(ctx, eventID)
}

func (r *TicketRepository) UpdateEventMetadata(ctx context.Context, eventID string, meta domain.EventMetadata) error {
	return r.ev.UpdateEventMetadata(ctx, eventID, meta)
}

// eventLockKey maps an event id onto the full 64-bit advisory lock
// keyspace, keeping the chance of two events colliding negligible. The
// migration and test-harness locks use small fixed ids in the same
// keyspace, far from any fnv output in practice.
func eventLockKey(eventID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(eventID))
	return int64(h.Sum64())
}

// AcquireGenerationLock takes a session-scoped advisory lock keyed by
// the event. The lock rides a dedicated connection held until release
// is called; a second caller gets domain.ErrGenerationInProgress.
func (r *TicketRepository) AcquireGenerationLock(ctx context.Context, eventID string) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock conn: %w", err)
	}

	var locked bool
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, eventLockKey(eventID)).Scan(&locked)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire generation lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, domain.ErrGenerationInProgress
	}

	release := func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, eventLockKey(eventID))
		conn.Release()
	}
	return release, nil
}

func (r *TicketRepository) DeleteTickets(ctx context.Context, eventID string) (int, error) {
	tag, err := querier(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE event_id = $1`, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("delete tickets: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CandidateBatch returns up to limit validated participants of the
// region that hold no ticket for the event yet, in randomized order.
// Successive calls therefore draw without replacement.
func (r *TicketRepository) CandidateBatch(ctx context.Context, eventID, region string, limit int) ([]domain.Participant, error) {
	const query = `
SELECT p.id, p.event_id, p.document, p.full_name, p.region, p.validated, p.created_at
FROM participants p
WHERE p.event_id = $1
  AND p.region = $2
  AND p.validated
  AND NOT EXISTS (SELECT 1 FROM tickets t WHERE t.event_id = p.event_id AND t.participant_id = p.id)
ORDER BY random()
LIMIT $3`
	rows, err := querier(ctx, r.pool).Query(ctx, query, eventID, region, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("candidate batch: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.Document, &p.FullName, &p.Region, &p.Validated, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate participants: %w", rows.Err())
	}
	return participants, nil
}

// CountCandidates reports how many validated participants of the region
// still hold no ticket for the event.
func (r *TicketRepository) CountCandidates(ctx context.Context, eventID, region string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM participants p
WHERE p.event_id = $1
  AND p.region = $2
  AND p.validated
  AND NOT EXISTS (SELECT 1 FROM tickets t WHERE t.event_id = p.event_id AND t.participant_id = p.id)`
	var n int
	err := querier(ctx, r.pool).QueryRow(ctx, query, eventID, region).Scan(&n)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return n, nil
}

func (r *TicketRepository) InsertTickets(ctx context.Context, tickets []domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, participant_id, region, number, code, validated, assigned_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	q := querier(ctx, r.pool)
	for _, t := range tickets {
		_, err := q.Exec(ctx, stmt,
			t.ID, t.EventID, t.ParticipantID, t.Region, t.Number, t.Code, t.Validated, t.AssignedAt, t.CreatedAt)
		if err != nil {
			if uniqueConstraint(err) == "tickets_event_number_key" {
				return fmt.Errorf("insert ticket %d: %w", t.Number, domain.ErrDuplicateTicketNumber)
			}
			if isForeignKeyViolation(err) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("insert ticket %d: %w", t.Number, err)
		}
	}
	return nil
}

func (r *TicketRepository) CountTickets(ctx context.Context, eventID string) (int, error) {
	var n int
	err := querier(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return n, nil
}
