package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository covers the administrative surface (events, prizes,
// participants) and the lifecycle state machine's storage needs.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const eventColumns = `id, name, scheduled_at, status, public, metadata, created_at`

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	var status string
	var metadata []byte
	if err := row.Scan(&e.ID, &e.Name, &e.ScheduledAt, &status, &e.Public, &metadata, &e.CreatedAt); err != nil {
		return domain.Event{}, err
	}
	e.Status = domain.Status(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return domain.Event{}, fmt.Errorf("decode event metadata: %w", err)
		}
	}
	return e, nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode event metadata: %w", err)
	}

	const stmt = `
INSERT INTO events (id, name, scheduled_at, status, public, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = querier(ctx, r.pool).Exec(ctx, stmt,
		event.ID, event.Name, event.ScheduledAt, string(event.Status), event.Public, metadata, event.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(querier(ctx, r.pool).QueryRow(ctx, query, eventID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

// DeleteEvent removes the event row; dependent rows go with it through
// the schema's ON DELETE CASCADE, all inside one transaction.
func (r *EventRepository) DeleteEvent(ctx context.Context, eventID string) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		tag, err := querier(txCtx, r.pool).Exec(txCtx, `DELETE FROM events WHERE id = $1`, eventID)
		if err != nil {
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("delete event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEventNotFound
		}
		return nil
	})
}

// UpdateEventStatus compare-and-sets the lifecycle state and optionally
// the public flag. It reports whether the row still carried the expected
// status.
func (r *EventRepository) UpdateEventStatus(ctx context.Context, eventID string, from, to domain.Status, public *bool) (bool, error) {
	const stmt = `
UPDATE events
SET status = $3, public = COALESCE($4, public)
WHERE id = $1 AND status = $2`
	tag, err := querier(ctx, r.pool).Exec(ctx, stmt, eventID, string(from), string(to), public)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("update event status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EventRepository) UpdateEventMetadata(ctx context.Context, eventID string, meta domain.EventMetadata) error {
	metadata, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode event metadata: %w", err)
	}
	tag, err := querier(ctx, r.pool).Exec(ctx, `UPDATE events SET metadata = $2 WHERE id = $1`, eventID, metadata)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update event metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) CreatePrize(ctx context.Context, prize domain.Prize) error {
	const stmt = `
INSERT INTO prizes (id, event_id, name, position, scope, region)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`
	_, err := querier(ctx, r.pool).Exec(ctx, stmt,
		prize.ID, prize.EventID, prize.Name, prize.Position, string(prize.Scope), prize.Region)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create prize: %w", err)
	}
	return nil
}

func (r *EventRepository) ListPrizes(ctx context.Context, eventID string) ([]domain.Prize, error) {
	const query = `
SELECT id, event_id, name, position, scope, COALESCE(region, '')
FROM prizes
WHERE event_id = $1
ORDER BY position ASC, name ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	defer rows.Close()

	return collectPrizes(rows)
}

// ListUnassignedPrizes returns the event's prizes that still have no
// winner row, in draw order.
func (r *EventRepository) ListUnassignedPrizes(ctx context.Context, eventID string) ([]domain.Prize, error) {
	const query = `
SELECT p.id, p.event_id, p.name, p.position, p.scope, COALESCE(p.region, '')
FROM prizes p
WHERE p.event_id = $1
  AND NOT EXISTS (SELECT 1 FROM winners w WHERE w.event_id = p.event_id AND w.prize_id = p.id)
ORDER BY p.position ASC, p.name ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list unassigned prizes: %w", err)
	}
	defer rows.Close()

	return collectPrizes(rows)
}

func collectPrizes(rows pgx.Rows) ([]domain.Prize, error) {
	var prizes []domain.Prize
	for rows.Next() {
		var p domain.Prize
		var scope string
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.Position, &scope, &p.Region); err != nil {
			return nil, fmt.Errorf("scan prize: %w", err)
		}
		p.Scope = domain.PrizeScope(scope)
		prizes = append(prizes, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate prizes: %w", rows.Err())
	}
	return prizes, nil
}

// InsertParticipants bulk-loads the batch, skipping documents the event
// already has. Returns how many rows were inserted.
func (r *EventRepository) InsertParticipants(ctx context.Context, participants []domain.Participant) (int, error) {
	inserted := 0
	err := withTx(ctx, r.pool, func(txCtx context.Context) error {
		const stmt = `
INSERT INTO participants (id, event_id, document, full_name, region, validated, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (event_id, document) DO NOTHING`
		q := querier(txCtx, r.pool)
		for _, p := range participants {
			tag, err := q.Exec(txCtx, stmt,
				p.ID, p.EventID, p.Document, p.FullName, p.Region, p.Validated, p.CreatedAt)
			if err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrEventNotFound
				}
				return fmt.Errorf("insert participant %s: %w", p.Document, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *EventRepository) CountParticipantsByRegion(ctx context.Context, eventID string) (map[string]int, error) {
	const query = `
SELECT region, COUNT(*)
FROM participants
WHERE event_id = $1
GROUP BY region`
	rows, err := querier(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var region string
		var n int
		if err := rows.Scan(&region, &n); err != nil {
			return nil, fmt.Errorf("scan participant count: %w", err)
		}
		counts[region] = n
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate participant counts: %w", rows.Err())
	}
	return counts, nil
}
