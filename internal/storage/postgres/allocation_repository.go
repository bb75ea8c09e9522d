package postgres

import (
	"context"
	"fmt"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AllocationRepository persists the region allocation table. The whole
// set for an event is always replaced at once; rows are never updated
// in place.
type AllocationRepository struct {
	pool *pgxpool.Pool
	ev   *EventRepository
}

func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{pool: pool, ev: NewEventRepository(pool)}
}

func (r *AllocationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *AllocationRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return r.ev.GetEvent(ctx, eventID)
}

func (r *AllocationRepository) DeleteAllocations(ctx context.Context, eventID string) error {
	_, err := querier(ctx, r.pool).Exec(ctx, `DELETE FROM allocations WHERE event_id = $1`, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete allocations: %w", err)
	}
	return nil
}

func (r *AllocationRepository) InsertAllocations(ctx context.Context, allocations []domain.Allocation) error {
	const stmt = `
INSERT INTO allocations (id, event_id, region, range_from, range_to, quota, percent)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	q := querier(ctx, r.pool)
	for _, a := range allocations {
		_, err := q.Exec(ctx, stmt,
			a.ID, a.EventID, a.Region, a.RangeFrom, a.RangeTo, a.Quota, a.Percent)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateRegion
			}
			if isForeignKeyViolation(err) {
				return domain.ErrEventNotFound
			}
			return fmt.Errorf("insert allocation %s: %w", a.Region, err)
		}
	}
	return nil
}

func (r *AllocationRepository) ListAllocations(ctx context.Context, eventID string) ([]domain.Allocation, error) {
	const query = `
SELECT id, event_id, region, range_from, range_to, quota, percent
FROM allocations
WHERE event_id = $1
ORDER BY region ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var allocations []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		if err := rows.Scan(&a.ID, &a.EventID, &a.Region, &a.RangeFrom, &a.RangeTo, &a.Quota, &a.Percent); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate allocations: %w", rows.Err())
	}
	return allocations, nil
}
