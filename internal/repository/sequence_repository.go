package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceRepository hands out per-day ticket sequence numbers.
type SequenceRepository interface {
	Next(ctx context.Context, day string) (int, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository instantiates repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

// Next atomically increments and returns the counter for the given day
// (YYYYMMDD). The upsert makes concurrent callers serialize on the row, so
// two creations on the same day can never receive the same value.
func (r *sequenceRepository) Next(ctx context.Context, day string) (int, error) {
	const query = `
        INSERT INTO ticket_sequences (day, value) VALUES ($1, 1)
        ON CONFLICT (day) DO UPDATE SET value = ticket_sequences.value + 1
        RETURNING value`
	var value int
	if err := r.pool.QueryRow(ctx, query, day).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
