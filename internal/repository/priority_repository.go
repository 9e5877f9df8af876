package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// PriorityRepository encapsulates priority persistence.
type PriorityRepository interface {
	Create(ctx context.Context, priority *domain.Priority) error
	GetByID(ctx context.Context, id string) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
	Delete(ctx context.Context, id string) error
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository instantiates repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.Priority) error {
	const query = `
        INSERT INTO priorities (name, level, color)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		priority.Name,
		priority.Level,
		priority.Color,
	).Scan(&priority.ID, &priority.CreatedAt)
}

func (r *priorityRepository) GetByID(ctx context.Context, id string) (*domain.Priority, error) {
	const query = `
        SELECT id, name, level, color, created_at
        FROM priorities WHERE id=$1`
	var priority domain.Priority
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&priority.ID,
		&priority.Name,
		&priority.Level,
		&priority.Color,
		&priority.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	const query = `
        SELECT id, name, level, color, created_at
        FROM priorities ORDER BY level ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(
			&priority.ID,
			&priority.Name,
			&priority.Level,
			&priority.Color,
			&priority.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}

func (r *priorityRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM priorities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
