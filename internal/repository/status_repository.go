package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// StatusRepository encapsulates workflow status persistence.
type StatusRepository interface {
	Create(ctx context.Context, status *domain.Status) error
	GetByID(ctx context.Context, id string) (*domain.Status, error)
	List(ctx context.Context) ([]domain.Status, error)
	Delete(ctx context.Context, id string) error
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository instantiates repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) Create(ctx context.Context, status *domain.Status) error {
	const query = `
        INSERT INTO statuses (name, sort_order, color, is_closed, semantic_role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		status.Name,
		status.SortOrder,
		status.Color,
		status.IsClosed,
		status.SemanticRole,
	).Scan(&status.ID, &status.CreatedAt)
}

func (r *statusRepository) GetByID(ctx context.Context, id string) (*domain.Status, error) {
	const query = `
        SELECT id, name, sort_order, color, is_closed, semantic_role, created_at
        FROM statuses WHERE id=$1`
	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&status.ID,
		&status.Name,
		&status.SortOrder,
		&status.Color,
		&status.IsClosed,
		&status.SemanticRole,
		&status.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	const query = `
        SELECT id, name, sort_order, color, is_closed, semantic_role, created_at
        FROM statuses ORDER BY sort_order ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(
			&status.ID,
			&status.Name,
			&status.SortOrder,
			&status.Color,
			&status.IsClosed,
			&status.SemanticRole,
			&status.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}

func (r *statusRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM statuses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
