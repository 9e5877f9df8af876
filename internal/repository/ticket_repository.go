package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// TicketFilter captures list parameters. All present filters are ANDed.
type TicketFilter struct {
	SearchText  *string
	CategoryID  *string
	PriorityID  *string
	StatusID    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetDetail(ctx context.Context, id string) (*domain.TicketDetail, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketDetail, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, title, description, category_id, priority_id, status_id,
                             requester_name, requester_email, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.StatusID,
		ticket.RequesterName,
		ticket.RequesterEmail,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update persists mutable ticket fields. updated_at is stamped by the row
// trigger and read back, never taken from the caller.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category_id=$3, priority_id=$4, status_id=$5,
            assigned_to=$6, resolved_at=$7, closed_at=$8
        WHERE id=$9
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.StatusID,
		ticket.AssignedTo,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	if err != nil {
		return err
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_number, title, description, category_id, priority_id, status_id,
               requester_name, requester_email, assigned_to, created_at, updated_at, resolved_at, closed_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.CategoryID,
		&ticket.PriorityID,
		&ticket.StatusID,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

const detailColumns = `
        t.id, t.ticket_number, t.title, t.description, t.category_id, t.priority_id, t.status_id,
        t.requester_name, t.requester_email, t.assigned_to, t.created_at, t.updated_at, t.resolved_at, t.closed_at,
        c.name, p.name, p.level, s.name, s.is_closed, s.semantic_role`

const detailFrom = `
        FROM tickets t
        JOIN categories c ON c.id = t.category_id
        JOIN priorities p ON p.id = t.priority_id
        JOIN statuses s ON s.id = t.status_id`

func (r *ticketRepository) GetDetail(ctx context.Context, id string) (*domain.TicketDetail, error) {
	query := `SELECT` + detailColumns + detailFrom + ` WHERE t.id=$1`
	var detail domain.TicketDetail
	if err := scanDetail(r.pool.QueryRow(ctx, query, id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketDetail, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("t.category_id=$%d", len(args)))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("t.priority_id=$%d", len(args)))
	}
	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("t.status_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if filter.SearchText != nil && strings.TrimSpace(*filter.SearchText) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchText)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.ticket_number) LIKE %[1]s OR LOWER(t.title) LIKE %[1]s OR LOWER(t.description) LIKE %[1]s OR LOWER(t.requester_name) LIKE %[1]s)",
			placeholder))
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY t.created_at DESC`,
		detailColumns, detailFrom, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketDetail
	for rows.Next() {
		var detail domain.TicketDetail
		if err := scanDetail(rows, &detail); err != nil {
			return nil, err
		}
		result = append(result, detail)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanDetail(row pgx.Row, detail *domain.TicketDetail) error {
	return row.Scan(
		&detail.ID,
		&detail.TicketNumber,
		&detail.Title,
		&detail.Description,
		&detail.CategoryID,
		&detail.PriorityID,
		&detail.StatusID,
		&detail.RequesterName,
		&detail.RequesterEmail,
		&detail.AssignedTo,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.ResolvedAt,
		&detail.ClosedAt,
		&detail.CategoryName,
		&detail.PriorityName,
		&detail.PriorityLevel,
		&detail.StatusName,
		&detail.StatusClosed,
		&detail.StatusRole,
	)
}
