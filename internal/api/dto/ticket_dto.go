package dto

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// CreateTicketRequest payload. TicketNumber is optional; when empty the
// numbering policy generates one.
type CreateTicketRequest struct {
	TicketNumber   string `json:"ticket_number"`
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	CategoryID     string `json:"category_id" validate:"required,uuid"`
	PriorityID     string `json:"priority_id" validate:"required,uuid"`
	RequesterName  string `json:"requester_name" validate:"required"`
	RequesterEmail string `json:"requester_email" validate:"required,email"`
	AssignedTo     string `json:"assigned_to"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	StatusID string `json:"status_id" validate:"required,uuid"`
}

// UpdateAssignmentRequest payload. Empty assigned_to unassigns.
type UpdateAssignmentRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	AuthorName string `json:"author_name" validate:"required"`
	Body       string `json:"body" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string     `json:"id"`
	TicketNumber   string     `json:"ticket_number"`
	Title          string     `json:"title"`
	CategoryID     string     `json:"category_id"`
	PriorityID     string     `json:"priority_id"`
	StatusID       string     `json:"status_id"`
	RequesterName  string     `json:"requester_name"`
	AssignedTo     *string    `json:"assigned_to"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	RequesterEmail string     `json:"requester_email"`
}

// TicketListItem is a row of the ticket list with reference names joined in.
type TicketListItem struct {
	TicketSummary
	CategoryName  string              `json:"category_name"`
	PriorityName  string              `json:"priority_name"`
	PriorityLevel int                 `json:"priority_level"`
	StatusName    string              `json:"status_name"`
	StatusClosed  bool                `json:"status_closed"`
	StatusRole    domain.SemanticRole `json:"status_role"`
}

// TicketDetailResponse provides full ticket info with its comment thread.
type TicketDetailResponse struct {
	TicketListItem
	Description string            `json:"description"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Body       string    `json:"body"`
	AuthorName string    `json:"author_name"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}
