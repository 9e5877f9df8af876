package domain

import "time"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	TicketNumber   string
	Title          string
	Description    string
	CategoryID     string
	PriorityID     string
	StatusID       string
	RequesterName  string
	RequesterEmail string
	AssignedTo     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
}

// TicketDetail is a ticket joined with its reference rows, the shape the
// report engine and read endpoints consume.
type TicketDetail struct {
	Ticket
	CategoryName  string
	PriorityName  string
	PriorityLevel int
	StatusName    string
	StatusClosed  bool
	StatusRole    SemanticRole
}

// Comment is one note in a ticket's thread. Comments are append-only and are
// removed only when their ticket is deleted.
type Comment struct {
	ID         string
	TicketID   string
	Body       string
	AuthorName string
	IsInternal bool
	CreatedAt  time.Time
}
