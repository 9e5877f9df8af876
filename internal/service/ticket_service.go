package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// DefaultTicketNumberPrefix is used when config does not override it.
const DefaultTicketNumberPrefix = "SD"

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	statuses   repository.StatusRepository
	sequences  repository.SequenceRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	prefix     string
	now        func() time.Time
}

// TicketDependencies bundles constructor dependencies for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	CategoryRepo repository.CategoryRepository
	PriorityRepo repository.PriorityRepository
	StatusRepo   repository.StatusRepository
	SequenceRepo repository.SequenceRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	NumberPrefix string
}

// TicketCreateInput describes ticket creation payload. TicketNumber is
// normally left empty and generated; a supplied value is taken as-is.
type TicketCreateInput struct {
	TicketNumber   string
	Title          string
	Description    string
	CategoryID     string
	PriorityID     string
	RequesterName  string
	RequesterEmail string
	AssignedTo     string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	SearchText string
	CategoryID string
	PriorityID string
	StatusID   string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := deps.NumberPrefix
	if prefix == "" {
		prefix = DefaultTicketNumberPrefix
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		categories: deps.CategoryRepo,
		priorities: deps.PriorityRepo,
		statuses:   deps.StatusRepo,
		sequences:  deps.SequenceRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		prefix:     prefix,
		now:        time.Now,
	}
}

// CreateTicket validates input, assigns a ticket number and the initial
// status, and persists the ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	requesterName := strings.TrimSpace(input.RequesterName)
	requesterEmail := strings.TrimSpace(input.RequesterEmail)
	if title == "" || description == "" || requesterName == "" || requesterEmail == "" {
		return nil, apperrors.NewValidationError("title, description, requester_name, requester_email required", nil)
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewValidationError("unknown category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, mapRepoError(err, "category")
	}
	if _, err := s.priorities.GetByID(ctx, input.PriorityID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority_id": input.PriorityID})
		}
		return nil, mapRepoError(err, "priority")
	}

	initial, err := s.initialStatus(ctx)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(input.TicketNumber)
	if number == "" {
		number, err = s.nextTicketNumber(ctx)
		if err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		TicketNumber:   number,
		Title:          title,
		Description:    description,
		CategoryID:     input.CategoryID,
		PriorityID:     input.PriorityID,
		StatusID:       initial.ID,
		RequesterName:  requesterName,
		RequesterEmail: requesterEmail,
	}
	if assignee := strings.TrimSpace(input.AssignedTo); assignee != "" {
		ticket.AssignedTo = &assignee
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewUniqueViolation("ticket number already exists", map[string]any{"ticket_number": number})
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, apperrors.NewValidationError("unknown reference id", nil)
		}
		return nil, mapRepoError(err, "ticket")
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber:  ticket.TicketNumber,
			Title:         ticket.Title,
			CategoryID:    ticket.CategoryID,
			PriorityID:    ticket.PriorityID,
			RequesterName: ticket.RequesterName,
		},
	})
	return ticket, nil
}

// UpdateStatus transitions a ticket into the given status, applying the
// lifecycle stamp policy.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID, statusID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}
	status, err := s.statuses.GetByID(ctx, statusID)
	if err != nil {
		return nil, mapRepoError(err, "status")
	}

	applyLifecycleStamps(ticket, status, s.now())
	oldStatusID := ticket.StatusID
	ticket.StatusID = status.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapRepoError(err, "ticket")
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatusID: oldStatusID,
			NewStatusID: status.ID,
			StatusName:  status.Name,
			Resolved:    ticket.ResolvedAt != nil,
			Closed:      ticket.ClosedAt != nil,
		},
	})
	return ticket, nil
}

// UpdateAssignment sets or clears the assignee. An empty assignee unassigns.
func (s *TicketService) UpdateAssignment(ctx context.Context, ticketID, assignee string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}

	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		ticket.AssignedTo = nil
	} else {
		ticket.AssignedTo = &assignee
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapRepoError(err, "ticket")
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{AssignedTo: ticket.AssignedTo},
	})
	return ticket, nil
}

// AddComment appends a comment to a ticket's thread. The ticket row itself is
// not touched.
func (s *TicketService) AddComment(ctx context.Context, ticketID, author, body string, isInternal bool) (*domain.Comment, error) {
	author = strings.TrimSpace(author)
	body = strings.TrimSpace(body)
	if author == "" || body == "" {
		return nil, apperrors.NewValidationError("author and body required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		Body:       body,
		AuthorName: author,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, mapRepoError(err, "comment")
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorName:  comment.AuthorName,
			IsInternal:  comment.IsInternal,
			BodyPreview: bodyPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// GetTicket fetches a ticket with its reference rows and comment thread.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.TicketDetail, []domain.Comment, error) {
	detail, err := s.tickets.GetDetail(ctx, ticketID)
	if err != nil {
		return nil, nil, mapRepoError(err, "ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, mapRepoError(err, "comment")
	}
	return detail, comments, nil
}

// ListTickets returns tickets newest-first, narrowed by the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.TicketDetail, error) {
	repoFilter := repository.TicketFilter{}
	if search := strings.TrimSpace(filter.SearchText); search != "" {
		repoFilter.SearchText = &search
	}
	if filter.CategoryID != "" {
		repoFilter.CategoryID = &filter.CategoryID
	}
	if filter.PriorityID != "" {
		repoFilter.PriorityID = &filter.PriorityID
	}
	if filter.StatusID != "" {
		repoFilter.StatusID = &filter.StatusID
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}
	return tickets, nil
}

// DeleteTicket removes a ticket; its comments go with it.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return mapRepoError(err, "ticket")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return mapRepoError(err, "ticket")
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Payload:  events.TicketDeletedPayload{TicketNumber: ticket.TicketNumber},
	})
	return nil
}

// nextTicketNumber produces PREFIX-YYYYMMDD-NNNN from the per-day atomic
// counter. The suffix widens silently past 9999.
func (s *TicketService) nextTicketNumber(ctx context.Context) (string, error) {
	day := s.now().Format("20060102")
	seq, err := s.sequences.Next(ctx, day)
	if err != nil {
		return "", mapRepoError(err, "ticket sequence")
	}
	return fmt.Sprintf("%s-%s-%04d", s.prefix, day, seq), nil
}

// initialStatus picks the status new tickets start in: the lowest-ordered
// non-terminal status without lifecycle semantics.
func (s *TicketService) initialStatus(ctx context.Context) (*domain.Status, error) {
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "status")
	}
	for i := range statuses {
		if !statuses[i].IsClosed && statuses[i].SemanticRole == domain.RoleNone {
			return &statuses[i], nil
		}
	}
	return nil, apperrors.NewValidationError("no initial status configured", nil)
}

// applyLifecycleStamps writes resolved_at and closed_at on the way into a
// status carrying the matching semantics. Each stamp is written at most once;
// moving away from a terminal status and back keeps the first timestamps.
// This function is the single place that policy lives.
func applyLifecycleStamps(ticket *domain.Ticket, target *domain.Status, now time.Time) {
	if target.SemanticRole == domain.RoleResolved && ticket.ResolvedAt == nil {
		stamp := now
		ticket.ResolvedAt = &stamp
	}
	if target.IsClosed && ticket.ClosedAt == nil {
		stamp := now
		ticket.ClosedAt = &stamp
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func bodyPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
