package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
)

// memStore is a shared in-memory backing for the fake repositories. Its
// Update path mimics the database trigger: updated_at comes from the store
// clock, never from the caller.
type memStore struct {
	now        func() time.Time
	categories map[string]domain.Category
	priorities map[string]domain.Priority
	statuses   map[string]domain.Status
	tickets    map[string]domain.Ticket
	comments   []domain.Comment
	sequences  map[string]int
	nextID     int
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:        now,
		categories: make(map[string]domain.Category),
		priorities: make(map[string]domain.Priority),
		statuses:   make(map[string]domain.Status),
		tickets:    make(map[string]domain.Ticket),
		sequences:  make(map[string]int),
	}
}

// advancingClock ticks one second per call so consecutive stamps are
// strictly ordered.
func advancingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func (s *memStore) id(kind string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", kind, s.nextID)
}

func (s *memStore) addCategory(name string) domain.Category {
	category := domain.Category{ID: s.id("cat"), Name: name, CreatedAt: s.now()}
	s.categories[category.ID] = category
	return category
}

func (s *memStore) addPriority(name string, level int) domain.Priority {
	priority := domain.Priority{ID: s.id("pri"), Name: name, Level: level, CreatedAt: s.now()}
	s.priorities[priority.ID] = priority
	return priority
}

func (s *memStore) addStatus(name string, sortOrder int, isClosed bool, role domain.SemanticRole) domain.Status {
	status := domain.Status{
		ID:           s.id("sta"),
		Name:         name,
		SortOrder:    sortOrder,
		IsClosed:     isClosed,
		SemanticRole: role,
		CreatedAt:    s.now(),
	}
	s.statuses[status.ID] = status
	return status
}

// seedWorkflow installs the conventional Open/In Progress/Resolved/Closed
// statuses and returns them in that order.
func (s *memStore) seedWorkflow() (open, inProgress, resolved, closed domain.Status) {
	open = s.addStatus("Open", 1, false, domain.RoleNone)
	inProgress = s.addStatus("In Progress", 2, false, domain.RoleNone)
	resolved = s.addStatus("Resolved", 3, false, domain.RoleResolved)
	closed = s.addStatus("Closed", 4, true, domain.RoleClosed)
	return open, inProgress, resolved, closed
}

func (s *memStore) detail(ticket domain.Ticket) domain.TicketDetail {
	category := s.categories[ticket.CategoryID]
	priority := s.priorities[ticket.PriorityID]
	status := s.statuses[ticket.StatusID]
	return domain.TicketDetail{
		Ticket:        ticket,
		CategoryName:  category.Name,
		PriorityName:  priority.Name,
		PriorityLevel: priority.Level,
		StatusName:    status.Name,
		StatusClosed:  status.IsClosed,
		StatusRole:    status.SemanticRole,
	}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

type fakeCategoryRepo struct{ store *memStore }

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	for _, existing := range f.store.categories {
		if existing.Name == category.Name {
			return uniqueViolation()
		}
	}
	category.ID = f.store.id("cat")
	category.CreatedAt = f.store.now()
	f.store.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := f.store.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	result := make([]domain.Category, 0, len(f.store.categories))
	for _, category := range f.store.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.store.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, ticket := range f.store.tickets {
		if ticket.CategoryID == id {
			return &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
		}
	}
	delete(f.store.categories, id)
	return nil
}

type fakePriorityRepo struct{ store *memStore }

func (f *fakePriorityRepo) Create(_ context.Context, priority *domain.Priority) error {
	for _, existing := range f.store.priorities {
		if existing.Name == priority.Name {
			return uniqueViolation()
		}
	}
	priority.ID = f.store.id("pri")
	priority.CreatedAt = f.store.now()
	f.store.priorities[priority.ID] = *priority
	return nil
}

func (f *fakePriorityRepo) GetByID(_ context.Context, id string) (*domain.Priority, error) {
	priority, ok := f.store.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &priority, nil
}

func (f *fakePriorityRepo) List(_ context.Context) ([]domain.Priority, error) {
	result := make([]domain.Priority, 0, len(f.store.priorities))
	for _, priority := range f.store.priorities {
		result = append(result, priority)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Level < result[j].Level })
	return result, nil
}

func (f *fakePriorityRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.store.priorities[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.store.priorities, id)
	return nil
}

type fakeStatusRepo struct{ store *memStore }

func (f *fakeStatusRepo) Create(_ context.Context, status *domain.Status) error {
	for _, existing := range f.store.statuses {
		if existing.Name == status.Name {
			return uniqueViolation()
		}
	}
	status.ID = f.store.id("sta")
	status.CreatedAt = f.store.now()
	f.store.statuses[status.ID] = *status
	return nil
}

func (f *fakeStatusRepo) GetByID(_ context.Context, id string) (*domain.Status, error) {
	status, ok := f.store.statuses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &status, nil
}

func (f *fakeStatusRepo) List(_ context.Context) ([]domain.Status, error) {
	result := make([]domain.Status, 0, len(f.store.statuses))
	for _, status := range f.store.statuses {
		result = append(result, status)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (f *fakeStatusRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.store.statuses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.store.statuses, id)
	return nil
}

type fakeTicketRepo struct{ store *memStore }

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	for _, existing := range f.store.tickets {
		if existing.TicketNumber == ticket.TicketNumber {
			return uniqueViolation()
		}
	}
	ticket.ID = f.store.id("tkt")
	now := f.store.now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	f.store.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := f.store.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = f.store.now()
	f.store.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) GetDetail(_ context.Context, id string) (*domain.TicketDetail, error) {
	ticket, ok := f.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	detail := f.store.detail(ticket)
	return &detail, nil
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.TicketDetail, error) {
	var result []domain.TicketDetail
	for _, ticket := range f.store.tickets {
		if filter.CategoryID != nil && ticket.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.PriorityID != nil && ticket.PriorityID != *filter.PriorityID {
			continue
		}
		if filter.StatusID != nil && ticket.StatusID != *filter.StatusID {
			continue
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if filter.SearchText != nil {
			needle := strings.ToLower(strings.TrimSpace(*filter.SearchText))
			haystack := strings.ToLower(ticket.TicketNumber + " " + ticket.Title + " " + ticket.Description + " " + ticket.RequesterName)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		result = append(result, f.store.detail(ticket))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.store.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.store.tickets, id)
	kept := f.store.comments[:0]
	for _, comment := range f.store.comments {
		if comment.TicketID != id {
			kept = append(kept, comment)
		}
	}
	f.store.comments = kept
	return nil
}

type fakeCommentRepo struct{ store *memStore }

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = f.store.id("cmt")
	comment.CreatedAt = f.store.now()
	f.store.comments = append(f.store.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range f.store.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type fakeSequenceRepo struct{ store *memStore }

func (f *fakeSequenceRepo) Next(_ context.Context, day string) (int, error) {
	f.store.sequences[day]++
	return f.store.sequences[day], nil
}

// stubCache is an in-memory SnapshotCache for report tests.
type stubCache struct {
	values map[string][]byte
	getErr error
	setErr error
}

func newStubCache() *stubCache {
	return &stubCache{values: make(map[string][]byte)}
}

func (c *stubCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func newTestTicketService(store *memStore) *TicketService {
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   &fakeTicketRepo{store: store},
		CommentRepo:  &fakeCommentRepo{store: store},
		CategoryRepo: &fakeCategoryRepo{store: store},
		PriorityRepo: &fakePriorityRepo{store: store},
		StatusRepo:   &fakeStatusRepo{store: store},
		SequenceRepo: &fakeSequenceRepo{store: store},
	})
	svc.now = store.now
	return svc
}
