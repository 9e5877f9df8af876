package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

type workflowFixture struct {
	category   domain.Category
	priority   domain.Priority
	open       domain.Status
	inProgress domain.Status
	resolved   domain.Status
	closed     domain.Status
}

func seededStore(now func() time.Time) (*memStore, workflowFixture) {
	store := newMemStore(now)
	fix := workflowFixture{
		category: store.addCategory("Hardware"),
		priority: store.addPriority("High", 3),
	}
	fix.open, fix.inProgress, fix.resolved, fix.closed = store.seedWorkflow()
	return store, fix
}

func baseInput(fix workflowFixture) TicketCreateInput {
	return TicketCreateInput{
		Title:          "Printer on fire",
		Description:    "Smoke coming from the office printer",
		CategoryID:     fix.category.ID,
		PriorityID:     fix.priority.ID,
		RequesterName:  "Dana Smith",
		RequesterEmail: "dana@example.com",
	}
}

func TestCreateTicketNumbersSequentially(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	first, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)
	assert.Equal(t, "SD-20240101-0001", first.TicketNumber)

	input := baseInput(fix)
	input.Title = "Second issue"
	second, err := svc.CreateTicket(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "SD-20240101-0002", second.TicketNumber)
}

func TestCreateTicketStartsOpenWithUnsetStamps(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)

	ticket, err := svc.CreateTicket(context.Background(), baseInput(fix))
	require.NoError(t, err)

	assert.Equal(t, fix.open.ID, ticket.StatusID)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)
	assert.False(t, ticket.CreatedAt.IsZero())
}

func TestCreateTicketAcceptsSuppliedNumber(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)

	input := baseInput(fix)
	input.TicketNumber = "LEGACY-42"
	ticket, err := svc.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "LEGACY-42", ticket.TicketNumber)

	// the generator was never consulted
	assert.Empty(t, store.sequences)
}

func TestCreateTicketDuplicateNumberFailsWithUniqueViolation(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	input := baseInput(fix)
	input.TicketNumber = "SD-20240101-0001"
	_, err := svc.CreateTicket(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateTicket(ctx, input)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNIQUE_VIOLATION"))
	assert.Len(t, store.tickets, 1)
}

func TestCreateTicketUnknownCategoryFailsWithValidationError(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)

	input := baseInput(fix)
	input.CategoryID = "cat-missing"
	_, err := svc.CreateTicket(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Empty(t, store.tickets)
}

func TestCreateTicketEmptyFieldsFailValidation(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)

	input := baseInput(fix)
	input.Title = "   "
	_, err := svc.CreateTicket(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCreateTicketWithoutInitialStatusFails(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	fix := workflowFixture{
		category: store.addCategory("Hardware"),
		priority: store.addPriority("High", 3),
	}
	// only terminal or semantically-tagged statuses exist
	store.addStatus("Resolved", 1, false, domain.RoleResolved)
	store.addStatus("Closed", 2, true, domain.RoleClosed)
	svc := newTestTicketService(store)

	_, err := svc.CreateTicket(context.Background(), baseInput(fix))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestUpdateStatusTouchesUpdatedAt(t *testing.T) {
	clock := advancingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)
	before := ticket.UpdatedAt

	updated, err := svc.UpdateStatus(ctx, ticket.ID, fix.inProgress.ID)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(before), "updated_at must strictly increase")
}

func TestUpdateStatusStampsResolvedAndClosedOnce(t *testing.T) {
	clock := advancingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)

	afterResolve, err := svc.UpdateStatus(ctx, ticket.ID, fix.resolved.ID)
	require.NoError(t, err)
	require.NotNil(t, afterResolve.ResolvedAt)
	firstResolved := *afterResolve.ResolvedAt
	assert.Nil(t, afterResolve.ClosedAt)

	// reopen, then resolve again: the stamp must not move
	_, err = svc.UpdateStatus(ctx, ticket.ID, fix.open.ID)
	require.NoError(t, err)
	again, err := svc.UpdateStatus(ctx, ticket.ID, fix.resolved.ID)
	require.NoError(t, err)
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, firstResolved, *again.ResolvedAt)

	afterClose, err := svc.UpdateStatus(ctx, ticket.ID, fix.closed.ID)
	require.NoError(t, err)
	require.NotNil(t, afterClose.ClosedAt)
	firstClosed := *afterClose.ClosedAt
	assert.Equal(t, firstResolved, *afterClose.ResolvedAt)

	_, err = svc.UpdateStatus(ctx, ticket.ID, fix.open.ID)
	require.NoError(t, err)
	final, err := svc.UpdateStatus(ctx, ticket.ID, fix.closed.ID)
	require.NoError(t, err)
	assert.Equal(t, firstClosed, *final.ClosedAt)
}

func TestUpdateStatusIntoResolvingTerminalStatusStampsBoth(t *testing.T) {
	clock := advancingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	done := store.addStatus("Done", 5, true, domain.RoleResolved)
	svc := newTestTicketService(store)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, ticket.ID, done.ID)
	require.NoError(t, err)
	assert.NotNil(t, updated.ResolvedAt)
	assert.NotNil(t, updated.ClosedAt)
}

func TestUpdateStatusUnknownTargetsFailWithNotFound(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "tkt-missing", fix.open.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	ticket, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ticket.ID, "sta-missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestUpdateAssignmentSetsAndClears(t *testing.T) {
	clock := advancingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)
	before := ticket.UpdatedAt

	assigned, err := svc.UpdateAssignment(ctx, ticket.ID, "sam.agent")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, "sam.agent", *assigned.AssignedTo)
	assert.True(t, assigned.UpdatedAt.After(before))

	cleared, err := svc.UpdateAssignment(ctx, ticket.ID, "  ")
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedTo)
}

func TestAddCommentValidatesAndThreadsChronologically(t *testing.T) {
	clock := advancingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)
	ticketUpdatedAt := store.tickets[ticket.ID].UpdatedAt

	_, err = svc.AddComment(ctx, ticket.ID, "  ", "hello", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.AddComment(ctx, ticket.ID, "sam", "   ", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	first, err := svc.AddComment(ctx, ticket.ID, "sam", "looking into it", true)
	require.NoError(t, err)
	second, err := svc.AddComment(ctx, ticket.ID, "dana", "any update?", false)
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	_, comments, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)

	// comment additions never touch the ticket row
	assert.Equal(t, ticketUpdatedAt, store.tickets[ticket.ID].UpdatedAt)
}

func TestAddCommentUnknownTicketFailsWithNotFound(t *testing.T) {
	clock := fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, _ := seededStore(clock)
	svc := newTestTicketService(store)

	_, err := svc.AddComment(context.Background(), "tkt-missing", "sam", "hello", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestListTicketsFiltersBySearchAndReferences(t *testing.T) {
	clock := advancingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	software := store.addCategory("Software")
	svc := newTestTicketService(store)
	ctx := context.Background()

	first, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)

	other := baseInput(fix)
	other.Title = "VPN unstable"
	other.CategoryID = software.ID
	_, err = svc.CreateTicket(ctx, other)
	require.NoError(t, err)

	// case-insensitive substring over the ticket number
	matches, err := svc.ListTickets(ctx, TicketListFilter{SearchText: "sd-20240101-0001"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, first.ID, matches[0].ID)

	matches, err = svc.ListTickets(ctx, TicketListFilter{CategoryID: software.ID})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "VPN unstable", matches[0].Title)

	// ANDed filters with no intersection
	matches, err = svc.ListTickets(ctx, TicketListFilter{SearchText: "vpn", CategoryID: fix.category.ID})
	require.NoError(t, err)
	assert.Empty(t, matches)

	// newest first
	all, err := svc.ListTickets(ctx, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, !all[0].CreatedAt.Before(all[1].CreatedAt))
}

func TestDeleteTicketCascadesOwnCommentsOnly(t *testing.T) {
	clock := advancingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	store, fix := seededStore(clock)
	svc := newTestTicketService(store)
	ctx := context.Background()

	doomed, err := svc.CreateTicket(ctx, baseInput(fix))
	require.NoError(t, err)
	survivorInput := baseInput(fix)
	survivorInput.Title = "Keep me"
	survivor, err := svc.CreateTicket(ctx, survivorInput)
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, doomed.ID, "sam", "gone soon", false)
	require.NoError(t, err)
	kept, err := svc.AddComment(ctx, survivor.ID, "sam", "still here", false)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTicket(ctx, doomed.ID))

	_, _, err = svc.GetTicket(ctx, doomed.ID)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, comments, err := svc.GetTicket(ctx, survivor.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, kept.ID, comments[0].ID)
}
