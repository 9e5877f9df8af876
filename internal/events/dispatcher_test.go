package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesOnlyMatchingSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var created, deleted []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		created = append(created, e)
		return nil
	})
	dispatcher.Subscribe(EventTicketDeleted, func(_ context.Context, e Event) error {
		deleted = append(deleted, e)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "tkt-1"})
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, "tkt-1", created[0].TicketID)
	assert.Empty(t, deleted)
}

func TestPublishSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var reached bool
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("smtp unreachable")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.NoError(t, err)
	assert.True(t, reached, "later handlers still run after a failure")
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned}))
}
