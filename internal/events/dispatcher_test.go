package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventMessageCreated, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, event Event) error {
		t.Fatalf("unexpected event %v", event)
		return nil
	})

	err := d.Publish(context.Background(), Event{
		ID:        "e1",
		Type:      EventMessageCreated,
		UserID:    1,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}

func TestPublishContinuesPastHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventPasswordChanged, func(context.Context, Event) error {
		calls++
		return fmt.Errorf("handler failed")
	})
	d.Subscribe(EventPasswordChanged, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventPasswordChanged})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
