package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *collector) collected() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewAsyncDispatcher(16, zap.NewNop())
	created := &collector{}
	locked := &collector{}
	d.Subscribe(EventRiskCreated, created.handle)
	d.Subscribe(EventRiskLocked, locked.handle)

	ctx := context.Background()
	require.NoError(t, d.Publish(ctx, Event{ID: "e1", Type: EventRiskCreated, RiskID: "r1"}))
	require.NoError(t, d.Publish(ctx, Event{ID: "e2", Type: EventRiskLocked, RiskID: "r1"}))
	require.NoError(t, d.Publish(ctx, Event{ID: "e3", Type: EventRiskCreated, RiskID: "r2"}))

	// Close drains the queue before returning
	d.Close()

	createdEvents := created.collected()
	require.Len(t, createdEvents, 2)
	assert.Equal(t, "e1", createdEvents[0].ID)
	assert.Equal(t, "e3", createdEvents[1].ID)
	require.Len(t, locked.collected(), 1)
}

func TestDispatcherPublishNeverFails(t *testing.T) {
	d := NewAsyncDispatcher(1, zap.NewNop())
	defer d.Close()

	// no subscribers, tiny buffer: publishes still return nil
	for i := 0; i < 100; i++ {
		assert.NoError(t, d.Publish(context.Background(), Event{Type: EventRiskUpdated}))
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewAsyncDispatcher(16, zap.NewNop())
	after := &collector{}
	d.Subscribe(EventRiskDeleted, func(context.Context, Event) error {
		return errors.New("handler exploded")
	})
	d.Subscribe(EventRiskDeleted, after.handle)

	require.NoError(t, d.Publish(context.Background(), Event{ID: "e1", Type: EventRiskDeleted}))
	d.Close()

	assert.Len(t, after.collected(), 1)
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewAsyncDispatcher(4, zap.NewNop())
	d.Close()
	assert.NotPanics(t, func() { d.Close() })
}
