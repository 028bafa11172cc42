package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(action Action, entityType string) Event {
	return Event{
		Action:     action,
		EntityType: entityType,
		EntityID:   "entity-1",
		Actor:      "tester",
		Timestamp:  time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Details:    "details",
	}
}

func TestPublisherAppendsBeforeSinks(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	sink := &recordingSink{}
	pub := NewPublisher(store, nil, sink)

	require.NoError(t, pub.Emit(ctx, testEvent(ActionPolicyIssued, EntityPolicy)))

	events, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionPolicyIssued, events[0].Action)
	assert.Len(t, sink.got, 1)
}

func TestPublisherLogsSinkFailures(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	var logged bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logged, nil))
	pub := NewPublisher(store, logger, failingSink{})

	require.NoError(t, pub.Emit(ctx, testEvent(ActionDecisionApproved, EntityDecision)))

	events, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Contains(t, logged.String(), "audit sink delivery failed")
	assert.Contains(t, logged.String(), "sink unavailable")
}

func TestInMemoryStoreOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, testEvent(ActionAssessmentCreated, EntityAssessment)))
	require.NoError(t, store.Append(ctx, testEvent(ActionDecisionApproved, EntityDecision)))
	require.NoError(t, store.Append(ctx, testEvent(ActionPolicyIssued, EntityPolicy)))

	t.Run("newest first with limit", func(t *testing.T) {
		events, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, ActionPolicyIssued, events[0].Action)
		assert.Equal(t, ActionDecisionApproved, events[1].Action)
	})

	t.Run("zero limit returns all", func(t *testing.T) {
		events, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("filter by entity type", func(t *testing.T) {
		events, err := store.ListByEntityType(ctx, EntityDecision, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, ActionDecisionApproved, events[0].Action)
	})
}

type recordingSink struct {
	got []Event
}

func (s *recordingSink) Emit(_ context.Context, event Event) error {
	s.got = append(s.got, event)
	return nil
}

type failingSink struct{}

func (failingSink) Emit(context.Context, Event) error {
	return errors.New("sink unavailable")
}
