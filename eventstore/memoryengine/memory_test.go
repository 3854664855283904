package memoryengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/memoryengine"
)

func someEvent(t *testing.T, eventType string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(`{}`))
	require.NoError(t, err)

	return event
}

func Test_Load_UnknownStream_ReturnsStreamNotFound(t *testing.T) {
	// arrange
	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)

	// act
	version, events, err := es.Load(context.Background(), "unknown")

	// assert
	assert.ErrorIs(t, err, eventstore.ErrStreamNotFound)
	assert.Zero(t, version)
	assert.Empty(t, events)
}

func Test_Append_ThenLoad_ReturnsEventsInOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)

	// act
	v1, err := es.Append(ctx, "s1", 0, someEvent(t, "A"))
	require.NoError(t, err)
	v3, err := es.Append(ctx, "s1", v1, someEvent(t, "B"), someEvent(t, "C"))
	require.NoError(t, err)
	version, events, err := es.Load(ctx, "s1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersion(1), v1)
	assert.Equal(t, eventstore.StreamVersion(3), v3)
	assert.Equal(t, eventstore.StreamVersion(3), version)
	require.Len(t, events, 3)
	assert.Equal(t, "A", events[0].EventType)
	assert.Equal(t, "B", events[1].EventType)
	assert.Equal(t, "C", events[2].EventType)
}

func Test_Append_WithStaleVersion_ReturnsConcurrencyConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)
	_, err = es.Append(ctx, "s1", 0, someEvent(t, "A"))
	require.NoError(t, err)

	// act
	_, err = es.Append(ctx, "s1", 0, someEvent(t, "B"))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	version, events, err := es.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersion(1), version)
	assert.Len(t, events, 1)
}

func Test_Append_RejectsInvalidInput(t *testing.T) {
	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)

	_, err = es.Append(context.Background(), "", 0, someEvent(t, "A"))
	assert.ErrorIs(t, err, eventstore.ErrEmptyStreamID)

	_, err = es.Append(context.Background(), "s1", -1, someEvent(t, "A"))
	assert.ErrorIs(t, err, eventstore.ErrNegativeExpectedVersion)
}

func Test_Append_WithCanceledContext_AppendsNothing(t *testing.T) {
	// arrange
	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err = es.Append(ctx, "s1", 0, someEvent(t, "A"))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, es.StreamCount())
}

func Test_Load_ReturnsACopy(t *testing.T) {
	// arrange
	ctx := context.Background()
	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)
	_, err = es.Append(ctx, "s1", 0, someEvent(t, "A"))
	require.NoError(t, err)

	// act
	_, events, err := es.Load(ctx, "s1")
	require.NoError(t, err)
	events[0].EventType = "mutated"

	// assert
	_, reloaded, err := es.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "A", reloaded[0].EventType)
}

func Test_Append_ConcurrentWritersAtSameVersion_ExactlyOneWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)
	event := someEvent(t, "A")

	const writers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	// act
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, appendErr := es.Append(ctx, "s1", 0, event); appendErr == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, 1, successes)
	version, _, err := es.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersion(1), version)
}
