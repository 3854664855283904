package postgresengine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/ledger"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/postgresengine"
	"github.com/ledgerkit/bankaccounts-eventstore-go/testutil/observability/testdoubles"
	"github.com/ledgerkit/bankaccounts-eventstore-go/testutil/postgresengine/postgreswrapper"
)

func givenStorableEvent(t *testing.T, eventType string, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEvent(
		eventType,
		time.Now().UTC().Truncate(time.Microsecond),
		[]byte(payload),
		[]byte(`{"MessageID":"`+uuid.NewString()+`"}`),
	)
	require.NoError(t, err, "error in arranging test data")

	return event
}

func Test_Load_UnknownStream_ReturnsStreamNotFound(t *testing.T) {
	// arrange
	es := postgreswrapper.CreateWrapper(t).GetEventStore()

	// act
	version, events, err := es.Load(context.Background(), uuid.NewString())

	// assert
	assert.ErrorIs(t, err, eventstore.ErrStreamNotFound)
	assert.Equal(t, eventstore.StreamVersion(0), version)
	assert.Empty(t, events)
}

func Test_AppendAndLoad_RoundTrip(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := postgreswrapper.CreateWrapper(t).GetEventStore()
	streamID := uuid.NewString()
	first := givenStorableEvent(t, "AccountOpened", `{"FullName":"Alice"}`)
	second := givenStorableEvent(t, "FundsDeposited", `{"Amount":"12.50"}`)
	third := givenStorableEvent(t, "FundsWithdrawn", `{"Amount":"2.50"}`)

	// act
	versionAfterFirst, err := es.Append(ctx, streamID, 0, first)
	require.NoError(t, err)
	versionAfterBatch, err := es.Append(ctx, streamID, versionAfterFirst, second, third)
	require.NoError(t, err)

	version, events, err := es.Load(ctx, streamID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersion(1), versionAfterFirst)
	assert.Equal(t, eventstore.StreamVersion(3), versionAfterBatch)
	assert.Equal(t, eventstore.StreamVersion(3), version)
	require.Len(t, events, 3)
	assert.Equal(t, "AccountOpened", events[0].EventType)
	assert.Equal(t, "FundsDeposited", events[1].EventType)
	assert.Equal(t, "FundsWithdrawn", events[2].EventType)
	assert.JSONEq(t, `{"Amount":"12.50"}`, string(events[1].PayloadJSON))
	assert.JSONEq(t, string(second.MetadataJSON), string(events[1].MetadataJSON))
	assert.True(t, second.OccurredAt.Equal(events[1].OccurredAt))
}

func Test_Append_StaleVersion_ReturnsConcurrencyConflictAndAppendsNothing(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := postgreswrapper.CreateWrapper(t).GetEventStore()
	streamID := uuid.NewString()
	_, err := es.Append(ctx, streamID, 0, givenStorableEvent(t, "AccountOpened", `{}`))
	require.NoError(t, err, "error in arranging test data")

	// act
	_, err = es.Append(
		ctx,
		streamID,
		0,
		givenStorableEvent(t, "FundsDeposited", `{}`),
		givenStorableEvent(t, "FundsDeposited", `{}`),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)

	version, events, err := es.Load(ctx, streamID)
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersion(1), version)
	assert.Len(t, events, 1)
}

func Test_Append_ConcurrentWritersOnTheSameVersion_ExactlyOneWins(t *testing.T) {
	// arrange
	const writers = 10

	ctx := context.Background()
	es := postgreswrapper.CreateWrapper(t).GetEventStore()
	streamID := uuid.NewString()
	_, err := es.Append(ctx, streamID, 0, givenStorableEvent(t, "AccountOpened", `{}`))
	require.NoError(t, err, "error in arranging test data")

	events := make(eventstore.StorableEvents, 0, writers)
	for i := 0; i < writers; i++ {
		events = append(events, givenStorableEvent(t, "FundsDeposited", `{}`))
	}

	var wg sync.WaitGroup
	var succeeded, conflicted, failed atomic.Int32

	// act
	for _, event := range events {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, appendErr := es.Append(ctx, streamID, 1, event)

			switch {
			case appendErr == nil:
				succeeded.Add(1)
			case errors.Is(appendErr, eventstore.ErrConcurrencyConflict):
				conflicted.Add(1)
			default:
				failed.Add(1)
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(writers-1), conflicted.Load())
	assert.Zero(t, failed.Load())

	version, _, err := es.Load(ctx, streamID)
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersion(2), version)
}

func Test_Append_Observability(t *testing.T) {
	// arrange
	ctx := context.Background()
	logger := testdoubles.NewContextualLoggerSpy(true)
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)

	es := postgreswrapper.CreateWrapper(
		t,
		postgresengine.WithContextualLogger(logger),
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
	).GetEventStore()

	streamID := uuid.NewString()

	// act
	_, err := es.Append(ctx, streamID, 0, givenStorableEvent(t, "AccountOpened", `{}`))
	require.NoError(t, err)
	_, err = es.Append(ctx, streamID, 0, givenStorableEvent(t, "AccountOpened", `{}`))
	require.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)

	// assert
	assert.NotEmpty(t, metrics.GetDurationRecords())
	assert.NotEmpty(t, tracing.GetSpanRecords())
	assert.NotEmpty(t, logger.GetRecords("info"))
}

func Test_Ledger_OnPostgres(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := postgreswrapper.CreateWrapper(t).GetEventStore()
	service, err := ledger.NewService(es)
	require.NoError(t, err)

	first, err := service.OpenAccount(ctx, "Alice Smith", "alice@example.com")
	require.NoError(t, err)
	second, err := service.OpenAccount(ctx, "Bob Jones", "bob@example.com")
	require.NoError(t, err)

	// act
	require.NoError(t, service.DepositFunds(ctx, first, decimal.RequireFromString("200.00")))
	require.NoError(t, service.TransferFunds(ctx, first, second, decimal.RequireFromString("75.25")))
	withdrawErr := service.WithdrawFunds(ctx, second, decimal.RequireFromString("75.26"))

	// assert
	assert.ErrorIs(t, withdrawErr, core.ErrInsufficientFunds)

	firstView, err := service.GetAccount(ctx, first)
	require.NoError(t, err)
	secondView, err := service.GetAccount(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, "124.75", firstView.Balance.StringFixed(2))
	assert.Equal(t, "75.25", secondView.Balance.StringFixed(2))
	assert.Equal(t, int64(3), firstView.Version)
	assert.Equal(t, int64(2), secondView.Version)
}
