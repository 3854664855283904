package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/ledger"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/memoryengine"
)

func money(t *testing.T, amount string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	return d
}

func newMemoryStore(t *testing.T) *memoryengine.EventStore {
	t.Helper()

	store, err := memoryengine.NewEventStore()
	require.NoError(t, err)

	return store
}

func newService(t *testing.T, store eventstore.EventStore, options ...ledger.Option) *ledger.Service {
	t.Helper()

	service, err := ledger.NewService(store, options...)
	require.NoError(t, err)

	return service
}

func givenOpenAccount(t *testing.T, service *ledger.Service, name string) uuid.UUID {
	t.Helper()

	accountID, err := service.OpenAccount(context.Background(), name, name+"@example.com")
	require.NoError(t, err, "error in arranging test data")

	return accountID
}

func givenOpenAccountWithBalance(t *testing.T, service *ledger.Service, name string, balance string) uuid.UUID {
	t.Helper()

	accountID := givenOpenAccount(t, service, name)
	require.NoError(t, service.DepositFunds(context.Background(), accountID, money(t, balance)), "error in arranging test data")

	return accountID
}

func assertBalance(t *testing.T, service *ledger.Service, accountID uuid.UUID, expected string) {
	t.Helper()

	balance, err := service.GetBalance(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, expected, balance.StringFixed(2))
}

func assertVersion(t *testing.T, service *ledger.Service, accountID uuid.UUID, expected int64) {
	t.Helper()

	view, err := service.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, expected, view.Version)
}

// faultyStore wraps an EventStore and injects failures into Load and Append.
// beforeAppend fails an append without committing it, afterAppend fails it after it was committed.
type faultyStore struct {
	inner        eventstore.EventStore
	mu           sync.Mutex
	appendCalls  map[eventstore.StreamIDString]int
	beforeAppend func(streamID eventstore.StreamIDString, call int) error
	afterAppend  func(streamID eventstore.StreamIDString, call int) error
	beforeLoad   func(streamID eventstore.StreamIDString) error
}

func newFaultyStore(inner eventstore.EventStore) *faultyStore {
	return &faultyStore{
		inner:       inner,
		appendCalls: make(map[eventstore.StreamIDString]int),
	}
}

func (s *faultyStore) Load(ctx context.Context, streamID eventstore.StreamIDString) (
	eventstore.StreamVersion,
	eventstore.StorableEvents,
	error,
) {
	if s.beforeLoad != nil {
		if err := s.beforeLoad(streamID); err != nil {
			return 0, nil, err
		}
	}

	return s.inner.Load(ctx, streamID)
}

func (s *faultyStore) Append(
	ctx context.Context,
	streamID eventstore.StreamIDString,
	expectedVersion eventstore.StreamVersion,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) (eventstore.StreamVersion, error) {
	s.mu.Lock()
	s.appendCalls[streamID]++
	call := s.appendCalls[streamID]
	s.mu.Unlock()

	if s.beforeAppend != nil {
		if err := s.beforeAppend(streamID, call); err != nil {
			return 0, err
		}
	}

	version, err := s.inner.Append(ctx, streamID, expectedVersion, event, additionalEvents...)
	if err != nil {
		return 0, err
	}

	if s.afterAppend != nil {
		if err := s.afterAppend(streamID, call); err != nil {
			return 0, err
		}
	}

	return version, nil
}

func (s *faultyStore) AppendCalls(streamID eventstore.StreamIDString) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendCalls[streamID]
}
