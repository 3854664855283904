package ledger_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/ledger"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

var errConnectionLost = errors.New("connection lost")

func Test_DepositFunds_AppendCommittedDespiteCancellationIsSuccess(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := newMemoryStore(t)
	store := newFaultyStore(inner)
	service := newService(t, store)
	accountID := givenOpenAccount(t, service, "Alice")

	store.afterAppend = func(_ eventstore.StreamIDString, _ int) error {
		cancel()

		return context.Canceled
	}

	// act
	err := service.DepositFunds(ctx, accountID, money(t, "5.00"))

	// assert
	require.NoError(t, err)
	assertBalance(t, service, accountID, "5.00")
	assertVersion(t, service, accountID, 2)
}

func Test_DepositFunds_AppendNotCommittedReturnsContextError(t *testing.T) {
	// arrange
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	inner := newMemoryStore(t)
	store := newFaultyStore(inner)
	service := newService(t, store)
	accountID := givenOpenAccount(t, service, "Alice")

	store.beforeAppend = func(_ eventstore.StreamIDString, _ int) error {
		return context.DeadlineExceeded
	}

	// act
	err := service.DepositFunds(ctx, accountID, money(t, "5.00"))

	// assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ledger.KindTimeout, ledger.ErrorKind(err))
	assertBalance(t, service, accountID, "0.00")
}

func Test_DepositFunds_AppendCommittedDespiteStoreErrorIsSuccess(t *testing.T) {
	// arrange
	inner := newMemoryStore(t)
	store := newFaultyStore(inner)
	service := newService(t, store)
	accountID := givenOpenAccount(t, service, "Alice")

	store.afterAppend = func(_ eventstore.StreamIDString, _ int) error {
		return errConnectionLost
	}

	// act
	err := service.DepositFunds(context.Background(), accountID, money(t, "5.00"))

	// assert
	require.NoError(t, err)
	assertBalance(t, service, accountID, "5.00")
	assertVersion(t, service, accountID, 2)
}

func Test_DepositFunds_AppendNotCommittedReturnsStoreError(t *testing.T) {
	// arrange
	inner := newMemoryStore(t)
	store := newFaultyStore(inner)
	service := newService(t, store)
	accountID := givenOpenAccount(t, service, "Alice")

	store.beforeAppend = func(_ eventstore.StreamIDString, _ int) error {
		return errConnectionLost
	}

	// act
	err := service.DepositFunds(context.Background(), accountID, money(t, "5.00"))

	// assert
	assert.ErrorIs(t, err, errConnectionLost)
	assert.NotErrorIs(t, err, ledger.ErrAppendOutcomeUnknown)
	assert.Equal(t, ledger.KindInternal, ledger.ErrorKind(err))
	assertBalance(t, service, accountID, "0.00")
}

func Test_DepositFunds_UnresolvableAppendOutcome(t *testing.T) {
	// arrange
	inner := newMemoryStore(t)
	store := newFaultyStore(inner)
	service := newService(t, store, ledger.WithOutcomeResolutionTimeout(time.Second))
	accountID := givenOpenAccount(t, service, "Alice")

	var storeUnreachable atomic.Bool

	store.beforeAppend = func(_ eventstore.StreamIDString, _ int) error {
		storeUnreachable.Store(true)

		return context.Canceled
	}
	store.beforeLoad = func(_ eventstore.StreamIDString) error {
		if storeUnreachable.Load() {
			return errConnectionLost
		}

		return nil
	}

	// act
	err := service.DepositFunds(context.Background(), accountID, money(t, "5.00"))

	// assert
	assert.ErrorIs(t, err, ledger.ErrAppendOutcomeUnknown)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errConnectionLost)
	assert.Equal(t, ledger.KindAppendOutcomeUnknown, ledger.ErrorKind(err))
}

func Test_DepositFunds_CanceledBeforeLoadChangesNothing(t *testing.T) {
	// arrange
	service := newService(t, newMemoryStore(t))
	accountID := givenOpenAccount(t, service, "Alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	err := service.DepositFunds(ctx, accountID, money(t, "5.00"))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ledger.KindCanceled, ledger.ErrorKind(err))
	assertBalance(t, service, accountID, "0.00")
}
