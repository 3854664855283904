package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/ledger"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

func Test_DepositFunds_ConcurrentDepositsAllLand(t *testing.T) {
	// arrange
	const depositors = 20

	ctx := context.Background()
	service := newService(t, newMemoryStore(t), ledger.WithRetryOptions(shell.WithMaxAttempts(depositors+1)))
	accountID := givenOpenAccount(t, service, "Alice")

	var wg sync.WaitGroup
	errs := make(chan error, depositors)

	// act
	for i := 0; i < depositors; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			errs <- service.DepositFunds(ctx, accountID, money(t, "10.00"))
		}()
	}

	wg.Wait()
	close(errs)

	// assert
	for err := range errs {
		assert.NoError(t, err)
	}

	assertBalance(t, service, accountID, "200.00")
	assertVersion(t, service, accountID, depositors+1)
}

func Test_ConcurrentTransfers_ConserveTotalBalance(t *testing.T) {
	// arrange
	const transfers = 10

	ctx := context.Background()
	service := newService(t, newMemoryStore(t), ledger.WithRetryOptions(shell.WithMaxAttempts(2*transfers+1)))
	first := givenOpenAccountWithBalance(t, service, "Alice", "100.00")
	second := givenOpenAccountWithBalance(t, service, "Bob", "100.00")

	var wg sync.WaitGroup

	// act
	for i := 0; i < transfers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if i%2 == 0 {
				assert.NoError(t, service.TransferFunds(ctx, first, second, money(t, "7.00")))
			} else {
				assert.NoError(t, service.TransferFunds(ctx, second, first, money(t, "3.00")))
			}
		}()
	}

	wg.Wait()

	// assert
	firstBalance, err := service.GetBalance(ctx, first)
	require.NoError(t, err)
	secondBalance, err := service.GetBalance(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, "200.00", firstBalance.Add(secondBalance).StringFixed(2))
	assert.Equal(t, "80.00", firstBalance.StringFixed(2))
}

func Test_DepositFunds_ExhaustedRetriesSurfaceConcurrencyConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	inner := newMemoryStore(t)
	store := newFaultyStore(inner)
	service := newService(t, store)
	accountID := givenOpenAccount(t, service, "Alice")

	store.beforeAppend = func(_ eventstore.StreamIDString, _ int) error {
		return eventstore.ErrConcurrencyConflict
	}

	// act
	err := service.DepositFunds(ctx, accountID, money(t, "1.00"))

	// assert
	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, ledger.KindConcurrencyConflict, ledger.ErrorKind(err))
	assert.Equal(t, 1+3, store.AppendCalls(accountID.String()))
	assertBalance(t, service, accountID, "0.00")
}

func Test_DepositFunds_ConflictIsRetriedWithFreshState(t *testing.T) {
	// arrange
	ctx := context.Background()
	inner := newMemoryStore(t)
	store := newFaultyStore(inner)
	service := newService(t, store)
	accountID := givenOpenAccount(t, service, "Alice")
	other := newService(t, inner)

	store.beforeAppend = func(_ eventstore.StreamIDString, call int) error {
		if call == 2 {
			// a competing writer appends between our load and our append
			require.NoError(t, other.DepositFunds(ctx, accountID, money(t, "5.00")))
		}

		return nil
	}

	// act
	err := service.DepositFunds(ctx, accountID, money(t, "1.00"))

	// assert
	require.NoError(t, err)
	assertBalance(t, service, accountID, "6.00")
	assertVersion(t, service, accountID, 3)
	assert.Equal(t, 3, store.AppendCalls(accountID.String()))
}
