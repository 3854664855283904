package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
)

func money(t *testing.T, amount string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	return d
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()

	assert.Equal(t, expected, actual.StringFixed(2))
}

// givenOpenAccount returns the folded state of an account with the given balance and overdraft limit.
func givenOpenAccount(t *testing.T, balance string, overdraftLimit string) core.Account {
	t.Helper()

	accountID := uuid.New()
	now := time.Now()
	events := core.DomainEvents{core.BuildAccountOpened(accountID, "Alice", "alice@example.com", now)}

	if limit := money(t, overdraftLimit); !limit.IsZero() {
		events = append(events, core.BuildOverdraftLimitSet(accountID, core.Version(len(events)+1), limit, now))
	}

	if b := money(t, balance); b.IsPositive() {
		events = append(events, core.BuildFundsDeposited(accountID, core.Version(len(events)+1), b, now))
	} else if b.IsNegative() {
		events = append(events, core.BuildFundsWithdrawn(accountID, core.Version(len(events)+1), b.Neg(), now))
	}

	state, err := core.Fold(events)
	require.NoError(t, err, "error in arranging test data")

	return state
}

func givenClosedAccount(t *testing.T, balance string) core.Account {
	t.Helper()

	state := givenOpenAccount(t, balance, "0")

	return core.Apply(state, core.BuildAccountClosed(state.ID, state.Version+1, time.Now()))
}

func assertSingleEvent[T core.DomainEvent](t *testing.T, result core.DecisionResult) T {
	t.Helper()

	require.NoError(t, result.HasError())
	require.True(t, result.HasEventsToAppend())
	require.Len(t, result.Events, 1)

	event, ok := result.Events[0].(T)
	require.True(t, ok, "unexpected event type %T", result.Events[0])

	return event
}
