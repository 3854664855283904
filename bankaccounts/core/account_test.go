package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
)

func Test_Fold_BuildsStateFromHistory(t *testing.T) {
	// arrange
	accountID := uuid.New()
	now := time.Now()
	events := core.DomainEvents{
		core.BuildAccountOpened(accountID, "Alice", "alice@example.com", now),
		core.BuildFundsDeposited(accountID, 2, money(t, "200.00"), now),
		core.BuildFundsWithdrawn(accountID, 3, money(t, "50.00"), now),
		core.BuildOverdraftLimitSet(accountID, 4, money(t, "500.00"), now),
	}

	// act
	state, err := core.Fold(events)

	// assert
	require.NoError(t, err)
	assert.Equal(t, accountID, state.ID)
	assert.Equal(t, "Alice", state.FullName)
	assert.Equal(t, "alice@example.com", state.EmailAddress)
	assertMoney(t, "150.00", state.Balance)
	assertMoney(t, "500.00", state.OverdraftLimit)
	assert.Equal(t, core.StatusOpen, state.Status)
	assert.Equal(t, core.Version(4), state.Version)
}

func Test_Fold_OpenedAccountStartsEmpty(t *testing.T) {
	// act
	state, err := core.Fold(core.DomainEvents{core.BuildAccountOpened(uuid.New(), "Bob", "bob@example.com", time.Now())})

	// assert
	require.NoError(t, err)
	assertMoney(t, "0.00", state.Balance)
	assertMoney(t, "0.00", state.OverdraftLimit)
	assert.Equal(t, core.StatusOpen, state.Status)
	assert.Equal(t, core.Version(1), state.Version)
}

func Test_Fold_EmptyHistory(t *testing.T) {
	_, err := core.Fold(nil)

	assert.ErrorIs(t, err, core.ErrEmptyHistory)
}

//nolint:funlen
func Test_Fold_CorruptHistory(t *testing.T) {
	accountID := uuid.New()
	otherAccountID := uuid.New()
	now := time.Now()
	opened := core.BuildAccountOpened(accountID, "Alice", "alice@example.com", now)

	testCases := []struct {
		name   string
		events core.DomainEvents
	}{
		{
			name:   "first event is not AccountOpened",
			events: core.DomainEvents{core.BuildFundsDeposited(accountID, 1, money(t, "1.00"), now)},
		},
		{
			name:   "AccountOpened twice",
			events: core.DomainEvents{opened, core.BuildAccountOpened(accountID, "Alice", "alice@example.com", now)},
		},
		{
			name:   "version gap",
			events: core.DomainEvents{opened, core.BuildFundsDeposited(accountID, 3, money(t, "1.00"), now)},
		},
		{
			name:   "duplicate version",
			events: core.DomainEvents{opened, core.BuildFundsDeposited(accountID, 1, money(t, "1.00"), now)},
		},
		{
			name:   "foreign account",
			events: core.DomainEvents{opened, core.BuildFundsDeposited(otherAccountID, 2, money(t, "1.00"), now)},
		},
		{
			name: "event after close",
			events: core.DomainEvents{
				opened,
				core.BuildAccountClosed(accountID, 2, now),
				core.BuildFundsDeposited(accountID, 3, money(t, "1.00"), now),
			},
		},
		{
			name:   "nil event",
			events: core.DomainEvents{opened, nil},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := core.Fold(tc.events)
				assert.ErrorIs(t, err, core.ErrCorruptHistory)
			})
		})
	}
}

func Test_Fold_RejectsCompensationAfterClose(t *testing.T) {
	// arrange
	accountID := uuid.New()
	now := time.Now()
	events := core.DomainEvents{
		core.BuildAccountOpened(accountID, "Alice", "alice@example.com", now),
		core.BuildFundsDeposited(accountID, 2, money(t, "100.00"), now),
		core.BuildFundsWithdrawn(accountID, 3, money(t, "40.00"), now),
		core.BuildAccountClosed(accountID, 4, now),
		core.BuildCompensatingFundsDeposited(accountID, 5, money(t, "40.00"), now),
	}

	// act
	_, err := core.Fold(events)

	// assert
	assert.ErrorIs(t, err, core.ErrCorruptHistory)
}

func Test_Apply_PanicsOnInvariantViolation(t *testing.T) {
	accountID := uuid.New()
	now := time.Now()

	assert.Panics(t, func() {
		core.Apply(core.Account{}, core.BuildFundsDeposited(accountID, 1, money(t, "1.00"), now))
	}, "non-opening event on empty state")

	opened := core.Apply(core.Account{}, core.BuildAccountOpened(accountID, "Alice", "alice@example.com", now))

	assert.Panics(t, func() {
		core.Apply(opened, core.BuildAccountOpened(accountID, "Alice", "alice@example.com", now))
	}, "AccountOpened on a non-empty state")

	assert.Panics(t, func() {
		core.Apply(opened, core.BuildFundsDeposited(accountID, 5, money(t, "1.00"), now))
	}, "version is not state.Version+1")
}

func Test_Apply_IsPure(t *testing.T) {
	// arrange
	state := givenOpenAccount(t, "10.00", "0")

	// act
	next := core.Apply(state, core.BuildFundsDeposited(state.ID, state.Version+1, money(t, "5.00"), time.Now()))

	// assert
	assertMoney(t, "10.00", state.Balance)
	assertMoney(t, "15.00", next.Balance)
	assert.Equal(t, state.Version+1, next.Version)
}

func Test_HasAtMostTwoDecimalPlaces(t *testing.T) {
	assert.True(t, core.HasAtMostTwoDecimalPlaces(money(t, "12")))
	assert.True(t, core.HasAtMostTwoDecimalPlaces(money(t, "12.5")))
	assert.True(t, core.HasAtMostTwoDecimalPlaces(money(t, "12.50")))
	assert.True(t, core.HasAtMostTwoDecimalPlaces(money(t, "12.500")))
	assert.False(t, core.HasAtMostTwoDecimalPlaces(money(t, "12.505")))
}

func Test_ToOccurredAt_NormalizesToUTCMicroseconds(t *testing.T) {
	// arrange
	local := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.FixedZone("CET", 3600))

	// act
	occurredAt := core.ToOccurredAt(local)

	// assert
	assert.Equal(t, time.UTC, occurredAt.Location())
	assert.Equal(t, 123456000, occurredAt.Nanosecond())
	assert.True(t, local.Truncate(time.Microsecond).Equal(occurredAt))
}
