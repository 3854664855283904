package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an account: ∅ -> Open -> Closed.
type Status string

const (
	// StatusOpen accepts all commands.
	StatusOpen Status = "Open"

	// StatusClosed is terminal.
	StatusClosed Status = "Closed"
)

// Account is the state of the account aggregate, folded from its events.
// The zero value is the empty state of an account that does not exist yet.
type Account struct {
	ID             uuid.UUID
	FullName       string
	EmailAddress   string
	Balance        decimal.Decimal
	OverdraftLimit decimal.Decimal
	Status         Status
	Version        Version
}

// Exists reports whether at least AccountOpened was applied.
func (a Account) Exists() bool {
	return a.Version > 0
}

// IsClosed reports whether the account reached its terminal state.
func (a Account) IsClosed() bool {
	return a.Status == StatusClosed
}

// CanWithdraw reports whether the balance stays within the overdraft limit after withdrawing amount.
func (a Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.Sub(amount).GreaterThanOrEqual(a.OverdraftLimit.Neg())
}

// Apply returns the state after event. It panics if the event can't follow the state,
// because that would break the account invariants. Use Fold for untrusted histories.
func Apply(state Account, event DomainEvent) Account {
	if err := checkApplicable(state, event); err != nil {
		panic(fmt.Sprintf("core.Apply: %v", err))
	}

	switch e := event.(type) {
	case AccountOpened:
		return Account{
			ID:             e.AccountID,
			FullName:       e.FullName,
			EmailAddress:   e.EmailAddress,
			Balance:        decimal.Zero,
			OverdraftLimit: decimal.Zero,
			Status:         StatusOpen,
			Version:        e.Version,
		}

	case FundsDeposited:
		state.Balance = state.Balance.Add(e.Amount)

	case FundsWithdrawn:
		state.Balance = state.Balance.Sub(e.Amount)

	case OverdraftLimitSet:
		state.OverdraftLimit = e.Limit

	case AccountClosed:
		state.Status = StatusClosed
	}

	state.Version = event.ProducesVersion()

	return state
}

// Fold applies the events in order, starting from the empty state.
// It validates every event before applying it, so it never panics.
func Fold(events DomainEvents) (Account, error) {
	if len(events) == 0 {
		return Account{}, ErrEmptyHistory
	}

	state := Account{}

	for i, event := range events {
		if err := checkApplicable(state, event); err != nil {
			return Account{}, errors.Join(ErrCorruptHistory, fmt.Errorf("event #%d: %w", i+1, err))
		}

		state = Apply(state, event)
	}

	return state, nil
}

func checkApplicable(state Account, event DomainEvent) error {
	switch event.(type) {
	case AccountOpened:
		if state.Exists() {
			return errAccountOpenedTwice
		}

	case FundsDeposited, FundsWithdrawn, OverdraftLimitSet, AccountClosed:
		if !state.Exists() {
			return errFirstEventNotOpened
		}

	default:
		return errUnknownEvent
	}

	if event.ProducesVersion() != state.Version+1 {
		return errVersionGap
	}

	if state.Exists() && event.ForAccount() != state.ID {
		return errForeignAccount
	}

	if state.IsClosed() {
		return errEventAfterClose
	}

	return nil
}
