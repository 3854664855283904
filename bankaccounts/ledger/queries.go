package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
)

const (
	getAccountQueryType        = "GetAccount"
	getBalanceQueryType        = "GetBalance"
	getOverdraftLimitQueryType = "GetOverdraftLimit"
)

// GetAccount returns the current state of the account.
// It reads from the replica if the context asks for eventual consistency.
func (s *Service) GetAccount(ctx context.Context, accountID uuid.UUID) (AccountView, error) {
	var view AccountView

	err := s.observeQuery(ctx, getAccountQueryType, accountAttrs(accountID), func(ctx context.Context) error {
		state, err := s.loadExistingAccount(ctx, accountID)
		if err != nil {
			return err
		}

		view = accountViewFrom(state)

		return nil
	})

	return view, err
}

// GetBalance returns the current balance of the account.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := s.observeQuery(ctx, getBalanceQueryType, accountAttrs(accountID), func(ctx context.Context) error {
		state, err := s.loadExistingAccount(ctx, accountID)
		if err != nil {
			return err
		}

		balance = core.ToMoney(state.Balance)

		return nil
	})

	return balance, err
}

// GetOverdraftLimit returns the current overdraft limit of the account.
func (s *Service) GetOverdraftLimit(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var limit decimal.Decimal

	err := s.observeQuery(ctx, getOverdraftLimitQueryType, accountAttrs(accountID), func(ctx context.Context) error {
		state, err := s.loadExistingAccount(ctx, accountID)
		if err != nil {
			return err
		}

		limit = core.ToMoney(state.OverdraftLimit)

		return nil
	})

	return limit, err
}

func (s *Service) loadExistingAccount(ctx context.Context, accountID uuid.UUID) (core.Account, error) {
	state, err := s.loadAccountState(ctx, accountID)
	if err != nil {
		return core.Account{}, err
	}

	if !state.Exists() {
		return core.Account{}, core.ErrAccountNotFound
	}

	return state, nil
}

func accountAttrs(accountID uuid.UUID) map[string]string {
	return map[string]string{shell.LogAttrAccountID: accountID.String()}
}
