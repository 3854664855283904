package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
)

// OpenAccount opens a new account for the owner and returns its id.
func (s *Service) OpenAccount(ctx context.Context, fullName string, emailAddress string) (uuid.UUID, error) {
	var accountID uuid.UUID

	commandType := core.OpenAccount{}.CommandType()

	err := s.observeCommand(ctx, commandType, nil, func(ctx context.Context) (shell.HandlerResult, error) {
		if err := core.ValidateOwner(fullName, emailAddress); err != nil {
			return shell.HandlerResult{}, err
		}

		newID, err := newID()
		if err != nil {
			return shell.HandlerResult{}, err
		}

		metadata, err := rootMetadata()
		if err != nil {
			return shell.HandlerResult{}, err
		}

		command := core.BuildOpenAccount(newID, fullName, emailAddress, time.Now())

		result, err := s.execute(ctx, commandType, newID, metadata, func(state core.Account) core.DecisionResult {
			if state.Exists() {
				return core.ErrorDecision(errors.Join(core.ErrValidation, errAccountIDInUse))
			}

			return core.DecideOpen(command)
		})
		if err == nil {
			accountID = newID
		}

		return result, err
	})

	return accountID, err
}

// DepositFunds credits the amount to the account.
func (s *Service) DepositFunds(ctx context.Context, creditAccountID uuid.UUID, amount decimal.Decimal) error {
	command := core.BuildDepositFunds(creditAccountID, amount, time.Now())

	return s.observeCommand(ctx, command.CommandType(), accountAttrs(creditAccountID), func(ctx context.Context) (shell.HandlerResult, error) {
		if err := validateAccountAndAmount(creditAccountID, amount); err != nil {
			return shell.HandlerResult{}, err
		}

		metadata, err := rootMetadata()
		if err != nil {
			return shell.HandlerResult{}, err
		}

		return s.execute(ctx, command.CommandType(), creditAccountID, metadata, func(state core.Account) core.DecisionResult {
			return core.DecideDeposit(state, command)
		})
	})
}

// WithdrawFunds debits the amount from the account, within balance plus overdraft limit.
func (s *Service) WithdrawFunds(ctx context.Context, debitAccountID uuid.UUID, amount decimal.Decimal) error {
	command := core.BuildWithdrawFunds(debitAccountID, amount, time.Now())

	return s.observeCommand(ctx, command.CommandType(), accountAttrs(debitAccountID), func(ctx context.Context) (shell.HandlerResult, error) {
		if err := validateAccountAndAmount(debitAccountID, amount); err != nil {
			return shell.HandlerResult{}, err
		}

		metadata, err := rootMetadata()
		if err != nil {
			return shell.HandlerResult{}, err
		}

		return s.execute(ctx, command.CommandType(), debitAccountID, metadata, func(state core.Account) core.DecisionResult {
			return core.DecideWithdraw(state, command)
		})
	})
}

// SetOverdraftLimit changes how far the account's balance may go below zero.
func (s *Service) SetOverdraftLimit(ctx context.Context, accountID uuid.UUID, overdraftLimit decimal.Decimal) error {
	command := core.BuildSetOverdraftLimit(accountID, overdraftLimit, time.Now())

	return s.observeCommand(ctx, command.CommandType(), accountAttrs(accountID), func(ctx context.Context) (shell.HandlerResult, error) {
		if err := core.ValidateAccountID(accountID); err != nil {
			return shell.HandlerResult{}, err
		}

		if err := core.ValidateOverdraftLimit(overdraftLimit); err != nil {
			return shell.HandlerResult{}, err
		}

		metadata, err := rootMetadata()
		if err != nil {
			return shell.HandlerResult{}, err
		}

		return s.execute(ctx, command.CommandType(), accountID, metadata, func(state core.Account) core.DecisionResult {
			return core.DecideSetOverdraftLimit(state, command)
		})
	})
}

// CloseAccount closes the account for good. The balance does not need to be zero.
func (s *Service) CloseAccount(ctx context.Context, accountID uuid.UUID) error {
	command := core.BuildCloseAccount(accountID, time.Now())

	return s.observeCommand(ctx, command.CommandType(), accountAttrs(accountID), func(ctx context.Context) (shell.HandlerResult, error) {
		if err := core.ValidateAccountID(accountID); err != nil {
			return shell.HandlerResult{}, err
		}

		metadata, err := rootMetadata()
		if err != nil {
			return shell.HandlerResult{}, err
		}

		return s.execute(ctx, command.CommandType(), accountID, metadata, func(state core.Account) core.DecisionResult {
			return core.DecideClose(state, command)
		})
	})
}

func validateAccountAndAmount(accountID uuid.UUID, amount decimal.Decimal) error {
	if err := core.ValidateAccountID(accountID); err != nil {
		return err
	}

	return core.ValidateAmount(amount)
}

func rootMetadata() (shell.EventMetadata, error) {
	messageID, err := newID()
	if err != nil {
		return shell.EventMetadata{}, err
	}

	return shell.BuildRootEventMetadata(messageID), nil
}
