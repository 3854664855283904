package core

import (
	"strings"
)

// DecideOpen decides whether a new account can be opened.
//
// Business Rules:
//
//	GIVEN: an account id, a full name and an email address
//	WHEN: OpenAccount command is received
//	THEN: AccountOpened event at version 1 is generated
//	ERROR: ErrValidation if the id is nil or full name or email address is blank
func DecideOpen(command OpenAccount) DecisionResult {
	if err := ValidateAccountID(command.AccountID); err != nil {
		return ErrorDecision(err)
	}

	if err := ValidateOwner(command.FullName, command.EmailAddress); err != nil {
		return ErrorDecision(err)
	}

	return SuccessDecision(
		BuildAccountOpened(
			command.AccountID,
			strings.TrimSpace(command.FullName),
			strings.TrimSpace(command.EmailAddress),
			command.OccurredAt,
		),
	)
}

// DecideDeposit decides whether money can be credited to the account.
//
// Business Rules:
//
//	GIVEN: an open account
//	WHEN: DepositFunds command is received
//	THEN: FundsDeposited event is generated
//	ERROR: ErrValidation if the amount is not positive or has more than two decimal places
//	ERROR: ErrAccountNotFound if the account does not exist
//	ERROR: ErrAccountClosed if the account is closed
func DecideDeposit(state Account, command DepositFunds) DecisionResult {
	if err := ValidateAmount(command.Amount); err != nil {
		return ErrorDecision(err)
	}

	if err := requireOpen(state); err != nil {
		return ErrorDecision(err)
	}

	return SuccessDecision(
		BuildFundsDeposited(state.ID, state.Version+1, command.Amount, command.OccurredAt),
	)
}

// DecideWithdraw decides whether money can be debited from the account.
//
// Business Rules:
//
//	GIVEN: an open account
//	WHEN: WithdrawFunds command is received
//	THEN: FundsWithdrawn event is generated
//	ERROR: ErrValidation, ErrAccountNotFound, ErrAccountClosed as for deposits
//	ERROR: ErrInsufficientFunds if balance - amount < -overdraft limit
func DecideWithdraw(state Account, command WithdrawFunds) DecisionResult {
	if err := ValidateAmount(command.Amount); err != nil {
		return ErrorDecision(err)
	}

	if err := requireOpen(state); err != nil {
		return ErrorDecision(err)
	}

	if !state.CanWithdraw(command.Amount) {
		return ErrorDecision(ErrInsufficientFunds)
	}

	return SuccessDecision(
		BuildFundsWithdrawn(state.ID, state.Version+1, command.Amount, command.OccurredAt),
	)
}

// DecideSetOverdraftLimit decides whether the overdraft limit can be changed.
//
// Business Rules:
//
//	GIVEN: an open account
//	WHEN: SetOverdraftLimit command is received
//	THEN: OverdraftLimitSet event is generated
//	ERROR: ErrValidation if the limit is negative or has more than two decimal places
//	ERROR: ErrAccountNotFound, ErrAccountClosed as for deposits
//	ERROR: ErrInsufficientFunds if the current balance is already below -limit
func DecideSetOverdraftLimit(state Account, command SetOverdraftLimit) DecisionResult {
	if err := ValidateOverdraftLimit(command.Limit); err != nil {
		return ErrorDecision(err)
	}

	if err := requireOpen(state); err != nil {
		return ErrorDecision(err)
	}

	if state.Balance.LessThan(command.Limit.Neg()) {
		return ErrorDecision(ErrInsufficientFunds)
	}

	return SuccessDecision(
		BuildOverdraftLimitSet(state.ID, state.Version+1, command.Limit, command.OccurredAt),
	)
}

// DecideClose decides whether the account can be closed. There is no balance requirement.
//
// Business Rules:
//
//	GIVEN: an open account
//	WHEN: CloseAccount command is received
//	THEN: AccountClosed event is generated
//	ERROR: ErrAccountNotFound if the account does not exist
//	ERROR: ErrAccountClosed if the account is already closed
func DecideClose(state Account, command CloseAccount) DecisionResult {
	if err := requireOpen(state); err != nil {
		return ErrorDecision(err)
	}

	return SuccessDecision(
		BuildAccountClosed(state.ID, state.Version+1, command.OccurredAt),
	)
}

// DecideCompensateTransfer decides the refund of the debit leg of a failed transfer.
//
// Business Rules:
//
//	GIVEN: an open account whose debit leg was committed
//	WHEN: CompensateTransfer command is received
//	THEN: a compensating FundsDeposited event is generated
//	ERROR: ErrValidation, ErrAccountNotFound, ErrAccountClosed as for deposits
func DecideCompensateTransfer(state Account, command CompensateTransfer) DecisionResult {
	if err := ValidateAmount(command.Amount); err != nil {
		return ErrorDecision(err)
	}

	if err := requireOpen(state); err != nil {
		return ErrorDecision(err)
	}

	return SuccessDecision(
		BuildCompensatingFundsDeposited(state.ID, state.Version+1, command.Amount, command.OccurredAt),
	)
}

func requireOpen(state Account) error {
	if !state.Exists() {
		return ErrAccountNotFound
	}

	if state.IsClosed() {
		return ErrAccountClosed
	}

	return nil
}
