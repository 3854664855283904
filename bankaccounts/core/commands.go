package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	openAccountCommandType        = "OpenAccount"
	depositFundsCommandType       = "DepositFunds"
	withdrawFundsCommandType      = "WithdrawFunds"
	setOverdraftLimitCommandType  = "SetOverdraftLimit"
	closeAccountCommandType       = "CloseAccount"
	transferFundsCommandType      = "TransferFunds"
	compensateTransferCommandType = "CompensateTransfer"
)

// OpenAccount represents the intent to open a new account.
type OpenAccount struct {
	AccountID    uuid.UUID
	FullName     string
	EmailAddress string
	OccurredAt   OccurredAt
}

// BuildOpenAccount creates a new OpenAccount command.
func BuildOpenAccount(accountID uuid.UUID, fullName string, emailAddress string, occurredAt time.Time) OpenAccount {
	return OpenAccount{
		AccountID:    accountID,
		FullName:     fullName,
		EmailAddress: emailAddress,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c OpenAccount) CommandType() string { return openAccountCommandType }

// DepositFunds represents the intent to credit money to an account.
type DepositFunds struct {
	AccountID  uuid.UUID
	Amount     decimal.Decimal
	OccurredAt OccurredAt
}

// BuildDepositFunds creates a new DepositFunds command.
func BuildDepositFunds(accountID uuid.UUID, amount decimal.Decimal, occurredAt time.Time) DepositFunds {
	return DepositFunds{AccountID: accountID, Amount: amount, OccurredAt: ToOccurredAt(occurredAt)}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c DepositFunds) CommandType() string { return depositFundsCommandType }

// WithdrawFunds represents the intent to debit money from an account.
type WithdrawFunds struct {
	AccountID  uuid.UUID
	Amount     decimal.Decimal
	OccurredAt OccurredAt
}

// BuildWithdrawFunds creates a new WithdrawFunds command.
func BuildWithdrawFunds(accountID uuid.UUID, amount decimal.Decimal, occurredAt time.Time) WithdrawFunds {
	return WithdrawFunds{AccountID: accountID, Amount: amount, OccurredAt: ToOccurredAt(occurredAt)}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c WithdrawFunds) CommandType() string { return withdrawFundsCommandType }

// SetOverdraftLimit represents the intent to change how far an account may go negative.
type SetOverdraftLimit struct {
	AccountID  uuid.UUID
	Limit      decimal.Decimal
	OccurredAt OccurredAt
}

// BuildSetOverdraftLimit creates a new SetOverdraftLimit command.
func BuildSetOverdraftLimit(accountID uuid.UUID, limit decimal.Decimal, occurredAt time.Time) SetOverdraftLimit {
	return SetOverdraftLimit{AccountID: accountID, Limit: limit, OccurredAt: ToOccurredAt(occurredAt)}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c SetOverdraftLimit) CommandType() string { return setOverdraftLimitCommandType }

// CloseAccount represents the intent to close an account for good.
type CloseAccount struct {
	AccountID  uuid.UUID
	OccurredAt OccurredAt
}

// BuildCloseAccount creates a new CloseAccount command.
func BuildCloseAccount(accountID uuid.UUID, occurredAt time.Time) CloseAccount {
	return CloseAccount{AccountID: accountID, OccurredAt: ToOccurredAt(occurredAt)}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c CloseAccount) CommandType() string { return closeAccountCommandType }

// TransferFunds represents the intent to move money between two accounts.
// It is not decided on a single aggregate; the ledger runs it as a saga of
// WithdrawFunds, DepositFunds and, if needed, CompensateTransfer.
type TransferFunds struct {
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	Amount          decimal.Decimal
	OccurredAt      OccurredAt
}

// BuildTransferFunds creates a new TransferFunds command.
func BuildTransferFunds(debitAccountID uuid.UUID, creditAccountID uuid.UUID, amount decimal.Decimal, occurredAt time.Time) TransferFunds {
	return TransferFunds{
		DebitAccountID:  debitAccountID,
		CreditAccountID: creditAccountID,
		Amount:          amount,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c TransferFunds) CommandType() string { return transferFundsCommandType }

// CompensateTransfer gives the debited amount of a failed transfer back to the debit account.
type CompensateTransfer struct {
	AccountID  uuid.UUID
	Amount     decimal.Decimal
	OccurredAt OccurredAt
}

// BuildCompensateTransfer creates a new CompensateTransfer command.
func BuildCompensateTransfer(accountID uuid.UUID, amount decimal.Decimal, occurredAt time.Time) CompensateTransfer {
	return CompensateTransfer{AccountID: accountID, Amount: amount, OccurredAt: ToOccurredAt(occurredAt)}
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c CompensateTransfer) CommandType() string { return compensateTransferCommandType }
