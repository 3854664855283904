package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

// transferIDs are generated before the saga starts, so that nothing can fail between the legs.
type transferIDs struct {
	transfer     uuid.UUID
	debit        uuid.UUID
	credit       uuid.UUID
	compensation uuid.UUID
}

// TransferFunds moves the amount from the debit account to the credit account.
//
// The transfer is a saga of two independent appends. If the credit leg fails after the debit
// was committed, the debit is refunded with a compensating deposit and ErrTransferFailed is
// returned. If that compensation fails as well, or if it can't be determined whether a leg
// was committed, ErrReconciliationRequired is returned.
// Once the debit is committed, the caller's cancellation no longer affects the saga.
func (s *Service) TransferFunds(
	ctx context.Context,
	debitAccountID uuid.UUID,
	creditAccountID uuid.UUID,
	amount decimal.Decimal,
) error {
	command := core.BuildTransferFunds(debitAccountID, creditAccountID, amount, time.Now())
	attrs := map[string]string{
		logAttrDebitAccountID:  debitAccountID.String(),
		logAttrCreditAccountID: creditAccountID.String(),
	}

	return s.observeCommand(ctx, command.CommandType(), attrs, func(ctx context.Context) (shell.HandlerResult, error) {
		if err := core.ValidateTransfer(command); err != nil {
			return shell.HandlerResult{}, err
		}

		if err := s.checkTransferParticipants(ctx, command); err != nil {
			return shell.HandlerResult{}, err
		}

		ids, err := newTransferIDs()
		if err != nil {
			return shell.HandlerResult{}, err
		}

		return s.runTransferSaga(ctx, command, ids)
	})
}

func (s *Service) checkTransferParticipants(ctx context.Context, command core.TransferFunds) error {
	ctx = eventstore.WithStrongConsistency(ctx)

	for _, accountID := range []uuid.UUID{command.DebitAccountID, command.CreditAccountID} {
		state, err := s.loadExistingAccount(ctx, accountID)
		if err != nil {
			return err
		}

		if state.IsClosed() {
			return core.ErrAccountClosed
		}
	}

	return nil
}

func (s *Service) runTransferSaga(
	ctx context.Context,
	command core.TransferFunds,
	ids transferIDs,
) (shell.HandlerResult, error) {
	withdraw := core.BuildWithdrawFunds(command.DebitAccountID, command.Amount, command.OccurredAt)
	debitMetadata := shell.BuildEventMetadata(ids.debit, ids.transfer, ids.transfer)

	debitResult, err := s.execute(ctx, command.CommandType(), command.DebitAccountID, debitMetadata,
		func(state core.Account) core.DecisionResult {
			return core.DecideWithdraw(state, withdraw)
		},
	)
	if err != nil {
		if errors.Is(err, ErrAppendOutcomeUnknown) {
			return debitResult, s.outcomeUnknown(ctx, command, ids, err)
		}

		return debitResult, err
	}

	ctx = context.WithoutCancel(ctx)

	deposit := core.BuildDepositFunds(command.CreditAccountID, command.Amount, command.OccurredAt)
	creditMetadata := shell.BuildEventMetadata(ids.credit, ids.debit, ids.transfer)

	creditResult, creditErr := s.execute(ctx, command.CommandType(), command.CreditAccountID, creditMetadata,
		func(state core.Account) core.DecisionResult {
			return core.DecideDeposit(state, deposit)
		},
	)
	if creditErr == nil {
		return mergeResults(debitResult, creditResult), nil
	}

	if errors.Is(creditErr, ErrAppendOutcomeUnknown) {
		return mergeResults(debitResult, creditResult), s.outcomeUnknown(ctx, command, ids, creditErr)
	}

	compensationResult, err := s.compensateDebit(ctx, command, ids, creditErr)

	return mergeResults(debitResult, mergeResults(creditResult, compensationResult)), err
}

func (s *Service) compensateDebit(
	ctx context.Context,
	command core.TransferFunds,
	ids transferIDs,
	creditErr error,
) (shell.HandlerResult, error) {
	compensate := core.BuildCompensateTransfer(command.DebitAccountID, command.Amount, time.Now())
	metadata := shell.BuildEventMetadata(ids.compensation, ids.debit, ids.transfer)

	result, compensationErr := s.execute(ctx, compensate.CommandType(), command.DebitAccountID, metadata,
		func(state core.Account) core.DecisionResult {
			return core.DecideCompensateTransfer(state, compensate)
		},
	)

	logArgs := []any{
		logAttrTransferID, ids.transfer.String(),
		logAttrDebitAccountID, command.DebitAccountID.String(),
		logAttrCreditAccountID, command.CreditAccountID.String(),
		logAttrAmount, core.ToMoney(command.Amount).StringFixed(2),
		shell.LogAttrError, creditErr.Error(),
	}

	if compensationErr != nil {
		shell.RecordCompensation(ctx, s.metricsCollector, shell.StatusError)
		logArgs = append(logArgs, logAttrCompensationErr, compensationErr.Error())
		shell.LogError(ctx, s.logger, s.contextualLogger, logMsgReconciliationRequired, logArgs...)

		return result, errors.Join(ErrReconciliationRequired, creditErr, compensationErr)
	}

	shell.RecordCompensation(ctx, s.metricsCollector, shell.StatusSuccess)
	shell.LogWarn(ctx, s.logger, s.contextualLogger, logMsgTransferCompensated, logArgs...)

	return result, errors.Join(ErrTransferFailed, creditErr)
}

// outcomeUnknown reports a leg whose append may or may not have been committed.
// Such a leg is neither retried nor compensated.
func (s *Service) outcomeUnknown(
	ctx context.Context,
	command core.TransferFunds,
	ids transferIDs,
	legErr error,
) error {
	shell.LogError(
		ctx, s.logger, s.contextualLogger,
		logMsgTransferOutcomeUnknown,
		logAttrTransferID, ids.transfer.String(),
		logAttrDebitAccountID, command.DebitAccountID.String(),
		logAttrCreditAccountID, command.CreditAccountID.String(),
		logAttrAmount, core.ToMoney(command.Amount).StringFixed(2),
		shell.LogAttrError, legErr.Error(),
	)

	return errors.Join(ErrReconciliationRequired, legErr)
}

func newTransferIDs() (transferIDs, error) {
	var ids transferIDs

	for _, id := range []*uuid.UUID{&ids.transfer, &ids.debit, &ids.credit, &ids.compensation} {
		generated, err := newID()
		if err != nil {
			return transferIDs{}, err
		}

		*id = generated
	}

	return ids, nil
}

func mergeResults(first shell.HandlerResult, second shell.HandlerResult) shell.HandlerResult {
	return shell.HandlerResult{
		NewVersion:       second.NewVersion,
		RetryAttempts:    first.RetryAttempts + second.RetryAttempts,
		TotalRetryDelay:  first.TotalRetryDelay + second.TotalRetryDelay,
		LastErrorType:    second.LastErrorType,
		RetriesExhausted: first.RetriesExhausted || second.RetriesExhausted,
	}
}
