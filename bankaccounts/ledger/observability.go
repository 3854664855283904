package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
)

const (
	logMsgAppendCommittedDespiteError = "append was committed despite the error"
	logMsgTransferCompensated         = "transfer credit leg failed, debit compensated"
	logMsgReconciliationRequired      = "transfer compensation failed, reconciliation required"
	logMsgTransferOutcomeUnknown      = "transfer leg outcome unknown, reconciliation required"

	logAttrDebitAccountID  = "debit_account_id"
	logAttrCreditAccountID = "credit_account_id"
	logAttrTransferID      = "transfer_id"
	logAttrAmount          = "amount"
	logAttrCompensationErr = "compensation_error"
)

// observeCommand wraps a command with a tracing span, command metrics and the outcome log record.
func (s *Service) observeCommand(
	ctx context.Context,
	commandType string,
	attrs map[string]string,
	run func(ctx context.Context) (shell.HandlerResult, error),
) error {
	start := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, s.tracingCollector, commandType, attrs)

	shell.LogDebug(ctx, s.logger, s.contextualLogger, shell.LogMsgCommandStarted, shell.LogAttrCommandType, commandType)

	result, err := run(ctx)

	duration := time.Since(start)
	status := commandStatusFrom(err)

	shell.RecordCommandMetrics(ctx, s.metricsCollector, commandType, status, duration)
	shell.FinishSpan(s.tracingCollector, span, status, duration, err)
	shell.LogCommandOutcome(ctx, s.logger, s.contextualLogger, commandType, status, result, duration, err)

	return err
}

// observeQuery wraps a query with a tracing span and query metrics. Failed queries are logged.
func (s *Service) observeQuery(
	ctx context.Context,
	queryType string,
	attrs map[string]string,
	run func(ctx context.Context) error,
) error {
	start := time.Now()
	ctx, span := shell.StartQuerySpan(ctx, s.tracingCollector, queryType, attrs)

	err := run(ctx)

	duration := time.Since(start)
	status := shell.StatusFrom(err)

	shell.RecordQueryMetrics(ctx, s.metricsCollector, queryType, status, duration)
	shell.FinishSpan(s.tracingCollector, span, status, duration, err)

	args := []any{
		shell.LogAttrQueryType, queryType,
		shell.LogAttrStatus, status,
		shell.LogAttrDurationMS, shell.ToMilliseconds(duration),
	}

	switch status {
	case shell.StatusSuccess, shell.StatusRejected:
		shell.LogDebug(ctx, s.logger, s.contextualLogger, shell.LogMsgQueryCompleted, args...)
	default:
		args = append(args, shell.LogAttrError, err.Error())
		shell.LogError(ctx, s.logger, s.contextualLogger, shell.LogMsgQueryFailed, args...)
	}

	return err
}

// commandStatusFrom classifies a command outcome. Saga failures are errors even though
// their causes are business rejections, since money had already moved.
func commandStatusFrom(err error) string {
	if errors.Is(err, ErrReconciliationRequired) || errors.Is(err, ErrTransferFailed) || errors.Is(err, ErrAppendOutcomeUnknown) {
		return shell.StatusError
	}

	return shell.StatusFrom(err)
}
