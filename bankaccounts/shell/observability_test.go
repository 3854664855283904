package shell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
	"github.com/ledgerkit/bankaccounts-eventstore-go/testutil/observability/testdoubles"
)

func Test_StatusFrom(t *testing.T) {
	testCases := []struct {
		err      error
		expected string
	}{
		{err: nil, expected: shell.StatusSuccess},
		{err: fmt.Errorf("load: %w", context.Canceled), expected: shell.StatusCanceled},
		{err: context.DeadlineExceeded, expected: shell.StatusTimeout},
		{err: errors.Join(errors.New("retries exhausted"), eventstore.ErrConcurrencyConflict), expected: shell.StatusConcurrencyConflict},
		{err: core.ErrInsufficientFunds, expected: shell.StatusRejected},
		{err: errors.Join(core.ErrValidation, errors.New("amount")), expected: shell.StatusRejected},
		{err: core.ErrAccountNotFound, expected: shell.StatusRejected},
		{err: core.ErrAccountClosed, expected: shell.StatusRejected},
		{err: errors.New("connection refused"), expected: shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, shell.StatusFrom(tc.err))
		})
	}
}

func Test_RecordCommandMetrics_RecordsStatusSpecificCounters(t *testing.T) {
	// arrange
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	ctx := context.Background()

	// act
	shell.RecordCommandMetrics(ctx, metricsSpy, "DepositFunds", shell.StatusSuccess, time.Millisecond)
	shell.RecordCommandMetrics(ctx, metricsSpy, "DepositFunds", shell.StatusConcurrencyConflict, time.Millisecond)
	shell.RecordCommandMetrics(ctx, metricsSpy, "DepositFunds", shell.StatusCanceled, time.Millisecond)
	shell.RecordCommandMetrics(ctx, nil, "DepositFunds", shell.StatusSuccess, time.Millisecond)

	// assert
	assert.Equal(t, 3, metricsSpy.CountCounterRecordsForMetric(shell.LedgerCommandCallsMetric))
	assert.True(t, metricsSpy.HasDurationRecordForMetric(shell.LedgerCommandDurationMetric).
		WithLabel(shell.LogAttrCommandType, "DepositFunds").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.Equal(t, 1, metricsSpy.CountCounterRecordsForMetric(shell.LedgerConcurrencyConflictMetric))
	assert.Equal(t, 1, metricsSpy.CountCounterRecordsForMetric(shell.LedgerCanceledMetric))
	assert.Equal(t, 0, metricsSpy.CountCounterRecordsForMetric(shell.LedgerTimeoutMetric))
}

func Test_CommandSpan_StartAndFinish(t *testing.T) {
	// arrange
	tracingSpy := testdoubles.NewTracingCollectorSpy(true)

	// act
	_, span := shell.StartCommandSpan(context.Background(), tracingSpy, "CloseAccount", map[string]string{
		shell.LogAttrAccountID: "acc-1",
	})
	shell.FinishSpan(tracingSpy, span, shell.StatusRejected, 2*time.Millisecond, core.ErrAccountClosed)

	// assert
	spans := tracingSpy.FindSpans(shell.SpanNameCommand)
	require.Len(t, spans, 1)
	assert.Equal(t, "CloseAccount", spans[0].StartAttributes[shell.LogAttrCommandType])
	assert.Equal(t, "acc-1", spans[0].StartAttributes[shell.LogAttrAccountID])
	assert.True(t, spans[0].Finished)
	assert.Equal(t, shell.StatusRejected, spans[0].Status)
	assert.Equal(t, "2.00", spans[0].EndAttributes[shell.LogAttrDurationMS])
	assert.Equal(t, core.ErrAccountClosed.Error(), spans[0].EndAttributes[shell.LogAttrError])
}

func Test_StartQuerySpan_WithoutCollector(t *testing.T) {
	ctx := context.Background()

	spanCtx, span := shell.StartQuerySpan(ctx, nil, "GetAccount", nil)

	assert.Equal(t, ctx, spanCtx)
	assert.Nil(t, span)
	assert.NotPanics(t, func() { shell.FinishSpan(nil, span, shell.StatusSuccess, 0, nil) })
}

func Test_LogCommandOutcome_UsesLevelPerStatus(t *testing.T) {
	// arrange
	loggerSpy := testdoubles.NewContextualLoggerSpy(true)
	ctx := context.Background()
	result := shell.HandlerResult{RetryAttempts: 2}

	// act
	shell.LogCommandOutcome(ctx, nil, loggerSpy, "WithdrawFunds", shell.StatusSuccess, result, time.Millisecond, nil)
	shell.LogCommandOutcome(ctx, nil, loggerSpy, "WithdrawFunds", shell.StatusRejected, result, time.Millisecond, core.ErrInsufficientFunds)
	shell.LogCommandOutcome(ctx, nil, loggerSpy, "WithdrawFunds", shell.StatusError, result, time.Millisecond, errors.New("boom"))

	// assert
	completed, found := loggerSpy.FindRecord("info", shell.LogMsgCommandCompleted)
	require.True(t, found)
	assert.Equal(t, 2, completed.Arg(shell.LogAttrRetryAttempts))
	assert.True(t, loggerSpy.HasInfoLog(shell.LogMsgCommandRejected))
	assert.True(t, loggerSpy.HasErrorLog(shell.LogMsgCommandFailed))
}
