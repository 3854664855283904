package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

// decideFunc is the pure business decision of one command on the current account state.
type decideFunc func(state core.Account) core.DecisionResult

// execute runs the load-decide-append cycle for one account and retries it on concurrency conflicts.
// The metadata is the same for every attempt, so that a failed append can be identified by its message id.
func (s *Service) execute(
	ctx context.Context,
	commandType string,
	accountID uuid.UUID,
	metadata shell.EventMetadata,
	decide decideFunc,
) (shell.HandlerResult, error) {
	ctx = eventstore.WithStrongConsistency(ctx)

	var newVersion core.Version

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		version, execErr := s.executeOnce(retryCtx, accountID, metadata, decide)
		newVersion = version

		return execErr
	}, s.retryOptionsFor(commandType)...)

	if err != nil {
		if retryMetrics.RetriesExhausted {
			err = errors.Join(ErrConcurrencyConflict, err)
		}

		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(newVersion, retryMetrics), nil
}

func (s *Service) executeOnce(
	ctx context.Context,
	accountID uuid.UUID,
	metadata shell.EventMetadata,
	decide decideFunc,
) (core.Version, error) {
	state, err := s.loadAccountState(ctx, accountID)
	if err != nil {
		return 0, err
	}

	result := decide(state)
	if decisionErr := result.HasError(); decisionErr != nil {
		return 0, decisionErr
	}

	if !result.HasEventsToAppend() {
		return state.Version, nil
	}

	storableEvents, err := shell.StorableEventsFrom(result.Events, metadata)
	if err != nil {
		return 0, err
	}

	newVersion, appendErr := s.store.Append(ctx, accountID.String(), state.Version, storableEvents[0], storableEvents[1:]...)
	if appendErr != nil {
		if errors.Is(appendErr, eventstore.ErrConcurrencyConflict) {
			return 0, appendErr
		}

		return s.resolveAppendOutcome(ctx, accountID, metadata.MessageID, appendErr)
	}

	return newVersion, nil
}

// loadAccountState loads and folds the account's history. A missing stream yields the empty state.
func (s *Service) loadAccountState(ctx context.Context, accountID uuid.UUID) (core.Account, error) {
	version, storableEvents, err := s.store.Load(ctx, accountID.String())
	if err != nil {
		if errors.Is(err, eventstore.ErrStreamNotFound) {
			return core.Account{}, nil
		}

		return core.Account{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return core.Account{}, err
	}

	state, err := core.Fold(history)
	if err != nil {
		return core.Account{}, err
	}

	if state.Version != version {
		return core.Account{}, errors.Join(
			core.ErrCorruptHistory,
			fmt.Errorf("stream version %d does not match the folded version %d", version, state.Version),
		)
	}

	return state, nil
}

// resolveAppendOutcome finds out whether a failed append was committed after all, by reloading
// the stream detached from the caller's cancellation. A conflict is the only append error that
// proves nothing was written; a cancellation, a timeout or a broken connection can hit after COMMIT.
func (s *Service) resolveAppendOutcome(
	ctx context.Context,
	accountID uuid.UUID,
	messageID shell.MessageID,
	appendErr error,
) (core.Version, error) {
	resolveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.outcomeResolutionTimeout)
	defer cancel()

	version, storableEvents, loadErr := s.store.Load(resolveCtx, accountID.String())
	if loadErr != nil {
		if errors.Is(loadErr, eventstore.ErrStreamNotFound) {
			return 0, appendErr
		}

		return 0, errors.Join(ErrAppendOutcomeUnknown, appendErr, loadErr)
	}

	if shell.ContainsMessage(storableEvents, messageID) {
		shell.LogWarn(
			ctx, s.logger, s.contextualLogger,
			logMsgAppendCommittedDespiteError,
			shell.LogAttrAccountID, accountID.String(),
			shell.LogAttrError, appendErr.Error(),
		)

		return version, nil
	}

	return 0, appendErr
}

// newID generates a time-ordered id, used for accounts, messages and transfers alike.
func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, errors.Join(ErrGeneratingIDFailed, err)
	}

	return id, nil
}
