package ledger

import (
	"time"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

const defaultOutcomeResolutionTimeout = 5 * time.Second

// Service is the application service that executes the ledger's commands and queries.
type Service struct {
	store                    eventstore.EventStore
	retryOptions             []shell.RetryOption
	outcomeResolutionTimeout time.Duration
	logger                   shell.Logger
	contextualLogger         shell.ContextualLogger
	metricsCollector         shell.MetricsCollector
	tracingCollector         shell.TracingCollector
}

// Option defines a functional option for configuring the Service.
type Option func(*Service) error

// NewService creates a ledger Service on top of any EventStore implementation.
func NewService(store eventstore.EventStore, options ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNilEventStore
	}

	service := &Service{
		store:                    store,
		outcomeResolutionTimeout: defaultOutcomeResolutionTimeout,
	}

	for _, option := range options {
		if err := option(service); err != nil {
			return nil, err
		}
	}

	return service, nil
}

// WithRetryOptions sets the retry policy for concurrency conflicts. The default is
// three attempts without delay.
func WithRetryOptions(options ...shell.RetryOption) Option {
	return func(s *Service) error {
		s.retryOptions = options

		return nil
	}
}

// WithOutcomeResolutionTimeout bounds the reload that resolves the outcome of a failed append.
func WithOutcomeResolutionTimeout(timeout time.Duration) Option {
	return func(s *Service) error {
		if timeout <= 0 {
			return ErrNonPositiveResolutionTimeout
		}

		s.outcomeResolutionTimeout = timeout

		return nil
	}
}

// WithLogger sets the logger for the Service.
func WithLogger(logger shell.Logger) Option {
	return func(s *Service) error {
		s.logger = logger

		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over the logger set WithLogger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *Service) error {
		s.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector for the Service.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(s *Service) error {
		s.metricsCollector = collector

		return nil
	}
}

// WithTracing sets the tracing collector for the Service.
func WithTracing(collector shell.TracingCollector) Option {
	return func(s *Service) error {
		s.tracingCollector = collector

		return nil
	}
}

func (s *Service) retryOptionsFor(commandType string) []shell.RetryOption {
	if s.metricsCollector == nil {
		return s.retryOptions
	}

	options := make([]shell.RetryOption, 0, len(s.retryOptions)+1)
	options = append(options, s.retryOptions...)

	return append(options, shell.WithMetrics(s.metricsCollector, commandType))
}
