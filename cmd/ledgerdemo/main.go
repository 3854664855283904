// Command ledgerdemo runs the two reference ledger scenarios against the configured event store
// and prints every step together with the error kind of rejected commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/ledger"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell/config"
)

const (
	serviceName    = "ledgerdemo"
	serviceVersion = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ledgerdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := config.NewObservabilityProviders(ctx, cfg, serviceName, serviceVersion, os.Stderr)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if shutdownErr := providers.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("shutting down observability providers failed", slog.Any("error", shutdownErr))
		}
	}()

	metrics := providers.MetricsCollector()
	tracing := providers.TracingCollector()

	store, err := config.OpenEventStore(ctx, cfg, config.Observability{
		ContextualLogger: logger,
		Metrics:          metrics,
		Tracing:          tracing,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	service, err := ledger.NewService(
		store,
		ledger.WithRetryOptions(cfg.RetryOptions()...),
		ledger.WithContextualLogger(logger),
		ledger.WithMetrics(metrics),
		ledger.WithTracing(tracing),
	)
	if err != nil {
		return err
	}

	logger.Info("ledger demo started",
		slog.String("persistence_module", cfg.PersistenceModule),
		slog.String("adapter_type", cfg.AdapterType),
	)

	out := newPrinter(os.Stdout)

	if err = runTransferScenario(ctx, service, out); err != nil {
		return err
	}

	return runOverdraftScenario(ctx, service, out)
}
