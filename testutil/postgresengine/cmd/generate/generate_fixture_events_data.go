package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
)

const (
	tenThousand     = 10000
	hundredThousand = tenThousand * 10
	million         = hundredThousand * 10

	defaultNumAccounts       = 100 * tenThousand
	defaultEventsPerAccount  = 10
	defaultClosedAccountsPct = 5

	// OutputDir - the directory to put the fixture data into, relative to the project root.
	OutputDir = "testutil/postgresengine/fixtures"

	// OutputCSVFile - the CSV file to put the fixture data into.
	OutputCSVFile = "events.csv"
)

var errNoProjectRoot = errors.New("could not find project root (no go.mod found)")

type settings struct {
	numAccounts       int
	eventsPerAccount  int
	closedAccountsPct int
}

// accountHistory decides one command at a time against the folded state,
// so every generated stream is a valid account history.
type accountHistory struct {
	state  core.Account
	writer *csv.Writer
	clock  *time.Time
}

func main() {
	s := settings{}
	flag.IntVar(&s.numAccounts, "accounts", defaultNumAccounts, "number of account streams to generate")
	flag.IntVar(&s.eventsPerAccount, "events", defaultEventsPerAccount, "number of events per account stream (at least 1)")
	flag.IntVar(&s.closedAccountsPct, "closed", defaultClosedAccountsPct, "percentage of accounts that get closed")
	flag.Parse()

	if err := GenerateFixtureData(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating fixture data: %v\n", err)
		os.Exit(1)
	}
}

// GenerateFixtureData writes account histories as CSV rows in the column order of the events table:
// stream_id, stream_version, event_type, occurred_at, payload, metadata.
func GenerateFixtureData(s settings) error {
	startTime := time.Now()

	fmt.Println("🚀 Starting fixture data generation")
	fmt.Printf("📊 Accounts: %s, events per account: %d\n", formatNumber(s.numAccounts), s.eventsPerAccount)

	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	outputDir := filepath.Join(projectRoot, OutputDir)
	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	csvPath := filepath.Join(outputDir, OutputCSVFile)

	csvFile, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	writer := csv.NewWriter(csvFile)
	fakeClock := time.Unix(0, 0).UTC()
	progressStep := max(s.numAccounts/20, 1)
	eventCount := 0

	for i := 0; i < s.numAccounts; i++ {
		history := &accountHistory{writer: writer, clock: &fakeClock}

		written, genErr := history.generate(s)
		if genErr != nil {
			return genErr
		}

		eventCount += written

		if (i+1)%progressStep == 0 {
			reportProgress(i+1, s.numAccounts)
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}

	fmt.Printf("\n\nFixture generation completed! 🎉\n")
	fmt.Printf("Total events generated: %s 📊\n", formatNumber(eventCount))
	fmt.Printf("Total time: %v ⏱️\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("CSV file: %s\n", csvPath)

	return nil
}

func (h *accountHistory) generate(s settings) (int, error) {
	accountID, err := uuid.NewV7()
	if err != nil {
		return 0, err
	}

	suffix := accountID.String()[:8]
	result := core.DecideOpen(
		core.BuildOpenAccount(accountID, "Account Holder "+suffix, "holder-"+suffix+"@example.com", h.tick()),
	)

	if err = h.record(result); err != nil {
		return 0, err
	}

	closeAtEnd := rand.IntN(100) < s.closedAccountsPct

	for int(h.state.Version) < s.eventsPerAccount {
		if closeAtEnd && int(h.state.Version) == s.eventsPerAccount-1 {
			result = core.DecideClose(h.state, core.BuildCloseAccount(accountID, h.tick()))
		} else {
			result = h.decideRandomCommand()
		}

		if err = h.record(result); err != nil {
			return 0, err
		}
	}

	return int(h.state.Version), nil
}

func (h *accountHistory) decideRandomCommand() core.DecisionResult {
	amount := decimal.New(rand.Int64N(100000)+1, -2)

	switch roll := rand.IntN(10); {
	case roll < 5:
		return core.DecideDeposit(h.state, core.BuildDepositFunds(h.state.ID, amount, h.tick()))
	case roll < 9:
		result := core.DecideWithdraw(h.state, core.BuildWithdrawFunds(h.state.ID, amount, h.tick()))
		if result.HasError() != nil {
			return core.DecideDeposit(h.state, core.BuildDepositFunds(h.state.ID, amount, h.tick()))
		}

		return result
	default:
		limit := decimal.New(rand.Int64N(10)*10000, -2)
		result := core.DecideSetOverdraftLimit(h.state, core.BuildSetOverdraftLimit(h.state.ID, limit, h.tick()))
		if result.HasError() != nil {
			return core.DecideDeposit(h.state, core.BuildDepositFunds(h.state.ID, amount, h.tick()))
		}

		return result
	}
}

func (h *accountHistory) record(result core.DecisionResult) error {
	if err := result.HasError(); err != nil {
		return fmt.Errorf("generated command was rejected: %w", err)
	}

	messageID, err := uuid.NewV7()
	if err != nil {
		return err
	}

	storableEvents, err := shell.StorableEventsFrom(result.Events, shell.BuildRootEventMetadata(messageID))
	if err != nil {
		return err
	}

	for i, event := range result.Events {
		h.state = core.Apply(h.state, event)

		record := []string{
			h.state.ID.String(),
			strconv.FormatInt(event.ProducesVersion(), 10),
			storableEvents[i].EventType,
			storableEvents[i].OccurredAt.Format(time.RFC3339Nano),
			string(storableEvents[i].PayloadJSON),
			string(storableEvents[i].MetadataJSON),
		}

		if err = h.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	return nil
}

func (h *accountHistory) tick() time.Time {
	*h.clock = h.clock.Add(2 * time.Millisecond)

	return *h.clock
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err = os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errNoProjectRoot
		}

		dir = parent
	}
}

func formatNumber(n int) string {
	switch {
	case n >= million:
		return fmt.Sprintf("%.1fM", float64(n)/float64(million))
	case n >= hundredThousand:
		return fmt.Sprintf("%.0fK", float64(n)/1000)
	case n >= tenThousand:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return strconv.Itoa(n)
	}
}

func reportProgress(current int, total int) {
	percentage := float64(current) / float64(total) * 100
	fmt.Printf("\r  ◐ accounts: %s/%s (%.0f%%)    ", formatNumber(current), formatNumber(total), percentage)
}
