package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell/config"
)

const csvColumns = 6

var errMalformedRecord = errors.New("malformed fixture record")

var eventColumns = []string{"stream_id", "stream_version", "event_type", "occurred_at", "payload", "metadata"}

func main() {
	csvPath := flag.String("file", "testutil/postgresengine/fixtures/events.csv", "the CSV file written by the fixture generator")
	truncate := flag.Bool("truncate", true, "clear the events table before the import")
	flag.Parse()

	if err := ImportCSVData(*csvPath, *truncate); err != nil {
		log.Fatalf("Error importing CSV data: %v", err)
	}
}

// ImportCSVData streams the fixture CSV into the configured events table with COPY FROM STDIN.
// The connection settings are read from the same environment variables as the ledger demo.
func ImportCSVData(csvPath string, truncate bool) error {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println("🚀 Starting CSV data import")
	fmt.Printf("📄 Source: %s\n", csvPath)
	fmt.Printf("🎯 Target: table %q at %s:%d\n\n", cfg.EventsTableName, cfg.Postgres.Host, cfg.Postgres.Port)

	ctx := context.Background()

	csvFile, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	fmt.Printf("🔗\tConnecting to database...")
	pool, err := config.OpenPGXPool(ctx, cfg.PostgresPrimaryDSN())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()
	fmt.Println(" ✅")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	table := pgx.Identifier{cfg.EventsTableName}

	fmt.Printf("🔒\tLocking events table...")
	if _, err = tx.Exec(ctx, "LOCK TABLE "+table.Sanitize()+" IN ACCESS EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("failed to lock table: %w", err)
	}
	fmt.Println(" ✅")

	if truncate {
		fmt.Printf("🧹\tClearing existing data...")
		if _, err = tx.Exec(ctx, "TRUNCATE TABLE "+table.Sanitize()+" RESTART IDENTITY"); err != nil {
			return fmt.Errorf("failed to truncate table: %w", err)
		}
		fmt.Println(" ✅")
	}

	fmt.Printf("📥\tImporting CSV data...")
	copyStart := time.Now()

	count, err := tx.CopyFrom(ctx, table, eventColumns, newCSVSource(csv.NewReader(csvFile)))
	if err != nil {
		return fmt.Errorf("failed to import CSV: %w", err)
	}
	fmt.Printf(" ✅ %v\n", time.Since(copyStart).Round(time.Millisecond))

	fmt.Printf("📊\tUpdating table statistics...")
	if _, err = tx.Exec(ctx, "ANALYZE "+table.Sanitize()); err != nil {
		return fmt.Errorf("failed to analyze table: %w", err)
	}
	fmt.Println(" ✅")

	fmt.Printf("💾\tCommitting transaction...")
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	fmt.Println(" ✅")

	fmt.Println()
	fmt.Printf("Import completed! 🎉\n")
	fmt.Printf("Total events imported: %d 📊\n", count)
	fmt.Printf("Total time: %v ⏱️\n", time.Since(startTime).Round(time.Millisecond))

	return nil
}

// csvSource adapts a csv.Reader to pgx.CopyFromSource.
type csvSource struct {
	reader *csv.Reader
	line   int
	values []any
	err    error
}

func newCSVSource(reader *csv.Reader) *csvSource {
	reader.FieldsPerRecord = csvColumns
	reader.ReuseRecord = true

	return &csvSource{reader: reader}
}

func (s *csvSource) Next() bool {
	record, err := s.reader.Read()
	if errors.Is(err, io.EOF) {
		return false
	}

	s.line++

	if err != nil {
		s.err = err
		return false
	}

	version, err := strconv.ParseInt(record[1], 10, 64)
	if err != nil {
		s.err = fmt.Errorf("%w: line %d: stream_version: %w", errMalformedRecord, s.line, err)
		return false
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, record[3])
	if err != nil {
		s.err = fmt.Errorf("%w: line %d: occurred_at: %w", errMalformedRecord, s.line, err)
		return false
	}

	s.values = []any{record[0], version, record[2], occurredAt, record[4], record[5]}

	return true
}

func (s *csvSource) Values() ([]any, error) {
	return s.values, nil
}

func (s *csvSource) Err() error {
	return s.err
}
