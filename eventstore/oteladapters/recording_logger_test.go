package oteladapters_test

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/trace"
)

// recordingLoggerProvider is an OpenTelemetry LoggerProvider that keeps every emitted record in memory.
type recordingLoggerProvider struct {
	embedded.LoggerProvider

	logger *recordingLogger
}

func newRecordingLoggerProvider() *recordingLoggerProvider {
	return &recordingLoggerProvider{logger: &recordingLogger{}}
}

func (p *recordingLoggerProvider) Logger(string, ...log.LoggerOption) log.Logger {
	return p.logger
}

type emittedRecord struct {
	record      log.Record
	spanContext trace.SpanContext
}

type recordingLogger struct {
	embedded.Logger

	mu      sync.Mutex
	records []emittedRecord
}

func (l *recordingLogger) Emit(ctx context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, emittedRecord{record: record.Clone(), spanContext: trace.SpanContextFromContext(ctx)})
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func (l *recordingLogger) emitted() []emittedRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]emittedRecord(nil), l.records...)
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}
