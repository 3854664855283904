// Package shell contains the imperative glue between the account aggregate and the event store:
// mapping domain events to and from StorableEvents, event metadata, the retry policy for
// concurrency conflicts and the shared observability helpers of the ledger.
//
// In Hexagonal Architecture terminology, this would be part of the 'adapters' layer.
package shell
