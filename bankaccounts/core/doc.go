// Package core contains the account aggregate of the bank accounts ledger:
// its domain events, commands, the state fold and one Decide function per command.
//
// Everything in here is pure. Decide functions take the folded Account state and a command
// and return a DecisionResult with the events to append or a typed domain error. They never
// touch the event store, which is the job of the ledger package.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
