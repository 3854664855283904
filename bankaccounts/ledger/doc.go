// Package ledger is the application service of the bank accounts ledger.
//
// Every single-account command follows the load-decide-append protocol: load the account's
// event stream, fold it into the current state, let the pure core decide, and append the
// resulting events with the loaded version as expected version. A concurrency conflict
// restarts the cycle, up to the retry bound.
//
// TransferFunds spans two independently versioned accounts and runs as a saga:
// debit, credit and, if the credit leg fails, a compensating deposit on the debit account.
// There is no distributed transaction.
//
// The Service holds no per-account locks and is safe for concurrent use.
package ledger
