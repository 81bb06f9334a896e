// Package ledger holds the simulator's records and the pure operations that
// move money between them.
//
// Every operation takes a snapshot (an Account and, for trades, its Holdings)
// and returns the new snapshot plus the audit record to append. Nothing here
// performs I/O; the sim package composes these results into a single store
// transaction.
//
// Money and share quantities are exact decimals. A buy deducts exactly
// shares x price from cash and adds the same amount to the position's cost
// basis; a sell credits cash and leaves the remaining cost basis per share
// untouched; a transfer moves an amount between cash and savings. None of
// them creates or destroys money.
package ledger
