// Package store defines the persistence collaborator the ledger writes
// through, plus an in-memory implementation.
//
// Every collection is partitioned by owner; nothing read for one owner
// ever includes another owner's records. A missing collection reads as
// empty, never as an error.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bukutani/bukutani/internal/model"
)

// ErrUnknownTransaction is returned by Apply when a batch deletes a
// transaction that does not exist in the named collection.
var ErrUnknownTransaction = errors.New("unknown transaction")

// ErrDuplicateTransaction is returned by Apply when a batch appends a
// transaction whose ID is already in the owner's collection.
var ErrDuplicateTransaction = errors.New("duplicate transaction ID")

// Store persists transactions and journal lines.
type Store interface {
	// LoadTransactions returns the owner's transactions of kind in
	// insertion order.
	LoadTransactions(ctx context.Context, owner string, kind model.Kind) ([]model.Transaction, error)
	// LoadJournal returns the owner's journal lines in insertion order.
	LoadJournal(ctx context.Context, owner string) ([]model.JournalLine, error)
	// Apply writes a batch as one unit: either every change lands or none.
	Apply(ctx context.Context, owner string, b Batch) error
	Close() error
}

// Batch is a set of changes applied atomically. Append and Delete act on
// the Kind collection; Lines are appended to the journal.
type Batch struct {
	Kind   model.Kind
	Append []model.Transaction
	Delete []string
	Lines  []model.JournalLine
}

// Validate checks the batch is internally consistent.
func (b Batch) Validate() error {
	if (len(b.Append) > 0 || len(b.Delete) > 0) && b.Kind != model.KindIncome && b.Kind != model.KindExpense {
		return fmt.Errorf("batch has unknown collection %q", b.Kind)
	}
	seen := make(map[string]bool, len(b.Append))
	for _, t := range b.Append {
		if t.ID == "" {
			return errors.New("batch appends a transaction without an ID")
		}
		if t.Kind != b.Kind {
			return fmt.Errorf("transaction %s of kind %s appended to %s", t.ID, t.Kind, b.Kind)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: %s appended twice", ErrDuplicateTransaction, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// removeIDs returns txns without the listed IDs, or ErrUnknownTransaction
// if any ID is absent.
func removeIDs(txns []model.Transaction, ids []string) ([]model.Transaction, error) {
	if len(ids) == 0 {
		return txns, nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if drop[t.ID] {
			delete(drop, t.ID)
			continue
		}
		out = append(out, t)
	}
	for id := range drop {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransaction, id)
	}
	return out, nil
}

// ApplyToSlices returns the collections that result from applying b.
// Deletes run before appends, and an appended ID must not remain in the
// collection. It never modifies its inputs, so callers can discard the result on error.
func ApplyToSlices(txns []model.Transaction, lines []model.JournalLine, b Batch) ([]model.Transaction, []model.JournalLine, error) {
	kept, err := removeIDs(txns, b.Delete)
	if err != nil {
		return nil, nil, err
	}
	existing := make(map[string]bool, len(kept))
	for _, t := range kept {
		existing[t.ID] = true
	}
	for _, t := range b.Append {
		if existing[t.ID] {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, t.ID)
		}
	}
	nextTxns := make([]model.Transaction, 0, len(kept)+len(b.Append))
	nextTxns = append(nextTxns, kept...)
	nextTxns = append(nextTxns, b.Append...)

	nextLines := make([]model.JournalLine, 0, len(lines)+len(b.Lines))
	nextLines = append(nextLines, lines...)
	nextLines = append(nextLines, b.Lines...)
	return nextTxns, nextLines, nil
}
