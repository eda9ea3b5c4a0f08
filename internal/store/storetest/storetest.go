// Package storetest runs the behavior every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/store"
)

// Run exercises a fresh store from newStore against the store.Store contract.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("missing owner reads empty", func(t *testing.T) {
		s := newStore(t)
		txns, err := s.LoadTransactions(context.Background(), "nobody", model.KindIncome)
		require.NoError(t, err)
		assert.Empty(t, txns)

		lines, err := s.LoadJournal(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("apply round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		txn := Income("t1", "siti", "100000")
		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindIncome,
			Append: []model.Transaction{txn},
			Lines:  Pair("2025-03-001", "t1", "Kas", "Pendapatan", "100000"),
		}))

		txns, err := s.LoadTransactions(ctx, "siti", model.KindIncome)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "t1", txns[0].ID)
		assert.Equal(t, model.KindIncome, txns[0].Kind)
		assert.Equal(t, "Penjualan Padi", txns[0].Category)
		assert.Equal(t, model.MethodCash, txns[0].Method)
		assert.Equal(t, "siti", txns[0].Owner)
		assert.True(t, txn.Date.Equal(txns[0].Date))
		assert.True(t, txn.Amount.Equal(txns[0].Amount))

		expenses, err := s.LoadTransactions(ctx, "siti", model.KindExpense)
		require.NoError(t, err)
		assert.Empty(t, expenses)

		lines, err := s.LoadJournal(ctx, "siti")
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "2025-03-001a", lines[0].EntryID)
		assert.Equal(t, "Kas", lines[0].Account)
		assert.True(t, lines[0].Debit.Equal(decimal.NewFromInt(100000)))
		assert.True(t, lines[0].Credit.IsZero())
		assert.Equal(t, "2025-03-001b", lines[1].EntryID)
		assert.Equal(t, "Pendapatan", lines[1].Account)
		assert.True(t, lines[1].Credit.Equal(decimal.NewFromInt(100000)))
	})

	t.Run("insertion order is kept", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for i, txnID := range []string{"c", "a", "b"} {
			entry := []string{"2025-03-001", "2025-03-002", "2025-03-003"}[i]
			require.NoError(t, s.Apply(ctx, "siti", store.Batch{
				Kind:   model.KindIncome,
				Append: []model.Transaction{Income(txnID, "siti", "10")},
				Lines:  Pair(entry, txnID, "Kas", "Pendapatan", "10"),
			}))
		}

		txns, err := s.LoadTransactions(ctx, "siti", model.KindIncome)
		require.NoError(t, err)
		require.Len(t, txns, 3)
		assert.Equal(t, []string{"c", "a", "b"}, []string{txns[0].ID, txns[1].ID, txns[2].ID})

		lines, err := s.LoadJournal(ctx, "siti")
		require.NoError(t, err)
		require.Len(t, lines, 6)
		assert.Equal(t, "2025-03-003b", lines[5].EntryID)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindIncome,
			Append: []model.Transaction{Income("t1", "siti", "5")},
			Lines:  Pair("2025-03-001", "t1", "Kas", "Pendapatan", "5"),
		}))

		txns, err := s.LoadTransactions(ctx, "budi", model.KindIncome)
		require.NoError(t, err)
		assert.Empty(t, txns)
		lines, err := s.LoadJournal(ctx, "budi")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("delete and append lines together", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindExpense,
			Append: []model.Transaction{Expense("e1", "siti", "75000"), Expense("e2", "siti", "1000")},
			Lines:  Pair("2025-03-001", "e1", "Urea", "Utang Dagang", "75000"),
		}))

		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindExpense,
			Delete: []string{"e1"},
			Lines:  Pair("2025-03-002", "e1", "Utang Dagang", "Urea", "75000"),
		}))

		txns, err := s.LoadTransactions(ctx, "siti", model.KindExpense)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "e2", txns[0].ID)

		lines, err := s.LoadJournal(ctx, "siti")
		require.NoError(t, err)
		assert.Len(t, lines, 4)
	})

	t.Run("unknown delete changes nothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindExpense,
			Append: []model.Transaction{Expense("e1", "siti", "75000")},
			Lines:  Pair("2025-03-001", "e1", "Urea", "Utang Dagang", "75000"),
		}))

		err := s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindExpense,
			Delete: []string{"missing"},
			Lines:  Pair("2025-03-002", "missing", "Utang Dagang", "Urea", "75000"),
		})
		require.ErrorIs(t, err, store.ErrUnknownTransaction)

		txns, err := s.LoadTransactions(ctx, "siti", model.KindExpense)
		require.NoError(t, err)
		assert.Len(t, txns, 1)
		lines, err := s.LoadJournal(ctx, "siti")
		require.NoError(t, err)
		assert.Len(t, lines, 2, "journal must not grow when the batch fails")
	})

	t.Run("duplicate id rejected, other owner unaffected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindIncome,
			Append: []model.Transaction{Income("fixed", "siti", "5")},
			Lines:  Pair("2025-03-001", "fixed", "Kas", "Pendapatan", "5"),
		}))

		err := s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindIncome,
			Append: []model.Transaction{Income("fixed", "siti", "7")},
			Lines:  Pair("2025-03-002", "fixed", "Kas", "Pendapatan", "7"),
		})
		require.ErrorIs(t, err, store.ErrDuplicateTransaction)

		txns, err := s.LoadTransactions(ctx, "siti", model.KindIncome)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(5)))
		lines, err := s.LoadJournal(ctx, "siti")
		require.NoError(t, err)
		assert.Len(t, lines, 2, "journal must not grow when the batch fails")

		require.NoError(t, s.Apply(ctx, "budi", store.Batch{
			Kind:   model.KindIncome,
			Append: []model.Transaction{Income("fixed", "budi", "9")},
			Lines:  Pair("2025-03-001", "fixed", "Kas", "Pendapatan", "9"),
		}))
		txns, err = s.LoadTransactions(ctx, "budi", model.KindIncome)
		require.NoError(t, err)
		assert.Len(t, txns, 1)
	})

	t.Run("delete then append same id", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindExpense,
			Append: []model.Transaction{Expense("e1", "siti", "10")},
		}))
		require.NoError(t, s.Apply(ctx, "siti", store.Batch{
			Kind:   model.KindExpense,
			Delete: []string{"e1"},
			Append: []model.Transaction{Expense("e1", "siti", "12")},
		}))

		txns, err := s.LoadTransactions(ctx, "siti", model.KindExpense)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(12)))
	})

	t.Run("invalid batch rejected", func(t *testing.T) {
		s := newStore(t)
		err := s.Apply(context.Background(), "siti", store.Batch{
			Kind:   model.KindExpense,
			Append: []model.Transaction{Income("t1", "siti", "5")},
		})
		require.Error(t, err)
	})
}

// Date is the fixed timestamp used by fixtures.
var Date = time.Date(2025, 3, 14, 8, 15, 0, 0, time.UTC)

// Income returns an income fixture paid in cash.
func Income(txnID, owner, amount string) model.Transaction {
	return model.Transaction{
		ID:       txnID,
		Date:     Date,
		Kind:     model.KindIncome,
		Category: "Penjualan Padi",
		Amount:   decimal.RequireFromString(amount),
		Method:   model.MethodCash,
		Memo:     "panen",
		Owner:    owner,
	}
}

// Expense returns an expense fixture bought on credit.
func Expense(txnID, owner, amount string) model.Transaction {
	return model.Transaction{
		ID:          txnID,
		Date:        Date,
		Kind:        model.KindExpense,
		Category:    "Pupuk",
		SubCategory: "Urea",
		Amount:      decimal.RequireFromString(amount),
		Method:      model.MethodPayable,
		Memo:        "pupuk musim tanam",
		Owner:       owner,
	}
}

// Pair returns a balanced two-line entry.
func Pair(entryID, txnID, debit, credit, amount string) []model.JournalLine {
	amt := decimal.RequireFromString(amount)
	return []model.JournalLine{
		{EntryID: entryID + "a", TransactionID: txnID, Date: Date, Account: debit, Debit: amt, Memo: "m"},
		{EntryID: entryID + "b", TransactionID: txnID, Date: Date, Account: credit, Credit: amt, Memo: "m"},
	}
}
