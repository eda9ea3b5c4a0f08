package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bukutani/bukutani/internal/accounts"
	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/store"
)

const owner = "siti"

var (
	recordedAt = time.Date(2025, 3, 14, 8, 15, 42, 0, time.UTC)
	reversedAt = time.Date(2025, 4, 2, 17, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, opts ...Option) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	opts = append([]Option{WithClock(func() time.Time { return reversedAt })}, opts...)
	return NewService(st, opts...), st
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func income(amount string, method model.Method) model.Transaction {
	return model.Transaction{
		Date:     recordedAt,
		Kind:     model.KindIncome,
		Category: "Penjualan Padi",
		Amount:   dec(amount),
		Method:   method,
		Memo:     "panen musim hujan",
		Owner:    owner,
	}
}

func expense(sub, amount string, method model.Method) model.Transaction {
	return model.Transaction{
		Date:        recordedAt,
		Kind:        model.KindExpense,
		Category:    "Pupuk",
		SubCategory: sub,
		Amount:      dec(amount),
		Method:      method,
		Memo:        "pupuk musim tanam",
		Owner:       owner,
	}
}

func assertLine(t *testing.T, l model.JournalLine, account, debit, credit string) {
	t.Helper()
	assert.Equal(t, account, l.Account)
	assert.True(t, l.Debit.Equal(dec(debit)), "debit: want %s got %s", debit, l.Debit)
	assert.True(t, l.Credit.Equal(dec(credit)), "credit: want %s got %s", credit, l.Credit)
}

func TestRecord_IncomeCash(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	txn, err := svc.Record(ctx, income("100000", model.MethodCash))
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)

	lines, err := svc.Journal(ctx, owner, model.Period{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assertLine(t, lines[0], "Kas", "100000", "0")
	assertLine(t, lines[1], "Pendapatan", "0", "100000")
	assert.Equal(t, "2025-03-001a", lines[0].EntryID)
	assert.Equal(t, "2025-03-001b", lines[1].EntryID)
	assert.Equal(t, "Penjualan Padi", lines[0].Memo, "income memo is the source")
	assert.Equal(t, txn.ID, lines[0].TransactionID)
	assert.True(t, lines[0].Date.Equal(recordedAt))

	txns, err := svc.Transactions(ctx, owner, model.KindIncome, model.Period{})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, txn.ID, txns[0].ID)
}

func TestRecord_ReceivablePayment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, income("50000", model.MethodReceivablePayment))
	require.NoError(t, err)

	lines, err := svc.Journal(ctx, owner, model.Period{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assertLine(t, lines[0], "Kas", "50000", "0")
	assertLine(t, lines[1], "Piutang Dagang", "0", "50000")
}

func TestRecordAndReverse_ExpensePayable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	txn, err := svc.Record(ctx, expense("Urea", "75000", model.MethodPayable))
	require.NoError(t, err)

	lines, err := svc.Journal(ctx, owner, model.Period{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assertLine(t, lines[0], "Urea", "75000", "0")
	assertLine(t, lines[1], "Utang Dagang", "0", "75000")
	assert.Equal(t, "pupuk musim tanam", lines[0].Memo, "expense memo is the memo text")

	ok, err := svc.Reverse(ctx, model.KindExpense, txn.ID, owner)
	require.NoError(t, err)
	assert.True(t, ok)

	lines, err = svc.Journal(ctx, owner, model.Period{})
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assertLine(t, lines[2], "Utang Dagang", "75000", "0")
	assertLine(t, lines[3], "Urea", "0", "75000")
	assert.Equal(t, "Pembatalan: pupuk musim tanam", lines[2].Memo)
	assert.True(t, lines[2].Date.Equal(reversedAt), "reversal is dated now")
	assert.Equal(t, "2025-04-001a", lines[2].EntryID)
	assert.Equal(t, txn.ID, lines[2].TransactionID)

	txns, err := svc.Transactions(ctx, owner, model.KindExpense, model.Period{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestStatement_Empty(t *testing.T) {
	svc, _ := newTestService(t)
	s, err := svc.Statement(context.Background(), owner, model.Period{})
	require.NoError(t, err)
	for name, v := range map[string]decimal.Decimal{
		"income": s.Income, "expense": s.Expense, "profit_loss": s.ProfitLoss,
		"assets": s.Assets, "liabilities": s.Liabilities, "equity": s.Equity,
	} {
		assert.True(t, v.IsZero(), "%s should be zero", name)
	}
}

func TestRecord_BalanceInvariant(t *testing.T) {
	for _, kind := range []model.Kind{model.KindIncome, model.KindExpense} {
		for _, method := range model.Methods(kind) {
			t.Run(fmt.Sprintf("%s/%s", kind, method), func(t *testing.T) {
				svc, _ := newTestService(t)
				ctx := context.Background()
				txn := income("1234.56", method)
				if kind == model.KindExpense {
					txn = expense("Urea", "1234.56", method)
				}
				_, err := svc.Record(ctx, txn)
				require.NoError(t, err)

				lines, err := svc.Journal(ctx, owner, model.Period{})
				require.NoError(t, err)
				require.Len(t, lines, 2)
				assert.True(t, lines[0].Debit.Equal(txn.Amount))
				assert.True(t, lines[1].Credit.Equal(txn.Amount))
				assert.True(t, lines[0].Credit.IsZero())
				assert.True(t, lines[1].Debit.IsZero())
				assert.NotEqual(t, lines[0].Account, lines[1].Account)

				verrs, err := svc.Verify(ctx, owner)
				require.NoError(t, err)
				assert.Empty(t, verrs)
			})
		}
	}
}

func TestReverse_CancelsBalances(t *testing.T) {
	for _, kind := range []model.Kind{model.KindIncome, model.KindExpense} {
		for _, method := range model.Methods(kind) {
			t.Run(fmt.Sprintf("%s/%s", kind, method), func(t *testing.T) {
				svc, _ := newTestService(t)
				ctx := context.Background()

				_, err := svc.Record(ctx, expense("NPK", "20000", model.MethodCash))
				require.NoError(t, err)
				before, err := svc.Ledger(ctx, owner, model.Period{})
				require.NoError(t, err)

				txn := income("5000", method)
				if kind == model.KindExpense {
					txn = expense("Urea", "5000", method)
				}
				recorded, err := svc.Record(ctx, txn)
				require.NoError(t, err)
				ok, err := svc.Reverse(ctx, kind, recorded.ID, owner)
				require.NoError(t, err)
				require.True(t, ok)

				after, err := svc.Ledger(ctx, owner, model.Period{})
				require.NoError(t, err)
				beforeBal := before.Balances()
				for account, bal := range after.Balances() {
					assert.True(t, bal.Equal(beforeBal[account]), "%s: before %s after %s", account, beforeBal[account], bal)
				}

				verrs, err := svc.Verify(ctx, owner)
				require.NoError(t, err)
				assert.Empty(t, verrs)
			})
		}
	}
}

func TestReverse_Missing(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	_, err := svc.Record(ctx, income("100000", model.MethodCash))
	require.NoError(t, err)

	linesBefore, err := st.LoadJournal(ctx, owner)
	require.NoError(t, err)

	ok, err := svc.Reverse(ctx, model.KindIncome, "no-such-id", owner)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Reverse(ctx, model.KindExpense, "no-such-id", "budi")
	require.NoError(t, err)
	assert.False(t, ok)

	linesAfter, err := st.LoadJournal(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, linesBefore, linesAfter)
	txns, err := st.LoadTransactions(ctx, owner, model.KindIncome)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestReverse_WrongKind(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	txn, err := svc.Record(ctx, income("100", model.MethodCash))
	require.NoError(t, err)

	ok, err := svc.Reverse(ctx, model.KindExpense, txn.ID, owner)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReverse_OriginalDate(t *testing.T) {
	svc, _ := newTestService(t, WithReversalDate(ReversalDateOriginal))
	ctx := context.Background()
	txn, err := svc.Record(ctx, income("100", model.MethodTransfer))
	require.NoError(t, err)

	ok, err := svc.Reverse(ctx, model.KindIncome, txn.ID, owner)
	require.NoError(t, err)
	require.True(t, ok)

	lines, err := svc.Journal(ctx, owner, model.Period{})
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.True(t, lines[2].Date.Equal(recordedAt))
	assert.Equal(t, "2025-03-002a", lines[2].EntryID)
	assertLine(t, lines[2], "Pendapatan", "100", "0")
	assertLine(t, lines[3], "Bank", "0", "100")
}

func TestRecord_EntrySequencePerMonth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		txn := income("10", model.MethodCash)
		txn.Date = d
		_, err := svc.Record(ctx, txn)
		require.NoError(t, err)
	}

	lines, err := svc.Journal(ctx, owner, model.Period{})
	require.NoError(t, err)
	var groups []string
	for i := 0; i < len(lines); i += 2 {
		groups = append(groups, lines[i].EntryGroup())
	}
	assert.Equal(t, []string{"2025-03-001", "2025-03-002", "2025-04-001", "2025-03-003"}, groups)
}

func TestRecord_Normalizes(t *testing.T) {
	svc, _ := newTestService(t, WithTaxonomy(accounts.DefaultTaxonomy()))
	ctx := context.Background()

	txn := expense(" Urea ", "10", model.MethodCash)
	txn.Category = ""
	txn.Date = time.Date(2025, 3, 14, 15, 4, 5, 999, time.FixedZone("WIB", 7*3600))
	got, err := svc.Record(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, "Urea", got.SubCategory)
	assert.Equal(t, "Pupuk", got.Category)
	assert.True(t, got.Date.Equal(time.Date(2025, 3, 14, 8, 4, 5, 0, time.UTC)), "got %s", got.Date)
	assert.Equal(t, time.UTC, got.Date.Location())

	inc := income("10", model.MethodCash)
	inc.Date = time.Time{}
	inc.Kind = "income"
	got, err = svc.Record(ctx, inc)
	require.NoError(t, err)
	assert.Equal(t, model.KindIncome, got.Kind)
	assert.True(t, got.Date.Equal(reversedAt), "zero date means now")
}

func TestRecord_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Transaction)
		kind   model.Kind
	}{
		{"zero amount", func(t *model.Transaction) { t.Amount = decimal.Zero }, model.KindIncome},
		{"negative amount", func(t *model.Transaction) { t.Amount = dec("-5") }, model.KindExpense},
		{"three decimals", func(t *model.Transaction) { t.Amount = dec("1.005") }, model.KindIncome},
		{"income without source", func(t *model.Transaction) { t.Category = " " }, model.KindIncome},
		{"expense without sub-category", func(t *model.Transaction) { t.SubCategory = "" }, model.KindExpense},
		{"expense into fixed account", func(t *model.Transaction) { t.SubCategory = "Kas" }, model.KindExpense},
		{"expense into revenue account", func(t *model.Transaction) { t.SubCategory = "Biaya Pendapatan" }, model.KindExpense},
		{"income paid as payable", func(t *model.Transaction) { t.Method = model.MethodPayable }, model.KindIncome},
		{"expense as receivable", func(t *model.Transaction) { t.Method = model.MethodReceivable }, model.KindExpense},
		{"unknown method", func(t *model.Transaction) { t.Method = "Barter" }, model.KindIncome},
		{"unknown kind", func(t *model.Transaction) { t.Kind = "hibah" }, model.KindIncome},
		{"no owner", func(t *model.Transaction) { t.Owner = "" }, model.KindIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := newTestService(t)
			txn := income("100", model.MethodCash)
			if tt.kind == model.KindExpense {
				txn = expense("Urea", "100", model.MethodCash)
			}
			tt.mutate(&txn)

			_, err := svc.Record(context.Background(), txn)
			require.ErrorIs(t, err, ErrInvalidTransaction)

			lines, err := st.LoadJournal(context.Background(), owner)
			require.NoError(t, err)
			assert.Empty(t, lines, "nothing may be written")
		})
	}
}

func TestRecord_DuplicateID(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	txn := income("100", model.MethodCash)
	txn.ID = "fixed"
	_, err := svc.Record(ctx, txn)
	require.NoError(t, err)

	_, err = svc.Record(ctx, txn)
	require.ErrorIs(t, err, ErrInvalidTransaction)
	require.ErrorIs(t, err, store.ErrDuplicateTransaction)

	txns, err := st.LoadTransactions(ctx, owner, model.KindIncome)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	lines, err := st.LoadJournal(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, lines, 2, "a rejected duplicate posts nothing")

	other := txn
	other.Owner = "budi"
	_, err = svc.Record(ctx, other)
	require.NoError(t, err, "IDs are only unique within one owner")
}

func TestRecord_OwnersAreSeparate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, income("100", model.MethodCash))
	require.NoError(t, err)
	other := income("7", model.MethodCash)
	other.Owner = "budi"
	_, err = svc.Record(ctx, other)
	require.NoError(t, err)

	budi, err := svc.Journal(ctx, "budi", model.Period{})
	require.NoError(t, err)
	require.Len(t, budi, 2)
	assert.Equal(t, "2025-03-001a", budi[0].EntryID)

	s, err := svc.Statement(ctx, "budi", model.Period{})
	require.NoError(t, err)
	assert.Equal(t, "7", s.Income.String())
}

func TestStatement_AdditiveOverPeriods(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	days := []int{1, 5, 9, 12, 20, 28}
	for i, d := range days {
		date := time.Date(2025, 3, d, 9, 0, 0, 0, time.UTC)
		txn := income("1000", model.MethodReceivable)
		if i%2 == 1 {
			txn = expense("Urea", "300", model.MethodTransfer)
		}
		txn.Date = date
		_, err := svc.Record(ctx, txn)
		require.NoError(t, err)
	}

	whole, err := svc.Statement(ctx, owner, model.Period{})
	require.NoError(t, err)
	cut := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	first, err := svc.Statement(ctx, owner, model.Period{To: cut})
	require.NoError(t, err)
	second, err := svc.Statement(ctx, owner, model.Period{From: cut})
	require.NoError(t, err)

	assert.True(t, whole.Equal(first.Add(second)))
	assert.Equal(t, "3000", whole.Income.String())
	assert.Equal(t, "900", whole.Expense.String())
	assert.Equal(t, "2000", first.Income.String())
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, income("100000", model.MethodCash))
	require.NoError(t, err)
	exp, err := svc.Record(ctx, expense("Urea", "30000", model.MethodCash))
	require.NoError(t, err)
	_, err = svc.Record(ctx, expense("NPK", "5000", model.MethodPayable))
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, owner, model.Period{})
	require.NoError(t, err)
	assert.Equal(t, "100000", sum.Income.String())
	assert.Equal(t, "35000", sum.Expense.String())

	_, err = svc.Reverse(ctx, model.KindExpense, exp.ID, owner)
	require.NoError(t, err)
	sum, err = svc.Summary(ctx, owner, model.Period{})
	require.NoError(t, err)
	assert.Equal(t, "5000", sum.Expense.String(), "reversed transactions drop out")
}

func TestParseReversalDate(t *testing.T) {
	got, err := ParseReversalDate("")
	require.NoError(t, err)
	assert.Equal(t, ReversalDateNow, got)

	got, err = ParseReversalDate("Original")
	require.NoError(t, err)
	assert.Equal(t, ReversalDateOriginal, got)

	_, err = ParseReversalDate("yesterday")
	assert.Error(t, err)
}

func TestConcurrentRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txn := income("10", model.MethodCash)
			if i%2 == 0 {
				txn = expense("Urea", "4", model.MethodCash)
			}
			_, err := svc.Record(ctx, txn)
			errs <- err
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Statement(ctx, owner, model.Period{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	lines, err := svc.Journal(ctx, owner, model.Period{})
	require.NoError(t, err)
	assert.Len(t, lines, 2*n)

	verrs, err := svc.Verify(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, verrs, "entry IDs must not collide")

	seen := make(map[string]bool)
	for _, l := range lines {
		assert.False(t, seen[l.EntryID], "duplicate %s", l.EntryID)
		seen[l.EntryID] = true
	}
}

type failingStore struct {
	*store.Memory
	err error
}

func (f failingStore) Apply(context.Context, string, store.Batch) error {
	return f.err
}

func TestRecord_StoreError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewService(failingStore{Memory: store.NewMemory(), err: boom})

	_, err := svc.Record(context.Background(), income("100", model.MethodCash))
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidTransaction)
}
