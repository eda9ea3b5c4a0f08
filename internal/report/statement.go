package report

import (
	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/accounts"
	"github.com/bukutani/bukutani/internal/model"
)

// Statement holds the income statement and balance sheet figures for a
// set of journal lines.
type Statement struct {
	Income      decimal.Decimal
	Expense     decimal.Decimal
	ProfitLoss  decimal.Decimal
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Equity      decimal.Decimal
}

// BuildStatement computes the statement over lines. Income is credits to
// any Pendapatan account, expense is debits to any account outside the
// fixed set, and equity equals profit or loss. No lines yields all zeros.
func BuildStatement(lines []model.JournalLine) Statement {
	s := Statement{
		Income:      decimal.Zero,
		Expense:     decimal.Zero,
		Assets:      decimal.Zero,
		Liabilities: decimal.Zero,
	}
	for _, l := range lines {
		if accounts.IsRevenue(l.Account) {
			s.Income = s.Income.Add(l.Credit)
		}
		if accounts.IsExpense(l.Account) {
			s.Expense = s.Expense.Add(l.Debit)
		}
		if accounts.IsAsset(l.Account) {
			s.Assets = s.Assets.Add(l.Debit).Sub(l.Credit)
		}
		if accounts.IsLiability(l.Account) {
			s.Liabilities = s.Liabilities.Add(l.Credit).Sub(l.Debit)
		}
	}
	s.ProfitLoss = s.Income.Sub(s.Expense)
	s.Equity = s.ProfitLoss
	return s
}

// Add returns the field-wise sum of two statements. Statements over
// adjacent periods add up to the statement over their union.
func (s Statement) Add(o Statement) Statement {
	return Statement{
		Income:      s.Income.Add(o.Income),
		Expense:     s.Expense.Add(o.Expense),
		ProfitLoss:  s.ProfitLoss.Add(o.ProfitLoss),
		Assets:      s.Assets.Add(o.Assets),
		Liabilities: s.Liabilities.Add(o.Liabilities),
		Equity:      s.Equity.Add(o.Equity),
	}
}

// Equal reports whether every figure matches.
func (s Statement) Equal(o Statement) bool {
	return s.Income.Equal(o.Income) &&
		s.Expense.Equal(o.Expense) &&
		s.ProfitLoss.Equal(o.ProfitLoss) &&
		s.Assets.Equal(o.Assets) &&
		s.Liabilities.Equal(o.Liabilities) &&
		s.Equity.Equal(o.Equity)
}
