package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/model"
)

// Summary totals recorded transactions rather than journal lines, so a
// reversed transaction simply drops out.
type Summary struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Net        decimal.Decimal
	ByCategory []CategoryTotal
}

// CategoryTotal is the amount recorded under one income source or
// expense category.
type CategoryTotal struct {
	Kind     model.Kind
	Category string
	Amount   decimal.Decimal
	Count    int
}

// Summarize totals the transactions dated inside p. Category totals are
// sorted by kind (income first) and then by amount, largest first.
func Summarize(incomes, expenses []model.Transaction, p model.Period) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero}
	totals := make(map[model.Kind]map[string]*CategoryTotal)

	add := func(kind model.Kind, t model.Transaction) decimal.Decimal {
		byCat, ok := totals[kind]
		if !ok {
			byCat = make(map[string]*CategoryTotal)
			totals[kind] = byCat
		}
		ct, ok := byCat[t.Category]
		if !ok {
			ct = &CategoryTotal{Kind: kind, Category: t.Category, Amount: decimal.Zero}
			byCat[t.Category] = ct
		}
		ct.Amount = ct.Amount.Add(t.Amount)
		ct.Count++
		return t.Amount
	}

	for _, t := range incomes {
		if p.Contains(t.Date) {
			s.Income = s.Income.Add(add(model.KindIncome, t))
		}
	}
	for _, t := range expenses {
		if p.Contains(t.Date) {
			s.Expense = s.Expense.Add(add(model.KindExpense, t))
		}
	}
	s.Net = s.Income.Sub(s.Expense)

	for _, kind := range []model.Kind{model.KindIncome, model.KindExpense} {
		var group []CategoryTotal
		for _, ct := range totals[kind] {
			group = append(group, *ct)
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].Amount.Equal(group[j].Amount) {
				return group[i].Amount.GreaterThan(group[j].Amount)
			}
			return group[i].Category < group[j].Category
		})
		s.ByCategory = append(s.ByCategory, group...)
	}
	return s
}
