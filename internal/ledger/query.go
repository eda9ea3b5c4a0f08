package ledger

import (
	"context"
	"fmt"

	"github.com/bukutani/bukutani/internal/journal"
	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/report"
)

// Transactions returns the owner's transactions of kind dated inside p,
// in the order they were recorded.
func (s *Service) Transactions(ctx context.Context, owner string, kind model.Kind, p model.Period) ([]model.Transaction, error) {
	if err := model.ValidateOwner(owner); err != nil {
		return nil, err
	}
	lock := s.lockFor(owner)
	lock.RLock()
	defer lock.RUnlock()
	return s.transactions(ctx, owner, kind, p)
}

func (s *Service) transactions(ctx context.Context, owner string, kind model.Kind, p model.Period) ([]model.Transaction, error) {
	txns, err := s.store.LoadTransactions(ctx, owner, kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", kind, err)
	}
	var out []model.Transaction
	for _, t := range txns {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Journal returns the owner's journal lines dated inside p.
func (s *Service) Journal(ctx context.Context, owner string, p model.Period) ([]model.JournalLine, error) {
	if err := model.ValidateOwner(owner); err != nil {
		return nil, err
	}
	lock := s.lockFor(owner)
	lock.RLock()
	defer lock.RUnlock()
	return s.journal(ctx, owner, p)
}

func (s *Service) journal(ctx context.Context, owner string, p model.Period) ([]model.JournalLine, error) {
	lines, err := s.store.LoadJournal(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("loading journal: %w", err)
	}
	return model.FilterLines(lines, p), nil
}

// Ledger returns the per-account ledger over journal lines dated inside p.
func (s *Service) Ledger(ctx context.Context, owner string, p model.Period) (report.Ledger, error) {
	lines, err := s.Journal(ctx, owner, p)
	if err != nil {
		return nil, err
	}
	return report.BuildLedger(lines), nil
}

// Statement returns the income statement and balance sheet figures over
// journal lines dated inside p.
func (s *Service) Statement(ctx context.Context, owner string, p model.Period) (report.Statement, error) {
	lines, err := s.Journal(ctx, owner, p)
	if err != nil {
		return report.Statement{}, err
	}
	return report.BuildStatement(lines), nil
}

// Summary totals the owner's recorded income and expense transactions
// dated inside p.
func (s *Service) Summary(ctx context.Context, owner string, p model.Period) (report.Summary, error) {
	if err := model.ValidateOwner(owner); err != nil {
		return report.Summary{}, err
	}
	lock := s.lockFor(owner)
	lock.RLock()
	defer lock.RUnlock()

	incomes, err := s.transactions(ctx, owner, model.KindIncome, model.Period{})
	if err != nil {
		return report.Summary{}, err
	}
	expenses, err := s.transactions(ctx, owner, model.KindExpense, model.Period{})
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(incomes, expenses, p), nil
}

// Verify checks the owner's whole journal for structural problems.
func (s *Service) Verify(ctx context.Context, owner string) ([]journal.ValidationError, error) {
	lines, err := s.Journal(ctx, owner, model.Period{})
	if err != nil {
		return nil, err
	}
	return journal.Validate(lines), nil
}
