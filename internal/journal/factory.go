package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/id"
	"github.com/bukutani/bukutani/internal/model"
)

var (
	// ErrNonPositiveAmount is returned when a pair is built for an amount <= 0.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrSameAccount is returned when debit and credit name the same account.
	ErrSameAccount = errors.New("debit and credit accounts must differ")
)

// PairParams holds the inputs for one balanced journal pair.
type PairParams struct {
	Date          time.Time
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	Memo          string

	// EntryID and TransactionID are stamped onto both lines when set.
	EntryID       string
	TransactionID string
}

// NewPair builds the debit and credit lines for one double entry. The
// debit line comes first.
func NewPair(p PairParams) (model.JournalLine, model.JournalLine, error) {
	if !p.Amount.IsPositive() {
		return model.JournalLine{}, model.JournalLine{}, fmt.Errorf("%w: got %s", ErrNonPositiveAmount, p.Amount)
	}
	if p.DebitAccount == "" || p.CreditAccount == "" {
		return model.JournalLine{}, model.JournalLine{}, errors.New("debit and credit accounts are required")
	}
	if p.DebitAccount == p.CreditAccount {
		return model.JournalLine{}, model.JournalLine{}, fmt.Errorf("%w: %q", ErrSameAccount, p.DebitAccount)
	}

	debit := model.JournalLine{
		TransactionID: p.TransactionID,
		Date:          p.Date,
		Account:       p.DebitAccount,
		Debit:         p.Amount,
		Memo:          p.Memo,
	}
	credit := model.JournalLine{
		TransactionID: p.TransactionID,
		Date:          p.Date,
		Account:       p.CreditAccount,
		Credit:        p.Amount,
		Memo:          p.Memo,
	}
	if p.EntryID != "" {
		debit.EntryID = id.LegID(p.EntryID, id.LegDebit)
		credit.EntryID = id.LegID(p.EntryID, id.LegCredit)
	}
	return debit, credit, nil
}
