package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalLine is a single row in the general journal (one side of a
// double-entry pair).
type JournalLine struct {
	// EntryID is "YYYY-MM-NNNx" where x = a (debit) or b (credit).
	EntryID       string
	TransactionID string
	Date          time.Time
	Account       string
	Debit         decimal.Decimal // zero on the credit side
	Credit        decimal.Decimal // zero on the debit side
	Memo          string
}

// EntryGroup returns the base entry ID (without leg suffix).
// "2025-01-001a" -> "2025-01-001"
func (l JournalLine) EntryGroup() string {
	i := len(l.EntryID)
	for i > 0 && l.EntryID[i-1] >= 'a' && l.EntryID[i-1] <= 'z' {
		i--
	}
	return l.EntryID[:i]
}

// FilterLines returns the lines dated inside p, preserving order.
func FilterLines(lines []JournalLine, p Period) []JournalLine {
	var out []JournalLine
	for _, l := range lines {
		if p.Contains(l.Date) {
			out = append(out, l)
		}
	}
	return out
}
