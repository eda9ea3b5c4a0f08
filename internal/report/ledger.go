// Package report derives the per-account ledger, the income statement and
// balance sheet figures, and transaction summaries from recorded data.
// Everything here is a pure function of its input.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/model"
)

// Posting is one journal line as it appears in an account's ledger.
type Posting struct {
	Date    time.Time
	EntryID string
	Memo    string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal // cumulative debit - credit up to this posting
}

// AccountLedger is the chronological posting history of one account.
type AccountLedger struct {
	Account  string
	Postings []Posting
}

// Balance returns the closing balance, or zero for an empty ledger.
func (a AccountLedger) Balance() decimal.Decimal {
	if len(a.Postings) == 0 {
		return decimal.Zero
	}
	return a.Postings[len(a.Postings)-1].Balance
}

// Ledger is a set of account ledgers in the order accounts first appear
// in the journal.
type Ledger []AccountLedger

// Find returns the ledger for account.
func (l Ledger) Find(account string) (AccountLedger, bool) {
	for _, a := range l {
		if a.Account == account {
			return a, true
		}
	}
	return AccountLedger{}, false
}

// Balances maps each account to its closing balance.
func (l Ledger) Balances() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(l))
	for _, a := range l {
		out[a.Account] = a.Balance()
	}
	return out
}

// BuildLedger groups lines by account. Postings within an account are
// sorted by date; lines with equal dates keep their journal order.
func BuildLedger(lines []model.JournalLine) Ledger {
	index := make(map[string]int)
	var out Ledger
	for _, line := range lines {
		i, ok := index[line.Account]
		if !ok {
			i = len(out)
			index[line.Account] = i
			out = append(out, AccountLedger{Account: line.Account})
		}
		out[i].Postings = append(out[i].Postings, Posting{
			Date:    line.Date,
			EntryID: line.EntryID,
			Memo:    line.Memo,
			Debit:   line.Debit,
			Credit:  line.Credit,
		})
	}

	for i := range out {
		postings := out[i].Postings
		sort.SliceStable(postings, func(a, b int) bool {
			return postings[a].Date.Before(postings[b].Date)
		})
		running := decimal.Zero
		for j := range postings {
			running = running.Add(postings[j].Debit).Sub(postings[j].Credit)
			postings[j].Balance = running
		}
	}
	return out
}
