package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bukutani/bukutani/internal/id"
	"github.com/bukutani/bukutani/internal/model"
)

// Rule names a journal invariant.
type Rule string

const (
	RuleBalanced         Rule = "balanced"
	RuleOneSided         Rule = "one-sided"
	RuleDistinctAccounts Rule = "distinct-accounts"
	RuleEntryID          Rule = "entry-id"
	RuleLegs             Rule = "legs"
	RulePrecision        Rule = "precision"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Rule        Rule
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.EntryID, e.Description)
}

var hundred = decimal.NewFromInt(100)

// Validate checks every entry group in lines. Groups are keyed by entry ID
// without the leg suffix; each must be exactly one "a" and one "b" leg,
// must balance and must post to two accounts. Every line must carry exactly one of debit or credit, a
// well-formed entry ID, and no more than two decimal places.
func Validate(lines []model.JournalLine) []ValidationError {
	var errs []ValidationError

	groups := make(map[string][]model.JournalLine)
	var groupOrder []string
	for _, line := range lines {
		g := line.EntryGroup()
		if _, seen := groups[g]; !seen {
			groupOrder = append(groupOrder, g)
		}
		groups[g] = append(groups[g], line)
	}

	for _, g := range groupOrder {
		totalDebit := decimal.Zero
		totalCredit := decimal.Zero
		accounts := make(map[string]bool)
		legs := make(map[string]int)
		for _, line := range groups[g] {
			totalDebit = totalDebit.Add(line.Debit)
			totalCredit = totalCredit.Add(line.Credit)
			accounts[line.Account] = true
			legs[line.EntryID]++
		}
		if len(groups[g]) != 2 || legs[id.LegID(g, id.LegDebit)] != 1 || legs[id.LegID(g, id.LegCredit)] != 1 {
			errs = append(errs, ValidationError{
				Rule:        RuleLegs,
				EntryID:     g,
				Description: fmt.Sprintf("entry has %d lines, want one %q and one %q leg", len(groups[g]), id.LegID(g, id.LegDebit), id.LegID(g, id.LegCredit)),
			})
		}
		if !totalDebit.Equal(totalCredit) {
			errs = append(errs, ValidationError{
				Rule:        RuleBalanced,
				EntryID:     g,
				Description: fmt.Sprintf("debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
			})
		}
		if len(accounts) < 2 {
			errs = append(errs, ValidationError{
				Rule:        RuleDistinctAccounts,
				EntryID:     g,
				Description: "entry posts to a single account",
			})
		}
	}

	for _, line := range lines {
		hasDebit := !line.Debit.IsZero()
		hasCredit := !line.Credit.IsZero()
		if hasDebit == hasCredit || line.Debit.IsNegative() || line.Credit.IsNegative() {
			errs = append(errs, ValidationError{
				Rule:        RuleOneSided,
				EntryID:     line.EntryID,
				Description: "line must have exactly one positive debit or credit",
			})
		}

		if _, _, _, err := id.Parse(line.EntryID); err != nil {
			errs = append(errs, ValidationError{
				Rule:        RuleEntryID,
				EntryID:     line.EntryID,
				Description: err.Error(),
			})
		}

		for _, amt := range []decimal.Decimal{line.Debit, line.Credit} {
			scaled := amt.Mul(hundred)
			if !scaled.Equal(scaled.Floor()) {
				errs = append(errs, ValidationError{
					Rule:        RulePrecision,
					EntryID:     line.EntryID,
					Description: fmt.Sprintf("amount %s has more than 2 decimal places", amt),
				})
			}
		}
	}

	return errs
}
