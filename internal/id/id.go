// Package id generates transaction identifiers and journal entry IDs.
//
// Journal entries are numbered per owner per calendar month: "2025-01-007"
// is the seventh pair dated January 2025. The two lines of a pair carry a
// leg suffix, "a" for the debit line and "b" for the credit line.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTransactionID returns a random transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// Leg identifies one line of a journal pair.
type Leg int

const (
	LegDebit Leg = iota
	LegCredit
)

// Entry returns an entry ID like "2025-01-001" for the month of t.
func Entry(t time.Time, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", t.Year(), int(t.Month()), seq)
}

// LegID returns "2025-01-001a" for the debit leg and "...b" for the credit leg.
func LegID(entryID string, leg Leg) string {
	return entryID + string(rune('a'+int(leg)))
}

// Base strips the leg suffix from a leg ID.
func Base(legID string) string {
	return strings.TrimRight(legID, "abcdefghijklmnopqrstuvwxyz")
}

// Parse splits an entry or leg ID into year, month and sequence.
func Parse(legID string) (year, month, seq int, err error) {
	parts := strings.Split(Base(legID), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) < 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID %q", legID)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("invalid entry ID %q: bad field %q", legID, p)
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID %q: month %d", legID, nums[1])
	}
	if nums[2] == 0 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID %q: sequence starts at 1", legID)
	}
	return nums[0], nums[1], nums[2], nil
}

// NextSeq returns the next free sequence number for the month of t, given
// the leg IDs already in the journal. Unparseable IDs are skipped.
func NextSeq(legIDs []string, t time.Time) int {
	maxSeq := 0
	for _, l := range legIDs {
		y, m, seq, err := Parse(l)
		if err != nil || y != t.Year() || m != int(t.Month()) {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
