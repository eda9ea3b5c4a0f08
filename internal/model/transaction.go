package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes income from expense transactions. The values double
// as the names of the collections they are stored in.
type Kind string

const (
	KindIncome  Kind = "pemasukan"
	KindExpense Kind = "pengeluaran"
)

// CollectionJournal is the name of the journal line collection.
const CollectionJournal = "jurnal"

// ParseKind accepts the stored collection name or the English label.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pemasukan", "income":
		return KindIncome, nil
	case "pengeluaran", "expense":
		return KindExpense, nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// Method is how a transaction was paid or received.
type Method string

const (
	MethodCash              Method = "Tunai"
	MethodTransfer          Method = "Transfer"
	MethodReceivable        Method = "Piutang"
	MethodReceivablePayment Method = "Pelunasan Piutang"
	MethodPayable           Method = "Utang"
	MethodPayablePayment    Method = "Pelunasan Utang"
)

// Methods returns the payment methods applicable to kind, in display order.
func Methods(kind Kind) []Method {
	switch kind {
	case KindIncome:
		return []Method{MethodCash, MethodTransfer, MethodReceivable, MethodReceivablePayment}
	case KindExpense:
		return []Method{MethodCash, MethodTransfer, MethodPayable, MethodPayablePayment}
	}
	return nil
}

// ParseMethod resolves a stored method name or an English alias such as
// "cash" or "receivable-payment".
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	switch key {
	case "tunai", "cash":
		return MethodCash, nil
	case "transfer":
		return MethodTransfer, nil
	case "piutang", "receivable":
		return MethodReceivable, nil
	case "pelunasan-piutang", "receivable-payment":
		return MethodReceivablePayment, nil
	case "utang", "payable":
		return MethodPayable, nil
	case "pelunasan-utang", "payable-payment":
		return MethodPayablePayment, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Transaction is a recorded income or expense.
type Transaction struct {
	ID          string
	Date        time.Time
	Kind        Kind
	Category    string // income source, or expense main category
	SubCategory string // expense only; names the expense account
	Amount      decimal.Decimal
	Method      Method
	Memo        string
	Owner       string
}

// ErrInvalidOwner is returned for owner identifiers that cannot partition
// a data store.
var ErrInvalidOwner = errors.New("invalid owner")

// ValidateOwner checks that owner is non-empty and safe to use as a path
// segment or key.
func ValidateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidOwner)
	}
	if owner == "." || owner == ".." || strings.ContainsAny(owner, `/\`) || strings.ContainsRune(owner, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidOwner, owner)
	}
	return nil
}

// Period is a half-open time range [From, To). A zero bound is unbounded.
type Period struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}
