package accounts

import (
	"errors"
	"fmt"

	"github.com/bukutani/bukutani/internal/model"
)

// ErrInvalidMethod is returned when a payment method does not apply to a
// transaction kind.
var ErrInvalidMethod = errors.New("invalid payment method")

// slot names the account one side of a rule posts to. slotExpense
// resolves to the transaction's own expense sub-category.
type slot string

const slotExpense slot = ""

func (s slot) resolve(subCategory string) string {
	if s == slotExpense {
		return subCategory
	}
	return string(s)
}

type rule struct {
	debit  slot
	credit slot
}

type ruleKey struct {
	kind   model.Kind
	method model.Method
}

var forwardRules = map[ruleKey]rule{
	{model.KindIncome, model.MethodCash}:              {debit: model.AccountCash, credit: model.AccountRevenue},
	{model.KindIncome, model.MethodTransfer}:          {debit: model.AccountBank, credit: model.AccountRevenue},
	{model.KindIncome, model.MethodReceivable}:        {debit: model.AccountReceivable, credit: model.AccountRevenue},
	{model.KindIncome, model.MethodReceivablePayment}: {debit: model.AccountCash, credit: model.AccountReceivable},

	{model.KindExpense, model.MethodCash}:           {debit: slotExpense, credit: model.AccountCash},
	{model.KindExpense, model.MethodTransfer}:       {debit: slotExpense, credit: model.AccountBank},
	{model.KindExpense, model.MethodPayable}:        {debit: slotExpense, credit: model.AccountPayable},
	{model.KindExpense, model.MethodPayablePayment}: {debit: model.AccountPayable, credit: model.AccountCash},
}

// Reversal rules are listed per method rather than derived by swapping
// the forward table. Income settles against revenue or the receivable,
// expense against the payment account or the payable.
var reversalRules = map[ruleKey]rule{
	{model.KindIncome, model.MethodReceivablePayment}: {debit: model.AccountReceivable, credit: model.AccountCash},
	{model.KindIncome, model.MethodCash}:              {debit: model.AccountRevenue, credit: model.AccountCash},
	{model.KindIncome, model.MethodTransfer}:          {debit: model.AccountRevenue, credit: model.AccountBank},
	{model.KindIncome, model.MethodReceivable}:        {debit: model.AccountRevenue, credit: model.AccountReceivable},

	{model.KindExpense, model.MethodPayablePayment}: {debit: model.AccountCash, credit: model.AccountPayable},
	{model.KindExpense, model.MethodCash}:           {debit: model.AccountCash, credit: slotExpense},
	{model.KindExpense, model.MethodTransfer}:       {debit: model.AccountBank, credit: slotExpense},
	{model.KindExpense, model.MethodPayable}:        {debit: model.AccountPayable, credit: slotExpense},
}

// Mapping is the debit/credit account pair a transaction posts to.
type Mapping struct {
	Debit  string
	Credit string
}

// Map returns the accounts a transaction of kind paid by method posts to.
// subCategory names the expense account and is ignored for income.
func Map(kind model.Kind, method model.Method, subCategory string) (Mapping, error) {
	return lookup(forwardRules, kind, method, subCategory)
}

// MapReversal returns the accounts that cancel a transaction originally
// recorded with kind and method.
func MapReversal(kind model.Kind, method model.Method, subCategory string) (Mapping, error) {
	return lookup(reversalRules, kind, method, subCategory)
}

// ValidMethod reports whether method applies to kind.
func ValidMethod(kind model.Kind, method model.Method) bool {
	_, ok := forwardRules[ruleKey{kind, method}]
	return ok
}

func lookup(rules map[ruleKey]rule, kind model.Kind, method model.Method, subCategory string) (Mapping, error) {
	r, ok := rules[ruleKey{kind, method}]
	if !ok {
		return Mapping{}, fmt.Errorf("%w: %q for %s", ErrInvalidMethod, method, kind)
	}
	return Mapping{
		Debit:  r.debit.resolve(subCategory),
		Credit: r.credit.resolve(subCategory),
	}, nil
}
