package accounts

import (
	"strings"

	"github.com/bukutani/bukutani/internal/model"
)

var controlAccounts = map[string]model.AccountType{
	model.AccountCash:       model.AccountTypeAsset,
	model.AccountBank:       model.AccountTypeAsset,
	model.AccountReceivable: model.AccountTypeAsset,
	model.AccountPayable:    model.AccountTypeLiability,
	model.AccountRevenue:    model.AccountTypeRevenue,
}

// IsControl reports whether name is one of the fixed, non-expense accounts.
func IsControl(name string) bool {
	_, ok := controlAccounts[name]
	return ok
}

// IsReserved reports whether name cannot be used as an expense
// sub-category: a fixed account, or anything IsRevenue would count as
// income.
func IsReserved(name string) bool {
	return IsControl(name) || IsRevenue(name)
}

// IsAsset reports whether name is Kas, Bank or Piutang Dagang.
func IsAsset(name string) bool {
	return controlAccounts[name] == model.AccountTypeAsset
}

// IsLiability reports whether name is Utang Dagang.
func IsLiability(name string) bool {
	return controlAccounts[name] == model.AccountTypeLiability
}

// IsRevenue matches any account whose name contains "Pendapatan", so
// sub-accounts such as "Pendapatan Lain" count as revenue too.
func IsRevenue(name string) bool {
	return strings.Contains(name, model.AccountRevenue)
}

// IsExpense reports whether name is an expense sub-category account, i.e.
// anything outside the fixed account set.
func IsExpense(name string) bool {
	return !IsControl(name)
}

// TypeOf classifies an account name.
func TypeOf(name string) model.AccountType {
	if t, ok := controlAccounts[name]; ok {
		return t
	}
	return model.AccountTypeExpense
}
