package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Fixed account names. Expense accounts are named after the expense
// sub-category they record, so they are not listed here.
const (
	AccountCash       = "Kas"
	AccountBank       = "Bank"
	AccountReceivable = "Piutang Dagang"
	AccountPayable    = "Utang Dagang"
	AccountRevenue    = "Pendapatan"
)

// Account is one entry of the derived chart of accounts.
type Account struct {
	Name     string
	Type     AccountType
	Category string // expense main category; empty for control accounts
}
