package accounts

import (
	"fmt"

	"github.com/bukutani/bukutani/internal/model"
)

// Taxonomy provides lookup over the configured income sources and expense
// categories.
type Taxonomy struct {
	sources    []string
	categories []Category
	bySub      map[string]string // sub-category -> main category
}

// NewTaxonomy builds a Taxonomy. It fails when a sub-category collides with
// a control account name or appears under two categories, since either
// would make the expense account ambiguous.
func NewTaxonomy(sources []string, categories []Category) (*Taxonomy, error) {
	bySub := make(map[string]string)
	for _, c := range categories {
		for _, sub := range c.SubCategories {
			if IsReserved(sub) {
				return nil, fmt.Errorf("sub-category %q of %q collides with a fixed or revenue account", sub, c.Name)
			}
			if prev, ok := bySub[sub]; ok {
				return nil, fmt.Errorf("sub-category %q listed under both %q and %q", sub, prev, c.Name)
			}
			bySub[sub] = c.Name
		}
	}
	return &Taxonomy{sources: sources, categories: categories, bySub: bySub}, nil
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultIncomeSources(), DefaultExpenseCategories())
	if err != nil {
		panic(err)
	}
	return t
}

// IncomeSources returns the configured income source labels.
func (t *Taxonomy) IncomeSources() []string {
	return t.sources
}

// Categories returns all expense categories.
func (t *Taxonomy) Categories() []Category {
	return t.categories
}

// CategoryOf returns the main category a sub-category belongs to.
func (t *Taxonomy) CategoryOf(subCategory string) (string, bool) {
	c, ok := t.bySub[subCategory]
	return c, ok
}

// Chart returns the chart of accounts implied by the taxonomy: the fixed
// accounts followed by one expense account per sub-category.
func (t *Taxonomy) Chart() []model.Account {
	chart := []model.Account{
		{Name: model.AccountCash, Type: model.AccountTypeAsset},
		{Name: model.AccountBank, Type: model.AccountTypeAsset},
		{Name: model.AccountReceivable, Type: model.AccountTypeAsset},
		{Name: model.AccountPayable, Type: model.AccountTypeLiability},
		{Name: model.AccountRevenue, Type: model.AccountTypeRevenue},
	}
	for _, c := range t.categories {
		for _, sub := range c.SubCategories {
			chart = append(chart, model.Account{Name: sub, Type: model.AccountTypeExpense, Category: c.Name})
		}
	}
	return chart
}
