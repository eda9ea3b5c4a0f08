package accounts

// Category is an expense main category and its sub-categories. Each
// sub-category is an expense account in its own right.
type Category struct {
	Name          string   `yaml:"name"`
	SubCategories []string `yaml:"sub_categories"`
}

// DefaultExpenseCategories returns the built-in expense taxonomy for rice
// farming.
func DefaultExpenseCategories() []Category {
	return []Category{
		{Name: "Bibit", SubCategories: []string{"Intani", "Inpari", "Ciherang", "32"}},
		{Name: "Pupuk", SubCategories: []string{"Urea", "NPK", "Organik", "Ponska"}},
		{Name: "Pestisida", SubCategories: []string{"Debestan", "Ronsa", "Refaton", "Ema", "Plenum"}},
		{Name: "Alat Tani", SubCategories: []string{"Sabit", "Cangkul", "Karung"}},
		{Name: "Tenaga Kerja", SubCategories: []string{"Upah Harian", "Borongan"}},
		{Name: "Lainnya", SubCategories: []string{"Lain-lain"}},
	}
}

// DefaultIncomeSources returns the built-in income source labels.
func DefaultIncomeSources() []string {
	return []string{"Penjualan Padi", "Lain-lain"}
}
