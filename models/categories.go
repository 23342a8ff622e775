package models

// Category kinds as used in routes and in AccountRecord lists.
const (
	KindIncome     = "income"
	KindAdjustment = "adjustment"
	KindDeduction  = "deduction"
)

// Category is one selectable document category with its display label.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Catalogs are fixed and ordered; selection order in the record follows the
// user's clicks, not catalog order.
var (
	IncomeCategories = []Category{
		{Key: "W-2 Forms", Label: "Employment Income"},
		{Key: "1099-NEC", Label: "Contract Work"},
		{Key: "1099-INT", Label: "Interest Income"},
		{Key: "1099-DIV", Label: "Dividend Income"},
		{Key: "1099-R", Label: "Retirement Distributions"},
		{Key: "SSA-1099", Label: "Social Security Benefits"},
		{Key: "1099-G", Label: "Unemployment Compensation"},
		{Key: "Self-Employment Records", Label: "Business Income"},
		{Key: "Rental Records", Label: "Rental Income"},
		{Key: "Other Income", Label: "Miscellaneous Income"},
	}

	AdjustmentCategories = []Category{
		{Key: "1098-E", Label: "Student Loan Interest"},
		{Key: "Educator Expenses", Label: "Classroom Supplies"},
		{Key: "5498-SA", Label: "HSA Contributions"},
		{Key: "IRA Contributions", Label: "Traditional IRA"},
		{Key: "Alimony Paid", Label: "Divorce Agreement"},
	}

	DeductionCategories = []Category{
		{Key: "1098", Label: "Mortgage Interest"},
		{Key: "Property Taxes", Label: "Real Estate"},
		{Key: "Charitable Donations", Label: "Cash and Non-Cash"},
		{Key: "Medical Expenses", Label: "Out of Pocket"},
		{Key: "Childcare Expenses", Label: "Provider Statements"},
		{Key: "1098-T", Label: "Education Expenses"},
		{Key: "Energy Improvements", Label: "Residential Credits"},
	}
)

// Catalog returns the catalog for a kind, or nil for an unknown kind.
func Catalog(kind string) []Category {
	switch kind {
	case KindIncome:
		return IncomeCategories
	case KindAdjustment:
		return AdjustmentCategories
	case KindDeduction:
		return DeductionCategories
	}
	return nil
}

// CategoryLabel resolves the display label for a category key within a kind.
func CategoryLabel(kind, key string) (string, bool) {
	for _, c := range Catalog(kind) {
		if c.Key == key {
			return c.Label, true
		}
	}
	return "", false
}
