package pipeline

// Fallback constants used by the coercer. Every field of an output record
// resolves to one of these when the model's value cannot be trusted.
const (
	FallbackCategory       = "Other"
	DefaultTransactionType = "Expense"
	DefaultDescription     = "Unspecified"
	FallbackBrand          = "Other Brand"
	DefaultSavingsGoal     = "Not Applicable"

	// TransactionTypeIncome selects the income category allow-list.
	TransactionTypeIncome = "Income"

	// brandPrefix is the generic prefix users put before a brand name
	// ("emas Antam"); it is stripped before allow-list matching.
	brandPrefix = "emas "
)

// Profile parameterizes the financial pipeline for one route: category
// allow-lists and the prompt templates the route uses. Profiles are
// read-only after construction and safe for concurrent use.
type Profile struct {
	Name              string
	IncomeCategories  []string
	ExpenseCategories []string
	TransactionTypes  []string
}

// MetalProfile parameterizes the precious-metal pipeline.
type MetalProfile struct {
	Brands       []string
	SavingsGoals []string
}

// FinanceTextProfile is the vocabulary for free-text financial input.
func FinanceTextProfile() Profile {
	return Profile{
		Name: "finance-text",
		IncomeCategories: []string{
			"Salary", "Business", "Side Business", "Dividends",
			"Interest Income", "Commission", "Other Income",
		},
		ExpenseCategories: []string{
			"Food & Beverage", "Social Life", "Transportation", "Apparel",
			"Personal Care", "Health", "Education", "Gifts", "Pets",
			"Self Development", "Accessories", "Internet", "Electricity",
			"Water", "Mobile", "Health Insurance", "Waste", "Gas", "Stocks",
			"House Installment", "Vehicle Installment",
		},
		TransactionTypes: []string{
			"Income", "Expense", "Bill", "Investment", "Installment",
		},
	}
}

// FinanceImageProfile is the vocabulary for receipt images. It differs from
// the text profile on purpose: receipts add child-needs and life-insurance
// expense categories and drop the generic other-income fallback.
func FinanceImageProfile() Profile {
	return Profile{
		Name: "finance-image",
		IncomeCategories: []string{
			"Salary", "Business", "Side Business", "Dividends",
			"Interest Income", "Commission",
		},
		ExpenseCategories: []string{
			"Food & Beverage", "Social Life", "Child Needs", "Transportation",
			"Apparel", "Personal Care", "Health", "Education", "Gifts", "Pets",
			"Self Development", "Accessories", "Internet", "Electricity",
			"Water", "Mobile", "Life Insurance", "Health Insurance", "Waste",
			"Gas", "Stocks", "House Installment", "Vehicle Installment",
		},
		TransactionTypes: []string{
			"Income", "Expense", "Bill", "Investment", "Installment",
		},
	}
}

// DefaultMetalProfile is the vocabulary for precious-metal purchases.
func DefaultMetalProfile() MetalProfile {
	return MetalProfile{
		Brands: []string{
			"Antam", "UBS", "PAMP", "Galeri24", "Wonderful Wish", "Big Gold",
			"Lotus Archi", "Hartadinata", "King Halim", "Antam Retro",
			"Semar Nusantara",
		},
		SavingsGoals: []string{
			"Emergency Fund", "Children's Education", "Investment",
			"Retirement Fund", "Hajj & Umroh", "House", "Wedding", "Car",
			"Vacation", "Gadget",
		},
	}
}

// allowedCategories returns the allow-list matching the transaction
// direction. Income transactions validate against income categories,
// everything else against expense categories.
func (p Profile) allowedCategories(transactionType string) []string {
	if transactionType == TransactionTypeIncome {
		return p.IncomeCategories
	}
	return p.ExpenseCategories
}
