package pipeline

// TransactionRecord is one normalized financial transaction. Every field is
// always populated; coercion substitutes documented defaults instead of
// leaving fields missing.
type TransactionRecord struct {
	Category        string  `json:"category"`
	TransactionType string  `json:"transaction_type"`
	Amount          float64 `json:"amount"`
	Date            string  `json:"date"`
	Description     string  `json:"description"`
}

// MetalRecord is one normalized precious-metal purchase.
type MetalRecord struct {
	Brand       string  `json:"brand"`
	WeightGrams float64 `json:"weight_grams"`
	Amount      float64 `json:"amount"`
	Quantity    int     `json:"quantity"`
	SavingsGoal string  `json:"savings_goal"`
	Date        string  `json:"date"`
}

// ReceiptResult is the outcome of processing a financial receipt image.
// An empty Transactions slice with a Note is a valid result meaning the
// model found no transactions; it is not an error.
type ReceiptResult struct {
	Transactions []TransactionRecord `json:"transactions"`
	Note         string              `json:"note,omitempty"`
}

// MetalReceiptResult is the outcome of processing a metal receipt image.
type MetalReceiptResult struct {
	Transactions []MetalRecord `json:"transactions"`
	Note         string        `json:"note,omitempty"`
}
