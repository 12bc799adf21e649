package domain

// Category is a spending or income label with a display color.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"` // "expense" or "income"
	Color string `json:"color"`
}

// CategorySummary is the total spent per category.
type CategorySummary struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int64   `json:"count"`
	Color    string  `json:"color"`
}

// DateSummary is the total spent per calendar day (YYYY-MM-DD).
type DateSummary struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// PlatformSummary is the total spent per platform. Platform is empty for
// transactions recorded without one.
type PlatformSummary struct {
	Platform string  `json:"platform"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// Balance is the running balance over a filter window.
type Balance struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// DefaultCategoryColor is used when a transaction's category is not in the catalog.
const DefaultCategoryColor = "#000000"
