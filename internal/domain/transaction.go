package domain

import (
	"cloud.google.com/go/civil"
)

// DefaultTransactionType is the type reported for stored transactions.
// The ledger only records spending, so every row is an expense.
const DefaultTransactionType = "expense"

// Transaction is a single recorded financial movement as owned by the store.
type Transaction struct {
	ID              int64      `json:"id"`
	Date            civil.Date `json:"date"`             // calendar day, no time component
	Amount          float64    `json:"amount"`           // non-negative, currency implicit
	Category        string     `json:"category"`         // label, many-to-one with Category
	Description     string     `json:"description"`      // free text, may be empty
	Platform        string     `json:"platform"`         // optional source label, e.g. "K PLUS"
	TransactionType string     `json:"transaction_type"` // always DefaultTransactionType for now
}

// Item is a persisted line item stored against a transaction.
type Item struct {
	ID            int64   `json:"id"`
	TransactionID int64   `json:"transaction_id"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
}

// TransactionFilter is a conjunction of optional predicates.
// Nil dates and empty strings mean "no constraint".
type TransactionFilter struct {
	DateFrom *civil.Date // inclusive
	DateTo   *civil.Date // inclusive
	Category string
	Platform string
}

// CreateTransactionParams holds the fields accepted when recording a transaction.
type CreateTransactionParams struct {
	Date        civil.Date
	Amount      float64
	Category    string
	Description string
	Platform    string
}

// UpdateTransactionParams holds optional updates; nil fields are left untouched.
type UpdateTransactionParams struct {
	Date        *civil.Date
	Amount      *float64
	Category    *string
	Description *string
	Platform    *string
}

// IsEmpty reports whether no field is set.
func (p UpdateTransactionParams) IsEmpty() bool {
	return p.Date == nil && p.Amount == nil && p.Category == nil && p.Description == nil && p.Platform == nil
}

// CreateItemParams holds the fields accepted when adding an item to a transaction.
type CreateItemParams struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// UpdateItemParams holds optional item updates; nil fields are left untouched.
type UpdateItemParams struct {
	Name      *string
	Quantity  *int
	UnitPrice *float64
}

// IsEmpty reports whether no field is set.
func (p UpdateItemParams) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.UnitPrice == nil
}
