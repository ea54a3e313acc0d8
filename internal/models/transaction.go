package models

import "github.com/shopspring/decimal"

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeOutcome TransactionType = "outcome"
)

// MaxValue is the largest value a numeric(14,2) column holds.
var MaxValue = decimal.RequireFromString("999999999999.99")

// ParseTransactionType returns the TransactionType for s, which must be
// exactly "income" or "outcome".
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(s) {
	case TransactionTypeIncome:
		return TransactionTypeIncome, true
	case TransactionTypeOutcome:
		return TransactionTypeOutcome, true
	}
	return "", false
}

// Transaction represents a financial transaction. Transactions are never
// updated or deleted once persisted.
type Transaction struct {
	Base
	Title      string          `gorm:"size:255;not null" json:"title"`
	Type       TransactionType `gorm:"size:16;not null;index" json:"type"`
	Value      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"value"`
	CategoryID string          `gorm:"type:uuid;not null;index" json:"category_id"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Signed returns the transaction's effect on the balance.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeOutcome {
		return t.Value.Neg()
	}
	return t.Value
}

// Balance is derived from all persisted transactions; it is never stored.
type Balance struct {
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
	Total   decimal.Decimal `json:"total"`
}

// NewBalance builds a Balance from income and outcome sums.
func NewBalance(income, outcome decimal.Decimal) Balance {
	return Balance{Income: income, Outcome: outcome, Total: income.Sub(outcome)}
}

// Covers reports whether an outcome of value keeps the balance non-negative.
func (b Balance) Covers(value decimal.Decimal) bool {
	return value.LessThanOrEqual(b.Total)
}
