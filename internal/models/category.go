package models

// Category is a named grouping label attached to transactions. Title is the
// natural key: lookups and de-duplication compare it exactly.
type Category struct {
	Base
	Title string `gorm:"size:255;not null;uniqueIndex" json:"title"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
