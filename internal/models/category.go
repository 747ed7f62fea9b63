package models

// CategoryKind is the direction of money a category collects.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// IsValid reports whether k is one of the known kinds.
func (k CategoryKind) IsValid() bool {
	return k == CategoryKindIncome || k == CategoryKindExpense
}

// KindForAmount maps the sign of an amount to a kind. Zero has no kind.
func KindForAmount(amount int64) (CategoryKind, bool) {
	switch {
	case amount > 0:
		return CategoryKindIncome, true
	case amount < 0:
		return CategoryKindExpense, true
	default:
		return "", false
	}
}

// Category is a node of the category forest. Only aggregate categories
// may have children; only leaf categories hold transactions.
type Category struct {
	Base
	Name        string       `gorm:"not null;uniqueIndex:idx_categories_name_kind" json:"name"`
	Kind        CategoryKind `gorm:"not null;uniqueIndex:idx_categories_name_kind" json:"kind"`
	ParentID    *string      `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	IsAggregate bool         `gorm:"not null;default:false" json:"is_aggregate"`
}
