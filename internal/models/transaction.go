package models

import (
	"time"

	"gorm.io/gorm"
)

// Period splits the ledger into the running fiscal year and everything before it.
type Period string

const (
	PeriodHistorical Period = "historical"
	PeriodCurrent    Period = "current"
)

// IsValid reports whether p is one of the known periods.
func (p Period) IsValid() bool {
	return p == PeriodHistorical || p == PeriodCurrent
}

// Transaction is a single ledger entry. Amount is signed minor units:
// positive amounts are income, negative amounts are expense.
type Transaction struct {
	Base
	Date              time.Time `gorm:"type:date;not null;index" json:"date"`
	Month             int       `gorm:"not null;index" json:"month"`
	Document          string    `json:"document"`
	Source            string    `json:"source"`
	Counterparty      string    `json:"counterparty"`
	Memo              string    `json:"memo"`
	Debit             int64     `gorm:"type:bigint;not null;default:0" json:"debit"`
	Credit            int64     `gorm:"type:bigint;not null;default:0" json:"credit"`
	Amount            int64     `gorm:"type:bigint;not null" json:"amount"`
	Activity          int       `json:"activity"`
	Number            int       `json:"number"`
	Key               string    `gorm:"column:entry_key;index" json:"key"`
	ResponsiblePerson string    `json:"responsible_person"`
	CostCenter        string    `json:"cost_center"`
	Period            Period    `gorm:"not null;index" json:"period"`
	CategoryID        *string   `gorm:"type:uuid;index" json:"category_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// BeforeSave keeps the denormalized month column in step with Date.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.Month = int(t.Date.Month())
	return nil
}
