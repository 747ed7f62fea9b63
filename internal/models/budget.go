package models

import "time"

// Budget holds the yearly planned amount of a leaf category. Rows keyed
// by an aggregate category are never read back as that category's budget.
type Budget struct {
	CategoryID    string    `gorm:"type:uuid;primaryKey" json:"category_id"`
	PlannedAmount int64     `gorm:"type:bigint;not null;default:0" json:"planned_amount"`
	UpdatedAt     time.Time `json:"updated_at"`
}
