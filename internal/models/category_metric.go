package models

import "time"

// CategoryMetric caches the absolute transaction sums of one leaf category.
type CategoryMetric struct {
	CategoryID string    `gorm:"type:uuid;primaryKey" json:"category_id"`
	SumPast    int64     `gorm:"type:bigint;not null;default:0" json:"sum_past"`
	SumCurrent int64     `gorm:"type:bigint;not null;default:0" json:"sum_current"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the pluralized default.
func (CategoryMetric) TableName() string {
	return "category_metrics"
}
