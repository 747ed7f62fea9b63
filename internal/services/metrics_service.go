package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// metricsService maintains the per-leaf sums cache.
type metricsService struct {
	db *gorm.DB
}

// NewMetricsService creates a new MetricsServicer.
func NewMetricsService(db *gorm.DB) MetricsServicer {
	return &metricsService{db: db}
}

type leafSums struct {
	SumPast    int64
	SumCurrent int64
}

// RefreshLeaf recomputes the cached sums of a leaf from the ledger. It is a
// no-op for aggregates; for a category that no longer exists it drops the
// cache row.
func (s *metricsService) RefreshLeaf(tx *gorm.DB, categoryID string) error {
	if categoryID == "" {
		return nil
	}

	var category models.Category
	res := tx.Where("id = ?", categoryID).Limit(1).Find(&category)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryMetric{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}
	if category.IsAggregate {
		return nil
	}

	var sums leafSums
	if err := tx.Model(&models.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN period = ? THEN ABS(amount) ELSE 0 END), 0) AS sum_past, "+
				"COALESCE(SUM(CASE WHEN period = ? THEN ABS(amount) ELSE 0 END), 0) AS sum_current",
			models.PeriodHistorical, models.PeriodCurrent,
		).
		Where("category_id = ? AND amount <> 0", categoryID).
		Scan(&sums).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	metric := models.CategoryMetric{
		CategoryID: categoryID,
		SumPast:    sums.SumPast,
		SumCurrent: sums.SumCurrent,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sum_past", "sum_current", "updated_at"}),
	}).Create(&metric).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RefreshLeaves refreshes each distinct non-empty id once.
func (s *metricsService) RefreshLeaves(tx *gorm.DB, categoryIDs ...string) error {
	seen := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if err := s.RefreshLeaf(tx, id); err != nil {
			return err
		}
	}
	return nil
}

// RefreshAll rebuilds the cache for every leaf and drops rows that no
// longer belong to a leaf.
func (s *metricsService) RefreshAll(tx *gorm.DB) error {
	var leafIDs []string
	if err := tx.Model(&models.Category{}).
		Where("is_aggregate = ?", false).
		Pluck("id", &leafIDs).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stale := tx.Where("category_id NOT IN (?)",
		tx.Model(&models.Category{}).Select("id").Where("is_aggregate = ?", false))
	if err := stale.Delete(&models.CategoryMetric{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.RefreshLeaves(tx, leafIDs...)
}

// GetLeafMetrics returns the cached sums of a category. Categories without
// a cache row, including aggregates and unknown ids, yield zero sums.
func (s *metricsService) GetLeafMetrics(categoryID string) (*models.CategoryMetric, error) {
	metric := models.CategoryMetric{}
	if err := s.db.Where("category_id = ?", categoryID).Limit(1).Find(&metric).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	metric.CategoryID = categoryID
	return &metric, nil
}
