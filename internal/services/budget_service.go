package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// budgetService handles leaf budgets and the rollup of budgets and sums.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// SetLeafBudget stores the planned amount of a leaf. Aggregate budgets are
// always derived and cannot be set.
func (s *budgetService) SetLeafBudget(categoryID string, amount int64) (*models.Budget, error) {
	budget := &models.Budget{
		CategoryID:    categoryID,
		PlannedAmount: amount,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadLeaf(tx, categoryID); err != nil {
			if errors.Is(err, apperrors.ErrNotALeaf) {
				return apperrors.WithMessage(apperrors.ErrNotALeaf, "aggregate budgets are derived from their children")
			}
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"planned_amount", "updated_at"}),
		}).Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// GetOwnBudget returns the stored budget row of a category, or zero.
func (s *budgetService) GetOwnBudget(categoryID string) (int64, error) {
	var amounts []int64
	if err := s.db.Model(&models.Budget{}).
		Where("category_id = ?", categoryID).
		Limit(1).
		Pluck("planned_amount", &amounts).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(amounts) == 0 {
		return 0, nil
	}
	return amounts[0], nil
}

// GetEffective returns the cached sums and budget of a leaf, or the
// recursive sum over the children of an aggregate. Unknown ids yield zeros.
func (s *budgetService) GetEffective(categoryID string) (*EffectiveValues, error) {
	snap, err := loadSnapshot(s.db)
	if err != nil {
		return nil, err
	}
	v, err := snap.effectiveFolder().Value(categoryID)
	if err != nil {
		return nil, hierarchyError("budgets", err)
	}
	return &v, nil
}

// GetOverview returns the effective values of every category in tree
// order: kinds, then names, each parent before its children.
func (s *budgetService) GetOverview() ([]OverviewRow, error) {
	snap, err := loadSnapshot(s.db)
	if err != nil {
		return nil, err
	}
	if err := snap.tree.Validate(); err != nil {
		return nil, hierarchyError("budgets", err)
	}

	values, err := snap.effectiveFolder().All()
	if err != nil {
		return nil, hierarchyError("budgets", err)
	}

	rows := make([]OverviewRow, 0, snap.tree.Len())
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		c, _ := snap.tree.Get(id)
		rows = append(rows, OverviewRow{
			CategoryID:      c.ID,
			Name:            c.Name,
			Kind:            c.Kind,
			ParentID:        c.ParentID,
			IsAggregate:     c.IsAggregate,
			Depth:           depth,
			EffectiveValues: values[id],
		})
		for _, child := range snap.tree.Children(id) {
			walk(child, depth+1)
		}
	}
	for _, root := range snap.tree.Roots() {
		walk(root, 0)
	}
	return rows, nil
}

// TotalBudget sums the absolute budgets of the leaves of a kind.
func (s *budgetService) TotalBudget(kind models.CategoryKind) (int64, error) {
	if !kind.IsValid() {
		return 0, apperrors.ErrInvalidKind
	}
	var total int64
	if err := s.db.Model(&models.Budget{}).
		Select("COALESCE(SUM(ABS(budgets.planned_amount)), 0)").
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("categories.kind = ? AND categories.is_aggregate = ?", kind, false).
		Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// HasAnyBudget reports whether any leaf has a non-zero budget.
func (s *budgetService) HasAnyBudget() (bool, error) {
	var count int64
	if err := s.db.Model(&models.Budget{}).
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("categories.is_aggregate = ? AND budgets.planned_amount <> 0", false).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// CheckCompleteness lists the leaves of a kind that have no budget yet.
// A zero budget counts as missing.
func (s *budgetService) CheckCompleteness(kind models.CategoryKind) (*BudgetCompleteness, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidKind
	}

	var leaves []models.Category
	if err := s.db.Where("kind = ? AND is_aggregate = ?", kind, false).
		Order("name ASC").
		Find(&leaves).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgeted []string
	if err := s.db.Model(&models.Budget{}).
		Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("categories.kind = ? AND categories.is_aggregate = ? AND budgets.planned_amount <> 0", kind, false).
		Pluck("budgets.category_id", &budgeted).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	has := make(map[string]struct{}, len(budgeted))
	for _, id := range budgeted {
		has[id] = struct{}{}
	}

	result := &BudgetCompleteness{
		TotalCategories:   len(leaves),
		MissingCategories: []string{},
	}
	for _, leaf := range leaves {
		if _, ok := has[leaf.ID]; ok {
			result.CategoriesWithBudget++
			continue
		}
		result.MissingCategories = append(result.MissingCategories, leaf.Name)
	}
	result.IsComplete = len(result.MissingCategories) == 0
	return result, nil
}
