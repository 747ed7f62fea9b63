package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/hierarchy"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// snapshot is a read-only view of the tree and its satellite rows, loaded
// once per read call.
type snapshot struct {
	tree    *hierarchy.Tree
	metrics map[string]models.CategoryMetric
	budgets map[string]int64
}

func loadTree(db *gorm.DB) (*hierarchy.Tree, error) {
	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return hierarchy.New(categories), nil
}

func loadSnapshot(db *gorm.DB) (*snapshot, error) {
	tree, err := loadTree(db)
	if err != nil {
		return nil, err
	}

	var metrics []models.CategoryMetric
	if err := db.Find(&metrics).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var budgets []models.Budget
	if err := db.Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snap := &snapshot{
		tree:    tree,
		metrics: make(map[string]models.CategoryMetric, len(metrics)),
		budgets: make(map[string]int64, len(budgets)),
	}
	for _, m := range metrics {
		snap.metrics[m.CategoryID] = m
	}
	for _, b := range budgets {
		snap.budgets[b.CategoryID] = b.PlannedAmount
	}
	return snap, nil
}

// effectiveFolder rolls leaf metrics and budgets up the tree. Aggregates
// take only the sum of their children; their own stored rows are ignored.
func (s *snapshot) effectiveFolder() *hierarchy.Folder[EffectiveValues] {
	return hierarchy.NewFolder(s.tree, func(c models.Category, children []EffectiveValues) (EffectiveValues, error) {
		if !c.IsAggregate {
			m := s.metrics[c.ID]
			return EffectiveValues{
				SumPast:    m.SumPast,
				SumCurrent: m.SumCurrent,
				Budget:     s.budgets[c.ID],
			}, nil
		}
		var total EffectiveValues
		for _, v := range children {
			total.SumPast += v.SumPast
			total.SumCurrent += v.SumCurrent
			total.Budget += v.Budget
		}
		return total, nil
	})
}

// hierarchyError maps a cycle found at read time to ErrCorruptHierarchy.
func hierarchyError(component string, err error) error {
	if errors.Is(err, hierarchy.ErrCycle) {
		logger.Component(component).Errorw("category hierarchy is corrupt", "error", err)
		return apperrors.Wrap(apperrors.ErrCorruptHierarchy, err)
	}
	return err
}
