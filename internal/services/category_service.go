package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// categoryService handles the category tree.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new leaf or aggregate category
func (s *categoryService) CreateCategory(
	name string,
	kind models.CategoryKind,
	parentID *string,
	isAggregate bool,
) (*models.Category, error) {
	var result *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.CreateCategoryWithDB(tx, name, kind, parentID, isAggregate)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateCategoryWithDB creates a category using the given database handle,
// so callers can compose it into a larger transaction.
func (s *categoryService) CreateCategoryWithDB(
	tx *gorm.DB,
	name string,
	kind models.CategoryKind,
	parentID *string,
	isAggregate bool,
) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidKind
	}

	var count int64
	if err := tx.Model(&models.Category{}).
		Where("name = ? AND kind = ?", name, kind).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	if parentID != nil {
		var parent models.Category
		if err := tx.Where("id = ?", *parentID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !parent.IsAggregate {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidHierarchy, "parent category is not an aggregate")
		}
		if parent.Kind != kind {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidHierarchy, "category kind must match its parent")
		}
	}

	category := &models.Category{
		Name:        name,
		Kind:        kind,
		ParentID:    parentID,
		IsAggregate: isAggregate,
	}
	if err := tx.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ListCategories returns every category ordered by kind, then name.
func (s *categoryService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("kind ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// DeleteCategory removes a childless category. Its transactions become
// uncategorized and its satellite rows are dropped in the same transaction.
func (s *categoryService) DeleteCategory(categoryID string) error {
	var category models.Category
	var unassigned int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", categoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var childCount int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&childCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if childCount > 0 {
			return apperrors.ErrCategoryHasChildren
		}

		n, err := unassignCategory(tx, categoryID)
		if err != nil {
			return err
		}
		unassigned = n

		if err := tx.Where("category_id = ?", categoryID).Delete(&models.Budget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryMetric{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Ancestor rollups are derived on read and need no rewrite here.
		return nil
	})
	if err != nil {
		return err
	}

	logger.Component("categories").Infow("category deleted",
		"category_id", categoryID, "name", category.Name, "unassigned_transactions", unassigned)
	return nil
}
