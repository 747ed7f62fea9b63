package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gorm.io/gorm"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// updateChunk bounds the number of ids bound into a single IN clause.
const updateChunk = 500

// resolverService links ledger entries to leaf categories by key and sign.
type resolverService struct {
	db         *gorm.DB
	categories CategoryServicer
	metrics    MetricsServicer
}

// NewResolverService creates a new ResolverServicer.
func NewResolverService(db *gorm.DB, categories CategoryServicer, metrics MetricsServicer) ResolverServicer {
	return &resolverService{
		db:         db,
		categories: categories,
		metrics:    metrics,
	}
}

// signCondition restricts a transaction query to amounts of the given kind.
func signCondition(kind models.CategoryKind) string {
	if kind == models.CategoryKindIncome {
		return "amount > 0"
	}
	return "amount < 0"
}

// Classify links txn to the leaf whose name equals its key and whose kind
// matches its sign. Without a match txn is left as it is.
func (s *resolverService) Classify(tx *gorm.DB, txn *models.Transaction) error {
	key := strings.TrimSpace(txn.Key)
	kind, ok := models.KindForAmount(txn.Amount)
	if key == "" || !ok {
		return nil
	}

	var leaf models.Category
	res := tx.Where("name = ? AND kind = ? AND is_aggregate = ?", key, kind, false).Limit(1).Find(&leaf)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 1 {
		txn.CategoryID = &leaf.ID
	}
	return nil
}

// AssignByName links every unassigned transaction with the given key and a
// sign matching kind to the leaf category.
func (s *resolverService) AssignByName(name, categoryID string, kind models.CategoryKind) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !kind.IsValid() {
		return 0, apperrors.ErrInvalidKind
	}

	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		leaf, err := loadLeaf(tx, categoryID)
		if err != nil {
			return err
		}
		if leaf.Kind != kind {
			return apperrors.WithMessage(apperrors.ErrInvalidHierarchy, "category kind does not match the requested kind")
		}

		affected, err = assignByName(tx, leaf, name)
		if err != nil {
			return err
		}
		return s.metrics.RefreshLeaf(tx, leaf.ID)
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func assignByName(tx *gorm.DB, leaf *models.Category, name string) (int64, error) {
	res := tx.Model(&models.Transaction{}).
		Where("category_id IS NULL AND entry_key = ?", name).
		Where(signCondition(leaf.Kind)).
		Update("category_id", leaf.ID)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// loadLeaf fetches a category that transactions may be assigned to.
func loadLeaf(tx *gorm.DB, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := tx.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.IsAggregate {
		return nil, apperrors.WithMessage(apperrors.ErrNotALeaf, "transactions cannot be assigned to an aggregate category")
	}
	return &category, nil
}

// unassignCategory clears the category of every transaction pointing at it.
func unassignCategory(tx *gorm.DB, categoryID string) (int64, error) {
	res := tx.Model(&models.Transaction{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// AssignTransaction sets or clears the category of a single transaction.
func (s *resolverService) AssignTransaction(transactionID string, categoryID *string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", transactionID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		previous := ""
		if txn.CategoryID != nil {
			previous = *txn.CategoryID
		}

		var target *string
		if categoryID != nil {
			leaf, err := loadLeaf(tx, *categoryID)
			if err != nil {
				return err
			}
			kind, ok := models.KindForAmount(txn.Amount)
			if !ok {
				return apperrors.WithMessage(apperrors.ErrInvalidAmount, "a zero amount cannot be categorized")
			}
			if leaf.Kind != kind {
				return apperrors.WithMessage(apperrors.ErrInvalidHierarchy, "category kind does not match the sign of the amount")
			}
			target = &leaf.ID
		}

		if err := tx.Model(&txn).Update("category_id", target).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		txn.CategoryID = target

		next := ""
		if target != nil {
			next = *target
		}
		return s.metrics.RefreshLeaves(tx, previous, next)
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

type classifiable struct {
	ID         string
	Key        string `gorm:"column:entry_key"`
	Amount     int64
	CategoryID *string
}

type nameKind struct {
	name string
	kind models.CategoryKind
}

// ReapplyAll runs classification over the whole ledger against the current
// category set and returns the number of transactions whose category
// changed. Transactions without a matching leaf keep their assignment.
func (s *resolverService) ReapplyAll() (int64, error) {
	var changed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var leaves []models.Category
		if err := tx.Where("is_aggregate = ?", false).Find(&leaves).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		index := make(map[nameKind]string, len(leaves))
		for _, leaf := range leaves {
			index[nameKind{leaf.Name, leaf.Kind}] = leaf.ID
		}

		var rows []classifiable
		if err := tx.Model(&models.Transaction{}).
			Select("id, entry_key, amount, category_id").
			Where("entry_key <> '' AND amount <> 0").
			Scan(&rows).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		byTarget := make(map[string][]string)
		var touched []string
		for _, row := range rows {
			kind, _ := models.KindForAmount(row.Amount)
			target, ok := index[nameKind{strings.TrimSpace(row.Key), kind}]
			if !ok {
				continue
			}
			if row.CategoryID != nil && *row.CategoryID == target {
				continue
			}
			byTarget[target] = append(byTarget[target], row.ID)
			touched = append(touched, target)
			if row.CategoryID != nil {
				touched = append(touched, *row.CategoryID)
			}
		}

		for target, ids := range byTarget {
			for start := 0; start < len(ids); start += updateChunk {
				end := min(start+updateChunk, len(ids))
				res := tx.Model(&models.Transaction{}).
					Where("id IN ?", ids[start:end]).
					Update("category_id", target)
				if res.Error != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
				}
				changed += res.RowsAffected
			}
		}

		return s.metrics.RefreshLeaves(tx, touched...)
	})
	if err != nil {
		return 0, err
	}

	logger.Component("resolver").Infow("categories reapplied", "changed", changed)
	return changed, nil
}

type keyCount struct {
	Key   string `gorm:"column:entry_key"`
	Count int64  `gorm:"column:n"`
}

// ListUnassignedKeys returns the distinct non-blank keys of uncategorized
// transactions, sorted, each with the kind its first non-zero amount implies.
func (s *resolverService) ListUnassignedKeys() ([]UnassignedKey, error) {
	var rows []keyCount
	if err := s.db.Model(&models.Transaction{}).
		Select("entry_key, COUNT(*) AS n").
		Where("category_id IS NULL AND entry_key <> ''").
		Group("entry_key").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	keys := make([]UnassignedKey, 0, len(rows))
	for _, row := range rows {
		kind, _, err := suggestKind(s.db, row.Key)
		if err != nil {
			return nil, err
		}
		keys = append(keys, UnassignedKey{Key: row.Key, SuggestedKind: kind, Count: row.Count})
	}
	return keys, nil
}

// SuggestKind infers a kind for key from the earliest non-zero amount
// recorded under it. ok is false when no such amount exists.
func (s *resolverService) SuggestKind(key string) (models.CategoryKind, bool, error) {
	return suggestKind(s.db, strings.TrimSpace(key))
}

func suggestKind(tx *gorm.DB, key string) (models.CategoryKind, bool, error) {
	var amounts []int64
	if err := tx.Model(&models.Transaction{}).
		Where("entry_key = ? AND amount <> 0", key).
		Order("date ASC, created_at ASC").
		Limit(1).
		Pluck("amount", &amounts).Error; err != nil {
		return "", false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(amounts) == 0 {
		return "", false, nil
	}
	kind, ok := models.KindForAmount(amounts[0])
	return kind, ok, nil
}

// SuggestCategories proposes, for each unassigned key with a known kind,
// the existing leaf of that kind with the closest name. Only proposals
// within maxDistance edits are returned.
func (s *resolverService) SuggestCategories(maxDistance int) ([]CategorySuggestion, error) {
	if maxDistance < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "max distance must not be negative")
	}

	keys, err := s.ListUnassignedKeys()
	if err != nil {
		return nil, err
	}

	var leaves []models.Category
	if err := s.db.Where("is_aggregate = ?", false).Order("name ASC").Find(&leaves).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	suggestions := make([]CategorySuggestion, 0)
	for _, k := range keys {
		if k.SuggestedKind == "" {
			continue
		}
		best := -1
		var match models.Category
		for _, leaf := range leaves {
			if leaf.Kind != k.SuggestedKind {
				continue
			}
			d := levenshtein.ComputeDistance(strings.ToLower(k.Key), strings.ToLower(leaf.Name))
			if best < 0 || d < best {
				best, match = d, leaf
			}
		}
		if best < 0 || best > maxDistance {
			continue
		}
		suggestions = append(suggestions, CategorySuggestion{
			Key:          k.Key,
			Kind:         k.SuggestedKind,
			CategoryID:   match.ID,
			CategoryName: match.Name,
			Distance:     best,
		})
	}
	return suggestions, nil
}

// PromoteKey creates a leaf named after key and claims every unassigned
// transaction filed under it. Without an explicit kind the suggested kind
// is used.
func (s *resolverService) PromoteKey(key string, kind *models.CategoryKind, parentID *string) (*models.Category, int64, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "key is required")
	}

	var (
		category *models.Category
		assigned int64
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var target models.CategoryKind
		if kind != nil {
			target = *kind
		} else {
			suggested, ok, err := suggestKind(tx, key)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "no non-zero transaction to infer a kind from")
			}
			target = suggested
		}

		var err error
		category, err = s.categories.CreateCategoryWithDB(tx, key, target, parentID, false)
		if err != nil {
			return err
		}
		assigned, err = assignByName(tx, category, key)
		if err != nil {
			return err
		}
		return s.metrics.RefreshLeaf(tx, category.ID)
	})
	if err != nil {
		return nil, 0, err
	}
	return category, assigned, nil
}
