package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/calendar"
	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/pagination"
)

// importKeyPrefix is prepended to imported keys that collide with an
// aggregate category name.
const importKeyPrefix = "Import "

// transactionService handles ledger mutations and reads.
type transactionService struct {
	db       *gorm.DB
	resolver ResolverServicer
	metrics  MetricsServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, resolver ResolverServicer, metrics MetricsServicer) TransactionServicer {
	return &transactionService{
		db:       db,
		resolver: resolver,
		metrics:  metrics,
	}
}

func validateInput(in *TransactionInput) error {
	if in.Date.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidDate, "date is required")
	}
	if !in.Period.IsValid() {
		return apperrors.ErrInvalidPeriod
	}
	in.Date = calendar.Truncate(in.Date)
	in.Key = strings.TrimSpace(in.Key)
	return nil
}

// aggregateNames returns the set of aggregate category names.
func aggregateNames(tx *gorm.DB) (map[string]struct{}, error) {
	var names []string
	if err := tx.Model(&models.Category{}).
		Where("is_aggregate = ?", true).
		Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}

func checkReservedKey(tx *gorm.DB, key string) error {
	if key == "" {
		return nil
	}
	reserved, err := aggregateNames(tx)
	if err != nil {
		return err
	}
	if _, ok := reserved[key]; ok {
		return apperrors.WithMessage(apperrors.ErrReservedKey, "key "+key+" is the name of an aggregate category")
	}
	return nil
}

// NormalizeImportKey renames a key that collides with an aggregate
// category name so that the imported row stays classifiable.
func NormalizeImportKey(key string, aggregates map[string]struct{}) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return key, false
	}
	if _, ok := aggregates[key]; ok {
		return importKeyPrefix + key, true
	}
	return key, false
}

func applyInput(txn *models.Transaction, in TransactionInput) {
	txn.Date = in.Date
	txn.Document = in.Document
	txn.Source = in.Source
	txn.Counterparty = in.Counterparty
	txn.Memo = in.Memo
	txn.Debit = in.Debit
	txn.Credit = in.Credit
	txn.Amount = in.Amount
	txn.Activity = in.Activity
	txn.Number = in.Number
	txn.Key = in.Key
	txn.ResponsiblePerson = in.ResponsiblePerson
	txn.CostCenter = in.CostCenter
	txn.Period = in.Period
}

// AddTransaction records a ledger entry, classifies it and refreshes the
// cache of the leaf it lands in.
func (s *transactionService) AddTransaction(in TransactionInput) (*models.Transaction, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkReservedKey(tx, in.Key); err != nil {
			return err
		}
		var txErr error
		result, txErr = s.createTransactionWithDB(tx, in)
		if txErr != nil {
			return txErr
		}
		if result.CategoryID != nil {
			return s.metrics.RefreshLeaf(tx, *result.CategoryID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// createTransactionWithDB inserts a classified transaction without
// touching the cache.
func (s *transactionService) createTransactionWithDB(tx *gorm.DB, in TransactionInput) (*models.Transaction, error) {
	txn := &models.Transaction{}
	applyInput(txn, in)

	if err := s.resolver.Classify(tx, txn); err != nil {
		return nil, err
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txn, nil
}

// UpdateTransaction rewrites a ledger entry. The entry is re-classified; an
// existing assignment that no longer fits the new sign is dropped. Both the
// previous and the resulting leaf are refreshed.
func (s *transactionService) UpdateTransaction(transactionID string, in TransactionInput) (*models.Transaction, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var txn models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", transactionID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := checkReservedKey(tx, in.Key); err != nil {
			return err
		}

		previous := ""
		if txn.CategoryID != nil {
			previous = *txn.CategoryID
		}

		applyInput(&txn, in)
		if err := s.keepValidAssignment(tx, &txn); err != nil {
			return err
		}
		if err := s.resolver.Classify(tx, &txn); err != nil {
			return err
		}

		if err := tx.Save(&txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		next := ""
		if txn.CategoryID != nil {
			next = *txn.CategoryID
		}
		return s.metrics.RefreshLeaves(tx, previous, next)
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// keepValidAssignment clears txn's category when it is gone, is an
// aggregate, or no longer matches the sign of the amount.
func (s *transactionService) keepValidAssignment(tx *gorm.DB, txn *models.Transaction) error {
	if txn.CategoryID == nil {
		return nil
	}
	kind, ok := models.KindForAmount(txn.Amount)
	if !ok {
		txn.CategoryID = nil
		return nil
	}

	var count int64
	if err := tx.Model(&models.Category{}).
		Where("id = ? AND kind = ? AND is_aggregate = ?", *txn.CategoryID, kind, false).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		txn.CategoryID = nil
	}
	return nil
}

// DeleteTransaction deletes a ledger entry and refreshes its former leaf.
func (s *transactionService) DeleteTransaction(transactionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Where("id = ?", transactionID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Delete(&txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if txn.CategoryID != nil {
			return s.metrics.RefreshLeaf(tx, *txn.CategoryID)
		}
		return nil
	})
}

// BulkClear deletes every transaction of a period and refreshes each leaf
// that held one of them.
func (s *transactionService) BulkClear(period models.Period) (int64, error) {
	if !period.IsValid() {
		return 0, apperrors.ErrInvalidPeriod
	}

	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var affected []string
		if err := tx.Model(&models.Transaction{}).
			Where("period = ? AND category_id IS NOT NULL", period).
			Distinct().
			Pluck("category_id", &affected).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		res := tx.Where("period = ?", period).Delete(&models.Transaction{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		deleted = res.RowsAffected

		return s.metrics.RefreshLeaves(tx, affected...)
	})
	if err != nil {
		return 0, err
	}

	logger.Component("ledger").Infow("ledger period cleared", "period", period, "deleted", deleted)
	return deleted, nil
}

// ImportTransactions loads a batch in one database transaction. Keys that
// collide with an aggregate name are renamed instead of rejected.
func (s *transactionService) ImportTransactions(inputs []TransactionInput) (*ImportResult, error) {
	for i := range inputs {
		if err := validateInput(&inputs[i]); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{RenamedKeys: []string{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		aggregates, err := aggregateNames(tx)
		if err != nil {
			return err
		}

		renamed := make(map[string]struct{})
		var touched []string
		for _, in := range inputs {
			key, changed := NormalizeImportKey(in.Key, aggregates)
			if changed {
				if _, seen := renamed[in.Key]; !seen {
					renamed[in.Key] = struct{}{}
					result.RenamedKeys = append(result.RenamedKeys, in.Key)
				}
			}
			in.Key = key

			txn, err := s.createTransactionWithDB(tx, in)
			if err != nil {
				return err
			}
			result.Imported++
			if txn.CategoryID != nil {
				result.Classified++
				touched = append(touched, *txn.CategoryID)
			}
		}
		return s.metrics.RefreshLeaves(tx, touched...)
	})
	if err != nil {
		return nil, err
	}

	logger.Component("ledger").Infow("transactions imported",
		"imported", result.Imported, "classified", result.Classified, "renamed_keys", len(result.RenamedKeys))
	return result, nil
}

// GetTransactionByID retrieves a transaction by ID
func (s *transactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// ListTransactions returns a page of one period's transactions, newest first.
func (s *transactionService) ListTransactions(period models.Period, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if !period.IsValid() {
		return nil, apperrors.ErrInvalidPeriod
	}
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("period = ?", period)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	return &result, nil
}

// TotalAmount returns the signed sum of a period.
func (s *transactionService) TotalAmount(period models.Period) (int64, error) {
	if !period.IsValid() {
		return 0, apperrors.ErrInvalidPeriod
	}
	var total int64
	if err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("period = ?", period).
		Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// HasTransactions reports whether a period holds at least one transaction.
func (s *transactionService) HasTransactions(period models.Period) (bool, error) {
	if !period.IsValid() {
		return false, apperrors.ErrInvalidPeriod
	}
	var ids []string
	if err := s.db.Model(&models.Transaction{}).
		Where("period = ?", period).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(ids) > 0, nil
}
