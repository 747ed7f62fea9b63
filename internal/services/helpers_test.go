package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/testutil"
)

// engine bundles every service over one test database.
type engine struct {
	db          *gorm.DB
	categories  CategoryServicer
	metrics     MetricsServicer
	resolver    ResolverServicer
	ledger      TransactionServicer
	budgets     BudgetServicer
	pivot       PivotServicer
	performance PerformanceServicer
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	categories := NewCategoryService(db)
	metrics := NewMetricsService(db)
	resolver := NewResolverService(db, categories, metrics)
	return &engine{
		db:          db,
		categories:  categories,
		metrics:     metrics,
		resolver:    resolver,
		ledger:      NewTransactionService(db, resolver, metrics),
		budgets:     NewBudgetService(db),
		pivot:       NewPivotService(db),
		performance: NewPerformanceService(db),
	}
}

func input(key string, amount int64, period models.Period) TransactionInput {
	return TransactionInput{
		Date:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Key:    key,
		Amount: amount,
		Period: period,
	}
}

func inputInMonth(key string, amount int64, period models.Period, month time.Month) TransactionInput {
	in := input(key, amount, period)
	in.Date = time.Date(2024, month, 10, 0, 0, 0, 0, time.UTC)
	return in
}

func mustCategory(t *testing.T, e *engine, name string, kind models.CategoryKind, parent *models.Category, aggregate bool) *models.Category {
	t.Helper()
	var parentID *string
	if parent != nil {
		parentID = &parent.ID
	}
	c, err := e.categories.CreateCategory(name, kind, parentID, aggregate)
	testutil.AssertNoError(t, err)
	return c
}

func mustAdd(t *testing.T, e *engine, in TransactionInput) *models.Transaction {
	t.Helper()
	txn, err := e.ledger.AddTransaction(in)
	testutil.AssertNoError(t, err)
	return txn
}

func assertLeafOnlyAssignment(t *testing.T, db *gorm.DB) {
	t.Helper()
	var txns []models.Transaction
	if err := db.Preload("Category").Where("category_id IS NOT NULL").Find(&txns).Error; err != nil {
		t.Fatalf("failed to load transactions: %v", err)
	}
	for _, txn := range txns {
		if txn.Category == nil {
			t.Errorf("transaction %s points at a missing category", txn.ID)
			continue
		}
		if txn.Category.IsAggregate {
			t.Errorf("transaction %s is assigned to aggregate %s", txn.ID, txn.Category.Name)
		}
		kind, _ := models.KindForAmount(txn.Amount)
		if txn.Category.Kind != kind {
			t.Errorf("transaction %s (amount %d) is assigned to %s category", txn.ID, txn.Amount, txn.Category.Kind)
		}
	}
}
