package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestCategory creates a leaf category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, kind models.CategoryKind) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, fmt.Sprintf("Category %d", nextID()), kind, nil, false)
}

// CreateTestAggregate creates an aggregate category with a unique name.
func CreateTestAggregate(t *testing.T, db *gorm.DB, kind models.CategoryKind) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, fmt.Sprintf("Group %d", nextID()), kind, nil, true)
}

// CreateTestCategoryWithName inserts a category row directly, bypassing
// hierarchy validation.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, name string, kind models.CategoryKind, parentID *string, aggregate bool) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:        name,
		Kind:        kind,
		ParentID:    parentID,
		IsAggregate: aggregate,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction inserts a ledger row directly, without
// classification or cache refresh.
func CreateTestTransaction(t *testing.T, db *gorm.DB, key string, amount int64, period models.Period, categoryID *string) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		Date:       time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Memo:       fmt.Sprintf("Test transaction %d", nextID()),
		Key:        key,
		Amount:     amount,
		Period:     period,
		CategoryID: categoryID,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// SetTestBudget stores a budget row for any category, aggregate or not.
func SetTestBudget(t *testing.T, db *gorm.DB, categoryID string, amount int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{CategoryID: categoryID, PlannedAmount: amount}
	if err := db.Save(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
