package testutil

import (
	"errors"
	"testing"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertCategoryID fails the test unless the stored transaction points at
// want. An empty want asserts the transaction is unassigned.
func AssertCategoryID(t *testing.T, db *gorm.DB, transactionID, want string) {
	t.Helper()

	var txn models.Transaction
	if err := db.First(&txn, "id = ?", transactionID).Error; err != nil {
		t.Fatalf("failed to reload transaction %s: %v", transactionID, err)
	}
	got := ""
	if txn.CategoryID != nil {
		got = *txn.CategoryID
	}
	if got != want {
		t.Errorf("transaction %s: expected category %q, got %q", transactionID, want, got)
	}
}

// AssertLeafMetricsFresh compares the cached sums of a leaf against a
// from-scratch scan of the ledger.
func AssertLeafMetricsFresh(t *testing.T, db *gorm.DB, categoryID string) {
	t.Helper()

	var txns []models.Transaction
	if err := db.Where("category_id = ?", categoryID).Find(&txns).Error; err != nil {
		t.Fatalf("failed to scan ledger: %v", err)
	}
	var past, current int64
	for _, txn := range txns {
		amount := txn.Amount
		if amount < 0 {
			amount = -amount
		}
		switch txn.Period {
		case models.PeriodHistorical:
			past += amount
		case models.PeriodCurrent:
			current += amount
		}
	}

	var cached models.CategoryMetric
	err := db.Where("category_id = ?", categoryID).Limit(1).Find(&cached).Error
	if err != nil {
		t.Fatalf("failed to read cached metrics: %v", err)
	}
	if cached.SumPast != past || cached.SumCurrent != current {
		t.Errorf("category %s: cached (%d, %d) != scanned (%d, %d)",
			categoryID, cached.SumPast, cached.SumCurrent, past, current)
	}
}
