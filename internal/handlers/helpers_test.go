package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/pagination"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/validator"
)

const (
	testCategoryID    = "0190f3c4-7d2a-7b6e-9a41-3c2d1e0f9a8b"
	testTransactionID = "0190f3c4-8e11-7c3d-8f20-4b5a6c7d8e9f"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %s", rec.Body.String())
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn  func(name string, kind models.CategoryKind, parentID *string, isAggregate bool) (*models.Category, error)
	getCategoryByIDFn func(categoryID string) (*models.Category, error)
	listCategoriesFn  func() ([]models.Category, error)
	deleteCategoryFn  func(categoryID string) error
}

func (m *mockCategoryService) CreateCategory(name string, kind models.CategoryKind, parentID *string, isAggregate bool) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(name, kind, parentID, isAggregate)
	}
	return &models.Category{Name: name, Kind: kind}, nil
}

func (m *mockCategoryService) CreateCategoryWithDB(_ *gorm.DB, name string, kind models.CategoryKind, parentID *string, isAggregate bool) (*models.Category, error) {
	return m.CreateCategory(name, kind, parentID, isAggregate)
}

func (m *mockCategoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) ListCategories() ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn()
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

// --- mock transaction service ---

type mockTransactionService struct {
	addTransactionFn     func(in services.TransactionInput) (*models.Transaction, error)
	updateTransactionFn  func(transactionID string, in services.TransactionInput) (*models.Transaction, error)
	deleteTransactionFn  func(transactionID string) error
	bulkClearFn          func(period models.Period) (int64, error)
	importTransactionsFn func(inputs []services.TransactionInput) (*services.ImportResult, error)
	getTransactionByIDFn func(transactionID string) (*models.Transaction, error)
	listTransactionsFn   func(period models.Period, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	totalAmountFn        func(period models.Period) (int64, error)
	hasTransactionsFn    func(period models.Period) (bool, error)
}

func (m *mockTransactionService) AddTransaction(in services.TransactionInput) (*models.Transaction, error) {
	if m.addTransactionFn != nil {
		return m.addTransactionFn(in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(transactionID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(transactionID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(transactionID)
	}
	return nil
}

func (m *mockTransactionService) BulkClear(period models.Period) (int64, error) {
	if m.bulkClearFn != nil {
		return m.bulkClearFn(period)
	}
	return 0, nil
}

func (m *mockTransactionService) ImportTransactions(inputs []services.TransactionInput) (*services.ImportResult, error) {
	if m.importTransactionsFn != nil {
		return m.importTransactionsFn(inputs)
	}
	return &services.ImportResult{Imported: len(inputs)}, nil
}

func (m *mockTransactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(period models.Period, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(period, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

func (m *mockTransactionService) TotalAmount(period models.Period) (int64, error) {
	if m.totalAmountFn != nil {
		return m.totalAmountFn(period)
	}
	return 0, nil
}

func (m *mockTransactionService) HasTransactions(period models.Period) (bool, error) {
	if m.hasTransactionsFn != nil {
		return m.hasTransactionsFn(period)
	}
	return false, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

// --- mock resolver service ---

type mockResolverService struct {
	assignByNameFn       func(name, categoryID string, kind models.CategoryKind) (int64, error)
	assignTransactionFn  func(transactionID string, categoryID *string) (*models.Transaction, error)
	reapplyAllFn         func() (int64, error)
	listUnassignedKeysFn func() ([]services.UnassignedKey, error)
	suggestKindFn        func(key string) (models.CategoryKind, bool, error)
	suggestCategoriesFn  func(maxDistance int) ([]services.CategorySuggestion, error)
	promoteKeyFn         func(key string, kind *models.CategoryKind, parentID *string) (*models.Category, int64, error)
}

func (m *mockResolverService) Classify(_ *gorm.DB, _ *models.Transaction) error { return nil }

func (m *mockResolverService) AssignByName(name, categoryID string, kind models.CategoryKind) (int64, error) {
	if m.assignByNameFn != nil {
		return m.assignByNameFn(name, categoryID, kind)
	}
	return 0, nil
}

func (m *mockResolverService) AssignTransaction(transactionID string, categoryID *string) (*models.Transaction, error) {
	if m.assignTransactionFn != nil {
		return m.assignTransactionFn(transactionID, categoryID)
	}
	return &models.Transaction{CategoryID: categoryID}, nil
}

func (m *mockResolverService) ReapplyAll() (int64, error) {
	if m.reapplyAllFn != nil {
		return m.reapplyAllFn()
	}
	return 0, nil
}

func (m *mockResolverService) ListUnassignedKeys() ([]services.UnassignedKey, error) {
	if m.listUnassignedKeysFn != nil {
		return m.listUnassignedKeysFn()
	}
	return []services.UnassignedKey{}, nil
}

func (m *mockResolverService) SuggestKind(key string) (models.CategoryKind, bool, error) {
	if m.suggestKindFn != nil {
		return m.suggestKindFn(key)
	}
	return "", false, nil
}

func (m *mockResolverService) SuggestCategories(maxDistance int) ([]services.CategorySuggestion, error) {
	if m.suggestCategoriesFn != nil {
		return m.suggestCategoriesFn(maxDistance)
	}
	return []services.CategorySuggestion{}, nil
}

func (m *mockResolverService) PromoteKey(key string, kind *models.CategoryKind, parentID *string) (*models.Category, int64, error) {
	if m.promoteKeyFn != nil {
		return m.promoteKeyFn(key, kind, parentID)
	}
	return &models.Category{Name: key}, 0, nil
}

var _ services.ResolverServicer = (*mockResolverService)(nil)

// --- mock budget service ---

type mockBudgetService struct {
	setLeafBudgetFn     func(categoryID string, amount int64) (*models.Budget, error)
	getOwnBudgetFn      func(categoryID string) (int64, error)
	getEffectiveFn      func(categoryID string) (*services.EffectiveValues, error)
	getOverviewFn       func() ([]services.OverviewRow, error)
	totalBudgetFn       func(kind models.CategoryKind) (int64, error)
	hasAnyBudgetFn      func() (bool, error)
	checkCompletenessFn func(kind models.CategoryKind) (*services.BudgetCompleteness, error)
}

func (m *mockBudgetService) SetLeafBudget(categoryID string, amount int64) (*models.Budget, error) {
	if m.setLeafBudgetFn != nil {
		return m.setLeafBudgetFn(categoryID, amount)
	}
	return &models.Budget{CategoryID: categoryID, PlannedAmount: amount}, nil
}

func (m *mockBudgetService) GetOwnBudget(categoryID string) (int64, error) {
	if m.getOwnBudgetFn != nil {
		return m.getOwnBudgetFn(categoryID)
	}
	return 0, nil
}

func (m *mockBudgetService) GetEffective(categoryID string) (*services.EffectiveValues, error) {
	if m.getEffectiveFn != nil {
		return m.getEffectiveFn(categoryID)
	}
	return &services.EffectiveValues{}, nil
}

func (m *mockBudgetService) GetOverview() ([]services.OverviewRow, error) {
	if m.getOverviewFn != nil {
		return m.getOverviewFn()
	}
	return []services.OverviewRow{}, nil
}

func (m *mockBudgetService) TotalBudget(kind models.CategoryKind) (int64, error) {
	if m.totalBudgetFn != nil {
		return m.totalBudgetFn(kind)
	}
	return 0, nil
}

func (m *mockBudgetService) HasAnyBudget() (bool, error) {
	if m.hasAnyBudgetFn != nil {
		return m.hasAnyBudgetFn()
	}
	return false, nil
}

func (m *mockBudgetService) CheckCompleteness(kind models.CategoryKind) (*services.BudgetCompleteness, error) {
	if m.checkCompletenessFn != nil {
		return m.checkCompletenessFn(kind)
	}
	return &services.BudgetCompleteness{IsComplete: true, MissingCategories: []string{}}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

// --- mock analysis services ---

type mockPivotService struct {
	pivotFn func(req services.PivotRequest) (*services.PivotResult, error)
}

func (m *mockPivotService) Pivot(req services.PivotRequest) (*services.PivotResult, error) {
	if m.pivotFn != nil {
		return m.pivotFn(req)
	}
	return &services.PivotResult{Dimensions: req.Dimensions, Rows: []services.PivotRow{}}, nil
}

var _ services.PivotServicer = (*mockPivotService)(nil)

type mockPerformanceService struct {
	performanceFn    func(categoryID string, month int) (*services.Performance, error)
	performanceAllFn func(month int, kind *models.CategoryKind) ([]services.Performance, error)
	compareMonthFn   func(month int, kind models.CategoryKind) ([]services.MonthComparison, error)
}

func (m *mockPerformanceService) Performance(categoryID string, month int) (*services.Performance, error) {
	if m.performanceFn != nil {
		return m.performanceFn(categoryID, month)
	}
	return &services.Performance{CategoryID: categoryID, Month: month}, nil
}

func (m *mockPerformanceService) PerformanceAll(month int, kind *models.CategoryKind) ([]services.Performance, error) {
	if m.performanceAllFn != nil {
		return m.performanceAllFn(month, kind)
	}
	return []services.Performance{}, nil
}

func (m *mockPerformanceService) CompareMonth(month int, kind models.CategoryKind) ([]services.MonthComparison, error) {
	if m.compareMonthFn != nil {
		return m.compareMonthFn(month, kind)
	}
	return []services.MonthComparison{}, nil
}

var _ services.PerformanceServicer = (*mockPerformanceService)(nil)
