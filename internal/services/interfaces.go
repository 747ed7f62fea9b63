package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/pagination"
)

// CategoryServicer defines the contract for the category tree.
type CategoryServicer interface {
	CreateCategory(name string, kind models.CategoryKind, parentID *string, isAggregate bool) (*models.Category, error)
	CreateCategoryWithDB(tx *gorm.DB, name string, kind models.CategoryKind, parentID *string, isAggregate bool) (*models.Category, error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	DeleteCategory(categoryID string) error
}

// TransactionInput carries the user-editable fields of a ledger entry.
// Amount, Debit and Credit are signed minor units.
type TransactionInput struct {
	Date              time.Time
	Document          string
	Source            string
	Counterparty      string
	Memo              string
	Debit             int64
	Credit            int64
	Amount            int64
	Activity          int
	Number            int
	Key               string
	ResponsiblePerson string
	CostCenter        string
	Period            models.Period
}

// ImportResult summarizes a bulk load into the ledger.
type ImportResult struct {
	Imported    int      `json:"imported"`
	Classified  int      `json:"classified"`
	RenamedKeys []string `json:"renamed_keys"`
}

// TransactionServicer defines the contract for the ledger.
type TransactionServicer interface {
	AddTransaction(in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(transactionID string) error
	BulkClear(period models.Period) (int64, error)
	ImportTransactions(inputs []TransactionInput) (*ImportResult, error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	ListTransactions(period models.Period, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	TotalAmount(period models.Period) (int64, error)
	HasTransactions(period models.Period) (bool, error)
}

// UnassignedKey is a descriptive key that no transaction has been
// categorized under yet.
type UnassignedKey struct {
	Key           string              `json:"key"`
	SuggestedKind models.CategoryKind `json:"suggested_kind,omitempty"`
	Count         int64               `json:"count"`
}

// CategorySuggestion pairs an unassigned key with the closest existing leaf.
type CategorySuggestion struct {
	Key          string              `json:"key"`
	Kind         models.CategoryKind `json:"kind"`
	CategoryID   string              `json:"category_id"`
	CategoryName string              `json:"category_name"`
	Distance     int                 `json:"distance"`
}

// ResolverServicer defines the contract for categorizing the ledger.
type ResolverServicer interface {
	Classify(tx *gorm.DB, txn *models.Transaction) error
	AssignByName(name, categoryID string, kind models.CategoryKind) (int64, error)
	AssignTransaction(transactionID string, categoryID *string) (*models.Transaction, error)
	ReapplyAll() (int64, error)
	ListUnassignedKeys() ([]UnassignedKey, error)
	SuggestKind(key string) (models.CategoryKind, bool, error)
	SuggestCategories(maxDistance int) ([]CategorySuggestion, error)
	PromoteKey(key string, kind *models.CategoryKind, parentID *string) (*models.Category, int64, error)
}

// MetricsServicer defines the contract for the per-leaf sums cache.
type MetricsServicer interface {
	RefreshLeaf(tx *gorm.DB, categoryID string) error
	RefreshLeaves(tx *gorm.DB, categoryIDs ...string) error
	RefreshAll(tx *gorm.DB) error
	GetLeafMetrics(categoryID string) (*models.CategoryMetric, error)
}

// EffectiveValues are the rolled-up figures of a category.
type EffectiveValues struct {
	SumPast    int64 `json:"sum_past"`
	SumCurrent int64 `json:"sum_current"`
	Budget     int64 `json:"budget"`
}

// OverviewRow is one category of the budget overview.
type OverviewRow struct {
	CategoryID  string              `json:"category_id"`
	Name        string              `json:"name"`
	Kind        models.CategoryKind `json:"kind"`
	ParentID    *string             `json:"parent_id,omitempty"`
	IsAggregate bool                `json:"is_aggregate"`
	Depth       int                 `json:"depth"`
	EffectiveValues
}

// BudgetCompleteness reports which leaves of a kind still lack a budget.
type BudgetCompleteness struct {
	IsComplete           bool     `json:"is_complete"`
	TotalCategories      int      `json:"total_categories"`
	CategoriesWithBudget int      `json:"categories_with_budget"`
	MissingCategories    []string `json:"missing_categories"`
}

// BudgetServicer defines the contract for budgets and rollups.
type BudgetServicer interface {
	SetLeafBudget(categoryID string, amount int64) (*models.Budget, error)
	GetOwnBudget(categoryID string) (int64, error)
	GetEffective(categoryID string) (*EffectiveValues, error)
	GetOverview() ([]OverviewRow, error)
	TotalBudget(kind models.CategoryKind) (int64, error)
	HasAnyBudget() (bool, error)
	CheckCompleteness(kind models.CategoryKind) (*BudgetCompleteness, error)
}

// PivotServicer defines the contract for ad-hoc grouping of the ledger.
type PivotServicer interface {
	Pivot(req PivotRequest) (*PivotResult, error)
}

// PerformanceServicer defines the contract for month-over-month variance.
type PerformanceServicer interface {
	Performance(categoryID string, month int) (*Performance, error)
	PerformanceAll(month int, kind *models.CategoryKind) ([]Performance, error)
	CompareMonth(month int, kind models.CategoryKind) ([]MonthComparison, error)
}
