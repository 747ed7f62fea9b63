package services

import "gorm.io/gorm"

// Services is the wired service layer over one database handle.
type Services struct {
	Categories   CategoryServicer
	Metrics      MetricsServicer
	Resolver     ResolverServicer
	Transactions TransactionServicer
	Budgets      BudgetServicer
	Pivot        PivotServicer
	Performance  PerformanceServicer
}

// NewServices builds every service over db.
func NewServices(db *gorm.DB) *Services {
	categories := NewCategoryService(db)
	metrics := NewMetricsService(db)
	resolver := NewResolverService(db, categories, metrics)
	return &Services{
		Categories:   categories,
		Metrics:      metrics,
		Resolver:     resolver,
		Transactions: NewTransactionService(db, resolver, metrics),
		Budgets:      NewBudgetService(db),
		Pivot:        NewPivotService(db),
		Performance:  NewPerformanceService(db),
	}
}
