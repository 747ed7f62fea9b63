// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the domain tags to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("category_kind", validateCategoryKind)
	_ = v.RegisterValidation("ledger_period", validateLedgerPeriod)
	_ = v.RegisterValidation("pivot_dimension", validatePivotDimension)
}

func validateCategoryKind(fl validator.FieldLevel) bool {
	return models.CategoryKind(fl.Field().String()).IsValid()
}

func validateLedgerPeriod(fl validator.FieldLevel) bool {
	return models.Period(fl.Field().String()).IsValid()
}

func validatePivotDimension(fl validator.FieldLevel) bool {
	return models.Dimension(fl.Field().String()).IsValid()
}
