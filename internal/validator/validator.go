// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("budget_type", validateBudgetType)
		_ = v.RegisterValidation("distribution_method", validateDistributionMethod)
		_ = v.RegisterValidation("budget_year", validateBudgetYear)
	}
}

func validateBudgetType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "shared", "individual":
		return true
	}
	return false
}

func validateDistributionMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "equal", "percentage", "manual":
		return true
	}
	return false
}

// validateBudgetYear accepts years within a sane planning window.
func validateBudgetYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= 2000 && year <= 2100
}
