package expensedelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/go-divvy/divvy/internal/domain"
)

// ValidCategory validates whether the expense category is supported.
var ValidCategory validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return domain.IsValidCategory(domain.Category(c))
	}

	return false
}
