package middleware

import (
	"reflect"
	"strings"

	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures the binding validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("currency", validateCurrency)
}

// validateCurrency accepts only supported ISO currency codes
func validateCurrency(fl validator.FieldLevel) bool {
	return valueobject.Currency(fl.Field().String()).IsValid()
}
