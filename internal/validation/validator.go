// package validation provides helper functions for request data validation.
// It uses the go-playground/validator library and includes custom validation rules.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// init registers custom validation rules with the validator instance.
// This function runs automatically when the package is imported.
func init() {
	// RegisterValidation registers the "draw_method" tag. An empty value is
	// allowed so the rule-level fallback can apply; a non-empty value must
	// name a supported method.
	err := validate.RegisterValidation("draw_method", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "random", "lottery":
			return true
		}
		return false
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register custom validation: %v", err))
	}

	// The "contact_status" tag admits only the recordable outcomes.
	err = validate.RegisterValidation("contact_status", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "accepted", "rejected":
			return true
		}
		return false
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register custom validation: %v", err))
	}
}

// ValidationError is a custom error type that holds a slice of validation error messages.
type ValidationError struct {
	Errors []string
}

// Error returns a single string concatenating all validation error messages.
func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct performs validation on a given struct based on its validation tags.
// If validation fails, it returns a *ValidationError with user-friendly messages.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors []string

		for _, err := range err.(validator.ValidationErrors) {
			var message string

			switch err.Tag() {
			case "draw_method":
				message = fmt.Sprintf(
					"field '%s' must be 'random' or 'lottery'",
					err.Field(),
				)
			case "contact_status":
				message = fmt.Sprintf(
					"field '%s' must be 'accepted' or 'rejected'",
					err.Field(),
				)
			default:
				message = fmt.Sprintf(
					"field '%s' failed on the '%s' tag",
					err.Field(),
					err.Tag(),
				)
			}
			validationErrors = append(validationErrors, message)
		}

		return &ValidationError{Errors: validationErrors}
	}

	return nil
}
