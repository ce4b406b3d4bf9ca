package utils

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/turtacn/jwtauth/pkg/errors"
)

// Validator holds the singleton instance of the validator.
var defaultValidator = validator.New()

// ValidateStruct validates a struct using the default validator.
// It returns a formatted AppError if validation fails.
func ValidateStruct(s interface{}) *errors.AppError {
	if err := defaultValidator.Struct(s); err != nil {
		return ValidationError(err)
	}
	return nil
}

// ValidationError converts a binding or validation failure into an invalid_request AppError.
// Field errors are listed under their snake_case names.
func ValidationError(err error) *errors.AppError {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.ErrInvalidRequest.WithError(err)
	}
	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		details[ToSnakeCase(fe.Field())] = formatValidationError(fe)
	}
	return errors.ErrInvalidRequest.WithDetails(details)
}

// formatValidationError creates a user-friendly error message for a validation error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "alphanum":
		return "must contain only letters and digits"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

// ValidateNotEmpty checks if a string is not empty.
func ValidateNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
