package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

var (
	defaultValidator *Validator
	defaultOnce      sync.Once
)

// Default returns a process-wide validator. The underlying validate instance
// caches struct metadata, so sharing one is cheaper than calling New per use.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Register custom tag name function to use JSON tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validators
	v.RegisterValidation("sortfield", validateSortField)
	v.RegisterValidation("sortdir", validateSortDirection)

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Convert validation errors to our custom format
	var validationErrs ValidationErrors
	for _, fe := range fieldErrs {
		validationErrs = append(validationErrs, toValidationError(fe.Field(), fe))
	}

	return validationErrs
}

// Var validates a single value against a tag, reporting failures under name
func (v *Validator) Var(name string, value interface{}, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var validationErrs ValidationErrors
	for _, fe := range fieldErrs {
		validationErrs = append(validationErrs, toValidationError(name, fe))
	}

	return validationErrs
}

func toValidationError(field string, fe validator.FieldError) ValidationError {
	value := truncate(fmt.Sprintf("%v", fe.Value()), maxEchoedRunes)
	return ValidationError{
		Field:   field,
		Message: msgForTag(field, fe),
		Tag:     fe.Tag(),
		Value:   value,
	}
}

// maxEchoedRunes bounds the rejected value echoed back in an error
const maxEchoedRunes = 64

// truncate cuts s to at most n runes, never inside a multi-byte character
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// msgForTag returns a human-readable error message for a validation tag
func msgForTag(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "sortfield":
		return fmt.Sprintf("%s must be one of: id, text", field)
	case "sortdir":
		return fmt.Sprintf("%s must be either 'asc' or 'desc'", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// Custom validators

// validateSortField accepts the memo columns a page may be ordered by
func validateSortField(fl validator.FieldLevel) bool {
	field := fl.Field().String()
	return field == "id" || field == "text"
}

// validateSortDirection accepts asc and desc
func validateSortDirection(fl validator.FieldLevel) bool {
	dir := fl.Field().String()
	return dir == "asc" || dir == "desc"
}
