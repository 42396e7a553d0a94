// Package validation provides structured validation error handling
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Error represents a validation error with field-specific details
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors represents multiple validation errors
type Errors []Error

// Error implements the error interface
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	var messages []string
	for _, err := range ve {
		if err.Field != "" {
			messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
		} else {
			messages = append(messages, err.Message)
		}
	}

	return strings.Join(messages, "; ")
}

// Add adds a validation error
func (ve *Errors) Add(field, message string) {
	*ve = append(*ve, Error{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors
func (ve Errors) HasErrors() bool {
	return len(ve) > 0
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("yesno", func(fl validator.FieldLevel) bool {
			_, ok := parseYesNo(fl.Field().String())
			return ok
		})
	})
	return validate
}

// Truthy reports whether an answer means yes: y, yes, t or true in any case.
func Truthy(s string) bool {
	v, _ := parseYesNo(s)
	return v
}

func parseYesNo(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true":
		return true, true
	case "n", "no", "f", "false":
		return false, true
	default:
		return false, false
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "hexadecimal":
		return "must be hexadecimal"
	case "yesno":
		return "must be yes/no or true/false"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// translate converts validator errors into Errors, naming fields by json tag.
func translate(err error, field string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var out Errors
	for _, fe := range fieldErrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		out.Add(name, messageFor(fe))
	}
	return out
}
