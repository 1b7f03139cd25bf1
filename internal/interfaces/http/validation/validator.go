// Package validation provides a centralized validation service for HTTP
// requests, built on struct tag rules. Validate at the boundary, fail fast,
// return actionable messages.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	appErrors "cfp-backend/pkg/errors"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// get returns the singleton validator instance, configured to report field
// names from their JSON tags.
func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return instance
}

// Struct validates a request DTO, converting validator errors into a single
// validation AppError listing every failed field.
func Struct(req interface{}) error {
	err := get().Struct(req)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return appErrors.NewInternal("request validation failed", err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, describe(fe))
	}
	return appErrors.NewValidation(strings.Join(messages, "; "))
}

// describe turns one field error into a readable message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
