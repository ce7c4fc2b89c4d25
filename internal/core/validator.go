package core

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tripplanner/internal/types"
)

// Validator wraps go-playground/validator for request payload validation.
// A single instance is shared across handlers; the underlying validator
// caches struct metadata and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator using JSON tag names in error output so
// clients see the field names they actually sent.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates dst against its struct tags and returns a
// *types.AppError (400) describing every failing field, or nil when valid.
func (v *Validator) ValidateStruct(dst interface{}) error {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return types.NewAppError(types.ErrCodeValidationInvalidRequest, "invalid request payload", err)
	}

	details := make(map[string]any, len(valErrs))
	for _, fe := range valErrs {
		details[fe.Field()] = fieldErrorMessage(fe)
	}

	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationInvalidRequest,
		"request validation failed",
		err,
		details,
	)
}

// fieldErrorMessage renders a client-facing message for one failed rule.
func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "alpha":
		return "must contain only letters"
	case "datetime":
		return fmt.Sprintf("must match the format %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}
