package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BaseError is a machine-checkable error: a stable code, a short message and
// an optional locale key for the presentation layer.
type BaseError struct {
	Code      string
	Message   string
	LocaleKey string
}

func (e *BaseError) Error() string { return e.Message }

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{Code: code, Message: message, LocaleKey: localeKey}
}

func NewFieldRequiredError(field, localeKey string) *BaseError {
	return &BaseError{
		Code:      "FIELD_REQUIRED",
		Message:   fmt.Sprintf("%s is required", field),
		LocaleKey: localeKey,
	}
}

type ValidationErrors map[string]*BaseError

// Messages flattens validation errors to field -> message for API payloads.
func (v ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = err.Message
	}
	return out
}

// ProcessValidatorErrors converts go-playground validator errors into
// ValidationErrors keyed by struct field name.
func ProcessValidatorErrors(errs validator.ValidationErrors, localeKey func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		code := "FIELD_INVALID"
		if fe.Tag() == "required" {
			code = "FIELD_REQUIRED"
		}
		out[fe.Field()] = &BaseError{
			Code:      code,
			Message:   fmt.Sprintf("%s failed on the %q rule", fe.Field(), fe.Tag()),
			LocaleKey: localeKey(fe.Field()),
		}
	}
	return out
}
