package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/modules/org/domain/position"
)

// ServiceError is the typed failure every operation returns: an HTTP-shaped
// status for the outer API layer, a stable machine-checkable code and a short
// reason string.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

func statusOf(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func IsNotFound(err error) bool   { return statusOf(err) == http.StatusNotFound }
func IsBadRequest(err error) bool { return statusOf(err) == http.StatusBadRequest }
func IsConflict(err error) bool   { return statusOf(err) == http.StatusConflict }
func IsForbidden(err error) bool  { return statusOf(err) == http.StatusForbidden }

// IsRetryable reports whether the caller is advised to retry the whole
// operation. Only request-number exhaustion qualifies.
func IsRetryable(err error) bool { return statusOf(err) == http.StatusServiceUnavailable }

// mapStoreConflict converts store-level unique constraint sentinels into
// Conflict service errors. The validator pre-checks catch these earlier on
// the common path; the store constraint stays authoritative under races.
func mapStoreConflict(err error) error {
	switch {
	case errors.Is(err, department.ErrDuplicateCode):
		recordWriteConflict("department_code")
		return newServiceError(http.StatusConflict, "ORG_CODE_CONFLICT", "department code already exists", err)
	case errors.Is(err, position.ErrDuplicateCode):
		recordWriteConflict("position_code")
		return newServiceError(http.StatusConflict, "ORG_POSITION_CODE_CONFLICT", "position code already exists", err)
	case errors.Is(err, position.ErrDuplicateTitle):
		recordWriteConflict("position_title")
		return newServiceError(http.StatusConflict, "ORG_TITLE_CONFLICT", "position title already exists in department", err)
	}
	return err
}
