package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/modules/org/domain/position"
)

// CodeKind selects which namespace a uniqueness check runs against.
type CodeKind string

const (
	CodeKindDepartment CodeKind = "department"
	CodeKindPosition   CodeKind = "position"
)

// IntegrityValidator answers whether a proposed hierarchy change is legal. It
// only reads; callers must run checks in order existence -> uniqueness ->
// cycle before committing a write, and its answers are valid only within the
// transaction the check ran in.
type IntegrityValidator struct {
	departments department.Repository
	positions   position.Repository
}

func NewIntegrityValidator(departments department.Repository, positions position.Repository) *IntegrityValidator {
	return &IntegrityValidator{departments: departments, positions: positions}
}

// ValidateNoCycle walks upward from proposedReportsToID following reports-to
// pointers. The visited set guarantees termination even over corrupted data,
// so no depth limit is needed.
func (v *IntegrityValidator) ValidateNoCycle(ctx context.Context, positionID uuid.UUID, proposedReportsToID *uuid.UUID) error {
	if proposedReportsToID == nil {
		return nil
	}
	if *proposedReportsToID == positionID {
		recordWriteConflict("self_report")
		return newServiceError(http.StatusBadRequest, "ORG_SELF_REPORT", "position cannot report to itself", nil)
	}

	visited := make(map[uuid.UUID]struct{})
	current := *proposedReportsToID
	for {
		if _, seen := visited[current]; seen {
			recordWriteConflict("chain_corrupt")
			return newServiceError(http.StatusBadRequest, "ORG_CHAIN_CORRUPT", "cycle in existing reporting chain", nil)
		}
		if current == positionID {
			recordWriteConflict("reporting_loop")
			return newServiceError(http.StatusBadRequest, "ORG_REPORTING_LOOP", "would create a reporting loop", nil)
		}
		visited[current] = struct{}{}

		p, err := v.positions.GetByID(ctx, current)
		if err != nil {
			// A dangling pointer ends the chain; nothing above a missing
			// node can loop back to positionID.
			if errors.Is(err, position.ErrNotFound) {
				return nil
			}
			return err
		}
		if p.ReportsToID() == nil {
			return nil
		}
		current = *p.ReportsToID()
	}
}

// ValidateUniqueCode checks for an exact code match in the given namespace,
// excluding the record being updated (uuid.Nil excludes nothing).
func (v *IntegrityValidator) ValidateUniqueCode(ctx context.Context, kind CodeKind, code string, excludeID uuid.UUID) error {
	switch kind {
	case CodeKindDepartment:
		_, err := v.departments.GetByCode(ctx, code, excludeID)
		if err == nil {
			recordWriteConflict("department_code")
			return newServiceError(http.StatusConflict, "ORG_CODE_CONFLICT", "department code already exists", nil)
		}
		if errors.Is(err, department.ErrNotFound) {
			return nil
		}
		return err
	case CodeKindPosition:
		_, err := v.positions.GetByCode(ctx, code, excludeID)
		if err == nil {
			recordWriteConflict("position_code")
			return newServiceError(http.StatusConflict, "ORG_POSITION_CODE_CONFLICT", "position code already exists", nil)
		}
		if errors.Is(err, position.ErrNotFound) {
			return nil
		}
		return err
	default:
		return newServiceError(http.StatusBadRequest, "ORG_INVALID_BODY", "unknown code kind", nil)
	}
}

// ValidateUniqueTitleInDepartment checks the case-insensitive title
// uniqueness rule scoped to one department.
func (v *IntegrityValidator) ValidateUniqueTitleInDepartment(ctx context.Context, title string, departmentID uuid.UUID, excludeID uuid.UUID) error {
	_, err := v.positions.GetByTitleInDepartment(ctx, title, departmentID, excludeID)
	if err == nil {
		recordWriteConflict("position_title")
		return newServiceError(http.StatusConflict, "ORG_TITLE_CONFLICT", "position title already exists in department", nil)
	}
	if errors.Is(err, position.ErrNotFound) {
		return nil
	}
	return err
}

// ValidateDepartmentAssignment checks that the department exists and is
// active and, when a reporting position is given, that it exists and is
// active. Cross-department reporting is permitted.
func (v *IntegrityValidator) ValidateDepartmentAssignment(ctx context.Context, departmentID uuid.UUID, reportsToID *uuid.UUID) error {
	dept, err := v.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, department.ErrNotFound) {
			return newServiceError(http.StatusNotFound, "ORG_DEPARTMENT_NOT_FOUND", "department not found", nil)
		}
		return err
	}
	if !dept.Active() {
		return newServiceError(http.StatusBadRequest, "ORG_DEPARTMENT_INACTIVE", "department is inactive", nil)
	}

	if reportsToID == nil {
		return nil
	}
	sup, err := v.positions.GetByID(ctx, *reportsToID)
	if err != nil {
		if errors.Is(err, position.ErrNotFound) {
			return newServiceError(http.StatusBadRequest, "ORG_REPORTS_TO_NOT_FOUND", "reporting position not found", nil)
		}
		return err
	}
	if !sup.Active() {
		return newServiceError(http.StatusBadRequest, "ORG_REPORTS_TO_INACTIVE", "reporting position is inactive", nil)
	}
	return nil
}
