package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/modules/org/domain/events"
	"github.com/iota-uz/orgstruct/modules/org/domain/position"
	"github.com/iota-uz/orgstruct/pkg/composables"
	"github.com/iota-uz/orgstruct/pkg/constants"
	"github.com/iota-uz/orgstruct/pkg/eventbus"
	"github.com/iota-uz/orgstruct/pkg/serrors"
)

// OrgService owns direct, privileged mutations of the hierarchy. Every write
// goes through the IntegrityValidator in order existence -> uniqueness ->
// cycle, inside a single transaction.
type OrgService struct {
	departments department.Repository
	positions   position.Repository
	validator   *IntegrityValidator
	publisher   eventbus.EventBus
}

func NewOrgService(
	departments department.Repository,
	positions position.Repository,
	validator *IntegrityValidator,
	publisher eventbus.EventBus,
) *OrgService {
	return &OrgService{
		departments: departments,
		positions:   positions,
		validator:   validator,
		publisher:   publisher,
	}
}

func invalidBody(verrs serrors.ValidationErrors) error {
	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return newServiceError(
		http.StatusBadRequest,
		"ORG_INVALID_BODY",
		fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", ")),
		nil,
	)
}

func validateDTO(dto any, localePrefix string) (serrors.ValidationErrors, bool) {
	errs := constants.Validate.Struct(dto)
	if errs == nil {
		return serrors.ValidationErrors{}, true
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(errs, &validatorErrs) {
		return serrors.ValidationErrors{"_": serrors.NewError("FIELD_INVALID", errs.Error(), "")}, false
	}
	return serrors.ProcessValidatorErrors(validatorErrs, func(field string) string {
		return fmt.Sprintf("%s.Fields.%s", localePrefix, field)
	}), false
}

type CreateDepartmentDTO struct {
	Name       string `validate:"required"`
	Code       string `validate:"required"`
	ParentCode string
}

func (s *OrgService) CreateDepartment(ctx context.Context, dto CreateDepartmentDTO) (department.Department, error) {
	if verrs, ok := validateDTO(&dto, "Org.Departments"); !ok {
		return department.Department{}, invalidBody(verrs)
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (department.Department, error) {
		var parentID *uuid.UUID
		if strings.TrimSpace(dto.ParentCode) != "" {
			parent, err := s.departments.GetByCode(txCtx, dto.ParentCode, uuid.Nil)
			if err != nil {
				if errors.Is(err, department.ErrNotFound) {
					return department.Department{}, newServiceError(http.StatusBadRequest, "ORG_PARENT_NOT_FOUND", "parent department not found", nil)
				}
				return department.Department{}, err
			}
			id := parent.ID()
			parentID = &id
		}

		if err := s.validator.ValidateUniqueCode(txCtx, CodeKindDepartment, dto.Code, uuid.Nil); err != nil {
			return department.Department{}, err
		}

		created, err := s.departments.Create(txCtx, department.New(dto.Name, dto.Code, parentID))
		if err != nil {
			return department.Department{}, mapStoreConflict(err)
		}
		s.publisher.Publish(events.DepartmentCreated{Department: created})
		return created, nil
	})
}

type UpdateDepartmentDTO struct {
	Name     *string
	Code     *string
	ParentID *uuid.UUID
	Active   *bool
}

func (s *OrgService) UpdateDepartment(ctx context.Context, id uuid.UUID, patch UpdateDepartmentDTO) (department.Department, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (department.Department, error) {
		dept, err := s.departments.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, department.ErrNotFound) {
				return department.Department{}, newServiceError(http.StatusNotFound, "ORG_DEPARTMENT_NOT_FOUND", "department not found", nil)
			}
			return department.Department{}, err
		}

		if patch.Name != nil {
			dept = dept.Renamed(*patch.Name)
		}
		if patch.Code != nil {
			if err := s.validator.ValidateUniqueCode(txCtx, CodeKindDepartment, *patch.Code, id); err != nil {
				return department.Department{}, err
			}
			dept = dept.Recoded(*patch.Code)
		}
		if patch.ParentID != nil {
			if *patch.ParentID == id {
				return department.Department{}, newServiceError(http.StatusBadRequest, "ORG_INVALID_BODY", "department cannot be its own parent", nil)
			}
			if _, err := s.departments.GetByID(txCtx, *patch.ParentID); err != nil {
				if errors.Is(err, department.ErrNotFound) {
					return department.Department{}, newServiceError(http.StatusBadRequest, "ORG_PARENT_NOT_FOUND", "parent department not found", nil)
				}
				return department.Department{}, err
			}
			dept = dept.WithParent(patch.ParentID)
		}
		if patch.Active != nil {
			if *patch.Active {
				dept = dept.Activated()
			} else {
				dept = dept.Deactivated()
			}
		}

		updated, err := s.departments.Update(txCtx, dept)
		if err != nil {
			return department.Department{}, mapStoreConflict(err)
		}
		s.publisher.Publish(events.DepartmentUpdated{Department: updated})
		return updated, nil
	})
}

func (s *OrgService) DeactivateDepartment(ctx context.Context, id uuid.UUID) (department.Department, error) {
	active := false
	return s.UpdateDepartment(ctx, id, UpdateDepartmentDTO{Active: &active})
}

func (s *OrgService) GetDepartment(ctx context.Context, id uuid.UUID) (department.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, department.ErrNotFound) {
			return department.Department{}, newServiceError(http.StatusNotFound, "ORG_DEPARTMENT_NOT_FOUND", "department not found", nil)
		}
		return department.Department{}, err
	}
	return dept, nil
}

func (s *OrgService) ListDepartments(ctx context.Context, params *department.FindParams) ([]department.Department, int64, error) {
	return s.departments.GetPaginated(ctx, params)
}

type CreatePositionDTO struct {
	Title        string    `validate:"required"`
	Code         string    `validate:"required"`
	DepartmentID uuid.UUID `validate:"required"`
	ReportsToID  *uuid.UUID
	PayGradeID   string `validate:"required"`
}

func (s *OrgService) CreatePosition(ctx context.Context, dto CreatePositionDTO) (position.Position, error) {
	if verrs, ok := validateDTO(&dto, "Org.Positions"); !ok {
		return position.Position{}, invalidBody(verrs)
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (position.Position, error) {
		if err := s.validator.ValidateDepartmentAssignment(txCtx, dto.DepartmentID, dto.ReportsToID); err != nil {
			return position.Position{}, err
		}
		if err := s.validator.ValidateUniqueCode(txCtx, CodeKindPosition, dto.Code, uuid.Nil); err != nil {
			return position.Position{}, err
		}
		if err := s.validator.ValidateUniqueTitleInDepartment(txCtx, dto.Title, dto.DepartmentID, uuid.Nil); err != nil {
			return position.Position{}, err
		}
		// The new position has no id yet, so a loop through it is impossible;
		// the walk still rejects pre-existing chain corruption.
		if err := s.validator.ValidateNoCycle(txCtx, uuid.Nil, dto.ReportsToID); err != nil {
			return position.Position{}, err
		}

		created, err := s.positions.Create(txCtx, position.New(dto.Title, dto.Code, dto.DepartmentID, dto.ReportsToID, dto.PayGradeID))
		if err != nil {
			return position.Position{}, mapStoreConflict(err)
		}
		s.publisher.Publish(events.PositionCreated{Position: created})
		return created, nil
	})
}

type UpdatePositionDTO struct {
	Title      *string
	Code       *string
	PayGradeID *string
	// ReportsToID replaces the reporting edge when set; ClearReportsTo
	// removes it. Setting both is invalid.
	ReportsToID    *uuid.UUID
	ClearReportsTo bool
}

func (s *OrgService) UpdatePosition(ctx context.Context, id uuid.UUID, patch UpdatePositionDTO) (position.Position, error) {
	if patch.ReportsToID != nil && patch.ClearReportsTo {
		return position.Position{}, newServiceError(http.StatusBadRequest, "ORG_INVALID_BODY", "reports_to_id and clear_reports_to are mutually exclusive", nil)
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (position.Position, error) {
		pos, err := s.positions.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, position.ErrNotFound) {
				return position.Position{}, newServiceError(http.StatusNotFound, "ORG_POSITION_NOT_FOUND", "position not found", nil)
			}
			return position.Position{}, err
		}

		if patch.ReportsToID != nil {
			if err := s.validator.ValidateDepartmentAssignment(txCtx, pos.DepartmentID(), patch.ReportsToID); err != nil {
				return position.Position{}, err
			}
		}
		if patch.Code != nil {
			if err := s.validator.ValidateUniqueCode(txCtx, CodeKindPosition, *patch.Code, id); err != nil {
				return position.Position{}, err
			}
			pos = pos.Recoded(*patch.Code)
		}
		if patch.Title != nil {
			if err := s.validator.ValidateUniqueTitleInDepartment(txCtx, *patch.Title, pos.DepartmentID(), id); err != nil {
				return position.Position{}, err
			}
			pos = pos.Retitled(*patch.Title)
		}
		if patch.PayGradeID != nil {
			pos = pos.WithPayGrade(*patch.PayGradeID)
		}
		if patch.ReportsToID != nil {
			if err := s.validator.ValidateNoCycle(txCtx, id, patch.ReportsToID); err != nil {
				return position.Position{}, err
			}
			pos = pos.ReportingTo(patch.ReportsToID)
		}
		if patch.ClearReportsTo {
			pos = pos.ReportingTo(nil)
		}

		updated, err := s.positions.Update(txCtx, pos)
		if err != nil {
			return position.Position{}, mapStoreConflict(err)
		}
		s.publisher.Publish(events.PositionUpdated{Position: updated})
		return updated, nil
	})
}

// ReassignPosition moves a position into another active department. The
// reporting edge is kept; cross-department reporting is permitted.
func (s *OrgService) ReassignPosition(ctx context.Context, id uuid.UUID, newDepartmentID uuid.UUID) (position.Position, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (position.Position, error) {
		pos, err := s.positions.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, position.ErrNotFound) {
				return position.Position{}, newServiceError(http.StatusNotFound, "ORG_POSITION_NOT_FOUND", "position not found", nil)
			}
			return position.Position{}, err
		}

		if err := s.validator.ValidateDepartmentAssignment(txCtx, newDepartmentID, nil); err != nil {
			return position.Position{}, err
		}
		if err := s.validator.ValidateUniqueTitleInDepartment(txCtx, pos.Title(), newDepartmentID, id); err != nil {
			return position.Position{}, err
		}

		updated, err := s.positions.Update(txCtx, pos.AssignedTo(newDepartmentID))
		if err != nil {
			return position.Position{}, mapStoreConflict(err)
		}
		s.publisher.Publish(events.PositionReassigned{Position: updated})
		return updated, nil
	})
}

func (s *OrgService) DeactivatePosition(ctx context.Context, id uuid.UUID) (position.Position, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (position.Position, error) {
		pos, err := s.positions.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, position.ErrNotFound) {
				return position.Position{}, newServiceError(http.StatusNotFound, "ORG_POSITION_NOT_FOUND", "position not found", nil)
			}
			return position.Position{}, err
		}

		updated, err := s.positions.Update(txCtx, pos.Deactivated())
		if err != nil {
			return position.Position{}, mapStoreConflict(err)
		}
		s.publisher.Publish(events.PositionDeactivated{Position: updated})
		return updated, nil
	})
}

func (s *OrgService) GetPosition(ctx context.Context, id uuid.UUID) (position.Position, error) {
	pos, err := s.positions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, position.ErrNotFound) {
			return position.Position{}, newServiceError(http.StatusNotFound, "ORG_POSITION_NOT_FOUND", "position not found", nil)
		}
		return position.Position{}, err
	}
	return pos, nil
}

func (s *OrgService) ListPositionsByDepartment(ctx context.Context, departmentID uuid.UUID) ([]position.Position, error) {
	return s.positions.GetByDepartment(ctx, departmentID)
}
