package position

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("position not found")
	// Store-constraint sentinels; the validator pre-checks are only an
	// optimization.
	ErrDuplicateCode  = errors.New("position code already exists")
	ErrDuplicateTitle = errors.New("position title already exists in department")
)

type FindParams struct {
	DepartmentID uuid.UUID
	Limit        int
	Offset       int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Position, error)
	// GetByCode matches code exactly, skipping excludeID. uuid.Nil excludes
	// nothing.
	GetByCode(ctx context.Context, code string, excludeID uuid.UUID) (Position, error)
	// GetByTitleInDepartment matches title case-insensitively within one
	// department, skipping excludeID.
	GetByTitleInDepartment(ctx context.Context, title string, departmentID uuid.UUID, excludeID uuid.UUID) (Position, error)
	GetByDepartment(ctx context.Context, departmentID uuid.UUID) ([]Position, error)
	GetAll(ctx context.Context) ([]Position, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p Position) (Position, error)
	Update(ctx context.Context, p Position) (Position, error)
}
