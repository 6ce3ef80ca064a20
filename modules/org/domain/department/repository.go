package department

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("department not found")
	// ErrDuplicateCode is returned when the store's unique constraint on
	// code fires; the validator's pre-check is only an optimization.
	ErrDuplicateCode = errors.New("department code already exists")
)

type FindParams struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Department, error)
	// GetByCode matches code exactly, skipping excludeID so updates do not
	// collide with the record being updated. uuid.Nil excludes nothing.
	GetByCode(ctx context.Context, code string, excludeID uuid.UUID) (Department, error)
	GetAll(ctx context.Context) ([]Department, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Department, int64, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, d Department) (Department, error)
	Update(ctx context.Context, d Department) (Department, error)
}
