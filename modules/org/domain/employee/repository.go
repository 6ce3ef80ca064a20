package employee

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("employee not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Employee, error)
	GetByRoles(ctx context.Context, roles ...Role) ([]Employee, error)
}
