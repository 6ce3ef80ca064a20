package changerequest

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("change request not found")
	// ErrDuplicateNumber is returned by the store when its unique constraint
	// on request_number fires. The store constraint is the authoritative
	// guard; the generator's existence probe is only a pre-check.
	ErrDuplicateNumber = errors.New("request number already exists")
)

type Repository interface {
	Create(ctx context.Context, cr *ChangeRequest) (*ChangeRequest, error)
	Update(ctx context.Context, cr *ChangeRequest) (*ChangeRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ChangeRequest, error)
	ExistsByRequestNumber(ctx context.Context, requestNumber string) (bool, error)
	GetByRequester(ctx context.Context, employeeID uuid.UUID) ([]*ChangeRequest, error)
	// GetPending returns submitted and under-review requests ordered by
	// submission time descending, falling back to creation time.
	GetPending(ctx context.Context) ([]*ChangeRequest, error)
	GetAll(ctx context.Context) ([]*ChangeRequest, error)
}
