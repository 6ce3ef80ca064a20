package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/orgstruct/modules/org/domain/changerequest"
	"github.com/iota-uz/orgstruct/pkg/composables"
)

const changeRequestColumns = `id, request_number, requester_id, type, target_department_id,
target_position_id, details, reason, status, submitted_by_id, submitted_at, created_at, updated_at`

type PgChangeRequestRepository struct{}

func NewChangeRequestRepository() changerequest.Repository {
	return &PgChangeRequestRepository{}
}

func scanChangeRequest(row pgx.Row) (*changerequest.ChangeRequest, error) {
	var (
		cr            changerequest.ChangeRequest
		crType        string
		crStatus      string
		targetDept    pgtype.UUID
		targetPos     pgtype.UUID
		submittedByID pgtype.UUID
		submittedAt   pgtype.Timestamptz
		createdAt     time.Time
		updatedAt     time.Time
	)
	err := row.Scan(
		&cr.ID, &cr.RequestNumber, &cr.RequesterID, &crType, &targetDept,
		&targetPos, &cr.Details, &cr.Reason, &crStatus, &submittedByID,
		&submittedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, changerequest.ErrNotFound
		}
		return nil, err
	}
	cr.Type = changerequest.Type(crType)
	cr.Status = changerequest.Status(crStatus)
	cr.TargetDepartmentID = asUUIDPtr(targetDept)
	cr.TargetPositionID = asUUIDPtr(targetPos)
	cr.SubmittedByID = asUUIDPtr(submittedByID)
	cr.SubmittedAt = asTimePtr(submittedAt)
	cr.CreatedAt = createdAt
	cr.UpdatedAt = updatedAt
	return &cr, nil
}

func (r *PgChangeRequestRepository) Create(ctx context.Context, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	created, err := scanChangeRequest(tx.QueryRow(ctx, `
INSERT INTO org_change_requests (
	request_number, requester_id, type, target_department_id,
	target_position_id, details, reason, status
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+changeRequestColumns+`
`,
		cr.RequestNumber, cr.RequesterID, string(cr.Type), pgUUIDPtr(cr.TargetDepartmentID),
		pgUUIDPtr(cr.TargetPositionID), cr.Details, cr.Reason, string(cr.Status),
	))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return created, nil
}

func (r *PgChangeRequestRepository) Update(ctx context.Context, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := scanChangeRequest(tx.QueryRow(ctx, `
UPDATE org_change_requests
SET details = $2, reason = $3, status = $4, submitted_by_id = $5, submitted_at = $6, updated_at = now()
WHERE id = $1
RETURNING `+changeRequestColumns+`
`,
		cr.ID, cr.Details, cr.Reason, string(cr.Status),
		pgUUIDPtr(cr.SubmittedByID), pgTimePtr(cr.SubmittedAt),
	))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return updated, nil
}

func (r *PgChangeRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanChangeRequest(tx.QueryRow(ctx, `
SELECT `+changeRequestColumns+` FROM org_change_requests WHERE id = $1
`, id))
}

func (r *PgChangeRequestRepository) ExistsByRequestNumber(ctx context.Context, requestNumber string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS(SELECT 1 FROM org_change_requests WHERE request_number = $1)
`, requestNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgChangeRequestRepository) GetByRequester(ctx context.Context, employeeID uuid.UUID) ([]*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+changeRequestColumns+` FROM org_change_requests
WHERE requester_id = $1
ORDER BY created_at DESC
`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChangeRequests(rows)
}

func (r *PgChangeRequestRepository) GetPending(ctx context.Context) ([]*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+changeRequestColumns+` FROM org_change_requests
WHERE status IN ($1, $2)
ORDER BY COALESCE(submitted_at, created_at) DESC
`, string(changerequest.StatusSubmitted), string(changerequest.StatusUnderReview))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChangeRequests(rows)
}

func (r *PgChangeRequestRepository) GetAll(ctx context.Context) ([]*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+changeRequestColumns+` FROM org_change_requests
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChangeRequests(rows)
}

func collectChangeRequests(rows pgx.Rows) ([]*changerequest.ChangeRequest, error) {
	var out []*changerequest.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}
