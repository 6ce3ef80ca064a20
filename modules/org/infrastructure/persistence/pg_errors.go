package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/orgstruct/modules/org/domain/changerequest"
	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/modules/org/domain/position"
)

const uniqueViolation = "23505"

// mapUniqueViolation turns unique-constraint violations into domain
// sentinels so services never see raw pg errors for expected conflicts.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "org_departments_code_key":
		return department.ErrDuplicateCode
	case "org_positions_code_key":
		return position.ErrDuplicateCode
	case "org_positions_department_title_key":
		return position.ErrDuplicateTitle
	case "org_change_requests_request_number_key":
		return changerequest.ErrDuplicateNumber
	}
	return err
}
