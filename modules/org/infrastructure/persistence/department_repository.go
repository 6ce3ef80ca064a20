package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/pkg/composables"
)

const departmentColumns = `id, name, code, active, parent_id, created_at, updated_at`

type PgDepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &PgDepartmentRepository{}
}

func scanDepartment(row pgx.Row) (department.Department, error) {
	var (
		id        uuid.UUID
		name      string
		code      string
		active    bool
		parentID  pgtype.UUID
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &code, &active, &parentID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrNotFound
		}
		return department.Department{}, err
	}
	return department.Hydrate(id, name, code, active, asUUIDPtr(parentID), createdAt, updatedAt), nil
}

func (r *PgDepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}
	return scanDepartment(tx.QueryRow(ctx, `
SELECT `+departmentColumns+` FROM org_departments WHERE id = $1
`, id))
}

func (r *PgDepartmentRepository) GetByCode(ctx context.Context, code string, excludeID uuid.UUID) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}
	return scanDepartment(tx.QueryRow(ctx, `
SELECT `+departmentColumns+` FROM org_departments
WHERE code = upper(trim($1)) AND id <> $2
`, code, excludeID))
}

func (r *PgDepartmentRepository) GetAll(ctx context.Context) ([]department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+departmentColumns+` FROM org_departments ORDER BY code
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDepartments(rows)
}

func (r *PgDepartmentRepository) GetPaginated(ctx context.Context, params *department.FindParams) ([]department.Department, int64, error) {
	if params == nil {
		params = &department.FindParams{}
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	q := "%" + params.Q + "%"
	var total int64
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*) FROM org_departments WHERE name ILIKE $1 OR code ILIKE $1
`, q).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, `
SELECT `+departmentColumns+` FROM org_departments
WHERE name ILIKE $1 OR code ILIKE $1
ORDER BY code
LIMIT $2 OFFSET $3
`, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectDepartments(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PgDepartmentRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM org_departments`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgDepartmentRepository) Create(ctx context.Context, d department.Department) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}
	created, err := scanDepartment(tx.QueryRow(ctx, `
INSERT INTO org_departments (name, code, active, parent_id)
VALUES ($1, $2, $3, $4)
RETURNING `+departmentColumns+`
`, d.Name(), d.Code(), d.Active(), pgUUIDPtr(d.ParentID())))
	if err != nil {
		return department.Department{}, mapUniqueViolation(err)
	}
	return created, nil
}

func (r *PgDepartmentRepository) Update(ctx context.Context, d department.Department) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}
	updated, err := scanDepartment(tx.QueryRow(ctx, `
UPDATE org_departments
SET name = $2, code = $3, active = $4, parent_id = $5, updated_at = now()
WHERE id = $1
RETURNING `+departmentColumns+`
`, d.ID(), d.Name(), d.Code(), d.Active(), pgUUIDPtr(d.ParentID())))
	if err != nil {
		return department.Department{}, mapUniqueViolation(err)
	}
	return updated, nil
}

func collectDepartments(rows pgx.Rows) ([]department.Department, error) {
	var out []department.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
