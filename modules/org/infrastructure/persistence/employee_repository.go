package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/orgstruct/modules/org/domain/employee"
	"github.com/iota-uz/orgstruct/pkg/composables"
)

const employeeColumns = `id, name, role, active, created_at, updated_at`

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		id        uuid.UUID
		name      string
		role      string
		active    bool
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &role, &active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrNotFound
		}
		return employee.Employee{}, err
	}
	return employee.Hydrate(id, name, employee.Role(role), active, createdAt, updatedAt), nil
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	return scanEmployee(tx.QueryRow(ctx, `
SELECT `+employeeColumns+` FROM org_employees WHERE id = $1
`, id))
}

func (r *PgEmployeeRepository) GetByRoles(ctx context.Context, roles ...employee.Role) ([]employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	rows, err := tx.Query(ctx, `
SELECT `+employeeColumns+` FROM org_employees
WHERE role = ANY($1) AND active
ORDER BY name
`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
