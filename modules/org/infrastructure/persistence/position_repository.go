package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/orgstruct/modules/org/domain/position"
	"github.com/iota-uz/orgstruct/pkg/composables"
)

const positionColumns = `id, title, code, department_id, reports_to_id, pay_grade_id, active, created_at, updated_at`

type PgPositionRepository struct{}

func NewPositionRepository() position.Repository {
	return &PgPositionRepository{}
}

func scanPosition(row pgx.Row) (position.Position, error) {
	var (
		id           uuid.UUID
		title        string
		code         string
		departmentID uuid.UUID
		reportsToID  pgtype.UUID
		payGradeID   string
		active       bool
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(&id, &title, &code, &departmentID, &reportsToID, &payGradeID, &active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return position.Position{}, position.ErrNotFound
		}
		return position.Position{}, err
	}
	return position.Hydrate(id, title, code, departmentID, asUUIDPtr(reportsToID), payGradeID, active, createdAt, updatedAt), nil
}

func (r *PgPositionRepository) GetByID(ctx context.Context, id uuid.UUID) (position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return position.Position{}, err
	}
	return scanPosition(tx.QueryRow(ctx, `
SELECT `+positionColumns+` FROM org_positions WHERE id = $1
`, id))
}

func (r *PgPositionRepository) GetByCode(ctx context.Context, code string, excludeID uuid.UUID) (position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return position.Position{}, err
	}
	return scanPosition(tx.QueryRow(ctx, `
SELECT `+positionColumns+` FROM org_positions
WHERE code = upper(trim($1)) AND id <> $2
`, code, excludeID))
}

func (r *PgPositionRepository) GetByTitleInDepartment(ctx context.Context, title string, departmentID uuid.UUID, excludeID uuid.UUID) (position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return position.Position{}, err
	}
	return scanPosition(tx.QueryRow(ctx, `
SELECT `+positionColumns+` FROM org_positions
WHERE lower(title) = lower(trim($1)) AND department_id = $2 AND id <> $3
`, title, departmentID, excludeID))
}

func (r *PgPositionRepository) GetByDepartment(ctx context.Context, departmentID uuid.UUID) ([]position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+positionColumns+` FROM org_positions
WHERE department_id = $1
ORDER BY code
`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPositions(rows)
}

func (r *PgPositionRepository) GetAll(ctx context.Context) ([]position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+positionColumns+` FROM org_positions ORDER BY code
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPositions(rows)
}

func (r *PgPositionRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM org_positions`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgPositionRepository) Create(ctx context.Context, p position.Position) (position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return position.Position{}, err
	}
	created, err := scanPosition(tx.QueryRow(ctx, `
INSERT INTO org_positions (title, code, department_id, reports_to_id, pay_grade_id, active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+positionColumns+`
`, p.Title(), p.Code(), p.DepartmentID(), pgUUIDPtr(p.ReportsToID()), p.PayGradeID(), p.Active()))
	if err != nil {
		return position.Position{}, mapUniqueViolation(err)
	}
	return created, nil
}

func (r *PgPositionRepository) Update(ctx context.Context, p position.Position) (position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return position.Position{}, err
	}
	updated, err := scanPosition(tx.QueryRow(ctx, `
UPDATE org_positions
SET title = $2, code = $3, department_id = $4, reports_to_id = $5, pay_grade_id = $6, active = $7, updated_at = now()
WHERE id = $1
RETURNING `+positionColumns+`
`, p.ID(), p.Title(), p.Code(), p.DepartmentID(), pgUUIDPtr(p.ReportsToID()), p.PayGradeID(), p.Active()))
	if err != nil {
		return position.Position{}, mapUniqueViolation(err)
	}
	return updated, nil
}

func collectPositions(rows pgx.Rows) ([]position.Position, error) {
	var out []position.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
