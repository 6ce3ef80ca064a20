package position

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Position is a named role within a department. ReportsToID links positions
// into a reporting chain that must stay acyclic across the whole hierarchy.
type Position struct {
	id           uuid.UUID
	title        string
	code         string
	departmentID uuid.UUID
	reportsToID  *uuid.UUID
	payGradeID   string
	active       bool
	createdAt    time.Time
	updatedAt    time.Time
}

func New(title, code string, departmentID uuid.UUID, reportsToID *uuid.UUID, payGradeID string) Position {
	return Position{
		title:        strings.TrimSpace(title),
		code:         normalizeCode(code),
		departmentID: departmentID,
		reportsToID:  reportsToID,
		payGradeID:   strings.TrimSpace(payGradeID),
		active:       true,
	}
}

func Hydrate(
	id uuid.UUID,
	title string,
	code string,
	departmentID uuid.UUID,
	reportsToID *uuid.UUID,
	payGradeID string,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
) Position {
	return Position{
		id:           id,
		title:        strings.TrimSpace(title),
		code:         normalizeCode(code),
		departmentID: departmentID,
		reportsToID:  reportsToID,
		payGradeID:   strings.TrimSpace(payGradeID),
		active:       active,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (p Position) ID() uuid.UUID           { return p.id }
func (p Position) Title() string           { return p.title }
func (p Position) Code() string            { return p.code }
func (p Position) DepartmentID() uuid.UUID { return p.departmentID }
func (p Position) ReportsToID() *uuid.UUID { return p.reportsToID }
func (p Position) PayGradeID() string      { return p.payGradeID }
func (p Position) Active() bool            { return p.active }
func (p Position) CreatedAt() time.Time    { return p.createdAt }
func (p Position) UpdatedAt() time.Time    { return p.updatedAt }
func (p Position) IsZero() bool            { return p.id == uuid.Nil && p.code == "" }

func (p Position) Retitled(title string) Position {
	p.title = strings.TrimSpace(title)
	return p
}

func (p Position) Recoded(code string) Position {
	p.code = normalizeCode(code)
	return p
}

func (p Position) ReportingTo(reportsToID *uuid.UUID) Position {
	p.reportsToID = reportsToID
	return p
}

func (p Position) AssignedTo(departmentID uuid.UUID) Position {
	p.departmentID = departmentID
	return p
}

func (p Position) WithPayGrade(payGradeID string) Position {
	p.payGradeID = strings.TrimSpace(payGradeID)
	return p
}

func (p Position) Deactivated() Position {
	p.active = false
	return p
}

func normalizeCode(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }
