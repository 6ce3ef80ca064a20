package department

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Department is an organizational unit. Code is globally unique among
// departments; ParentID optionally points at another department.
type Department struct {
	id        uuid.UUID
	name      string
	code      string
	active    bool
	parentID  *uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

func New(name, code string, parentID *uuid.UUID) Department {
	return Department{
		name:     strings.TrimSpace(name),
		code:     normalizeCode(code),
		active:   true,
		parentID: parentID,
	}
}

func Hydrate(
	id uuid.UUID,
	name string,
	code string,
	active bool,
	parentID *uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) Department {
	return Department{
		id:        id,
		name:      strings.TrimSpace(name),
		code:      normalizeCode(code),
		active:    active,
		parentID:  parentID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (d Department) ID() uuid.UUID        { return d.id }
func (d Department) Name() string         { return d.name }
func (d Department) Code() string         { return d.code }
func (d Department) Active() bool         { return d.active }
func (d Department) ParentID() *uuid.UUID { return d.parentID }
func (d Department) CreatedAt() time.Time { return d.createdAt }
func (d Department) UpdatedAt() time.Time { return d.updatedAt }
func (d Department) IsZero() bool         { return d.id == uuid.Nil && d.code == "" }

func (d Department) Renamed(name string) Department {
	d.name = strings.TrimSpace(name)
	return d
}

func (d Department) Recoded(code string) Department {
	d.code = normalizeCode(code)
	return d
}

func (d Department) WithParent(parentID *uuid.UUID) Department {
	d.parentID = parentID
	return d
}

func (d Department) Activated() Department {
	d.active = true
	return d
}

func (d Department) Deactivated() Department {
	d.active = false
	return d
}

func normalizeCode(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }
