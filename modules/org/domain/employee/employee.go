package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	id        uuid.UUID
	name      string
	role      Role
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

func New(name string, role Role) Employee {
	return Employee{
		name:   strings.TrimSpace(name),
		role:   role,
		active: true,
	}
}

func Hydrate(
	id uuid.UUID,
	name string,
	role Role,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
) Employee {
	return Employee{
		id:        id,
		name:      strings.TrimSpace(name),
		role:      role,
		active:    active,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (e Employee) ID() uuid.UUID        { return e.id }
func (e Employee) Name() string         { return e.name }
func (e Employee) Role() Role           { return e.role }
func (e Employee) Active() bool         { return e.active }
func (e Employee) CreatedAt() time.Time { return e.createdAt }
func (e Employee) UpdatedAt() time.Time { return e.updatedAt }
func (e Employee) IsZero() bool         { return e.id == uuid.Nil }
