// Package events holds the payloads published on the in-process event bus
// after successful writes. Subscribers receive them by signature match.
package events

import (
	"github.com/iota-uz/orgstruct/modules/org/domain/changerequest"
	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/modules/org/domain/position"
)

type DepartmentCreated struct {
	Department department.Department
}

type DepartmentUpdated struct {
	Department department.Department
}

type PositionCreated struct {
	Position position.Position
}

type PositionUpdated struct {
	Position position.Position
}

type PositionReassigned struct {
	Position position.Position
}

type PositionDeactivated struct {
	Position position.Position
}

type ChangeRequestCreated struct {
	Request *changerequest.ChangeRequest
}

type ChangeRequestSubmitted struct {
	Request *changerequest.ChangeRequest
}

type ChangeRequestCancelled struct {
	Request *changerequest.ChangeRequest
}

// ChangeRequestDecided is published for both review outcomes; Approved
// distinguishes them.
type ChangeRequestDecided struct {
	Request  *changerequest.ChangeRequest
	Approved bool
}

type ChangeRequestImplemented struct {
	Request *changerequest.ChangeRequest
}
