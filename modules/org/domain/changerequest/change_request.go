package changerequest

import (
	"time"

	"github.com/google/uuid"
)

// ChangeRequest is a governed proposal to alter the org hierarchy. It moves
// through the fixed lifecycle draft -> submitted -> under_review ->
// approved/rejected, with approved requests eventually implemented. Rejected,
// implemented and cancelled are terminal.
type ChangeRequest struct {
	ID                 uuid.UUID  `json:"id"`
	RequestNumber      string     `json:"request_number"`
	RequesterID        uuid.UUID  `json:"requester_id"`
	Type               Type       `json:"type"`
	TargetDepartmentID *uuid.UUID `json:"target_department_id,omitempty"`
	TargetPositionID   *uuid.UUID `json:"target_position_id,omitempty"`
	Details            string     `json:"details,omitempty"`
	Reason             string     `json:"reason,omitempty"`
	Status             Status     `json:"status"`
	SubmittedByID      *uuid.UUID `json:"submitted_by_id,omitempty"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Editable reports whether details/reason may still be changed.
func (cr *ChangeRequest) Editable() bool {
	return cr.Status == StatusDraft
}

// Cancelable reports whether the request may still be withdrawn by its
// requester.
func (cr *ChangeRequest) Cancelable() bool {
	return cr.Status == StatusDraft || cr.Status == StatusSubmitted
}

// RequestedBy reports whether employeeID is the original requester. Submit,
// update and cancel are requester-only operations.
func (cr *ChangeRequest) RequestedBy(employeeID uuid.UUID) bool {
	return cr.RequesterID == employeeID
}
