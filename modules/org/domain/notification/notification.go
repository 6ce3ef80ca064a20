package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/orgstruct/modules/org/domain/changerequest"
)

// Notification is the record handed to the external delivery system when a
// change request transitions. The core only produces these records.
type Notification struct {
	ID            uuid.UUID          `json:"id"`
	EmployeeID    uuid.UUID          `json:"employee_id"`
	RequestNumber string             `json:"request_number"`
	RequestType   changerequest.Type `json:"request_type"`
	Message       string             `json:"message"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Sink receives notification records. Recording is best-effort from the
// workflow engine's point of view: a failing sink never rolls back the status
// transition that triggered it.
type Sink interface {
	Record(ctx context.Context, n Notification) error
}
