package persistence

import (
	"context"

	"github.com/iota-uz/orgstruct/modules/org/domain/notification"
	"github.com/iota-uz/orgstruct/pkg/composables"
)

// PgNotificationSink persists notification records for the external delivery
// system to drain.
type PgNotificationSink struct{}

func NewNotificationSink() notification.Sink {
	return &PgNotificationSink{}
}

func (s *PgNotificationSink) Record(ctx context.Context, n notification.Notification) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO org_notifications (id, employee_id, request_number, request_type, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, n.ID, n.EmployeeID, n.RequestNumber, string(n.RequestType), n.Message, n.CreatedAt)
	return err
}
