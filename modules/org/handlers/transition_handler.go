package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgstruct/modules/org/domain/events"
	"github.com/iota-uz/orgstruct/pkg/eventbus"
)

// TransitionHandler subscribes to domain events and writes an audit line per
// transition. It is wiring-time infrastructure; services stay unaware of it.
type TransitionHandler struct {
	log *logrus.Logger
}

func RegisterTransitionHandlers(bus eventbus.EventBus, log *logrus.Logger) {
	h := &TransitionHandler{log: log}
	bus.Subscribe(h.onDepartmentCreated)
	bus.Subscribe(h.onDepartmentUpdated)
	bus.Subscribe(h.onPositionCreated)
	bus.Subscribe(h.onPositionUpdated)
	bus.Subscribe(h.onPositionReassigned)
	bus.Subscribe(h.onPositionDeactivated)
	bus.Subscribe(h.onChangeRequestCreated)
	bus.Subscribe(h.onChangeRequestSubmitted)
	bus.Subscribe(h.onChangeRequestCancelled)
	bus.Subscribe(h.onChangeRequestDecided)
	bus.Subscribe(h.onChangeRequestImplemented)
}

func (h *TransitionHandler) onDepartmentCreated(ev events.DepartmentCreated) {
	h.log.WithFields(logrus.Fields{
		"department_id": ev.Department.ID(),
		"code":          ev.Department.Code(),
	}).Info("department created")
}

func (h *TransitionHandler) onDepartmentUpdated(ev events.DepartmentUpdated) {
	h.log.WithFields(logrus.Fields{
		"department_id": ev.Department.ID(),
		"active":        ev.Department.Active(),
	}).Info("department updated")
}

func (h *TransitionHandler) onPositionCreated(ev events.PositionCreated) {
	h.log.WithFields(logrus.Fields{
		"position_id":   ev.Position.ID(),
		"department_id": ev.Position.DepartmentID(),
	}).Info("position created")
}

func (h *TransitionHandler) onPositionUpdated(ev events.PositionUpdated) {
	h.log.WithField("position_id", ev.Position.ID()).Info("position updated")
}

func (h *TransitionHandler) onPositionReassigned(ev events.PositionReassigned) {
	h.log.WithFields(logrus.Fields{
		"position_id":   ev.Position.ID(),
		"department_id": ev.Position.DepartmentID(),
	}).Info("position reassigned")
}

func (h *TransitionHandler) onPositionDeactivated(ev events.PositionDeactivated) {
	h.log.WithField("position_id", ev.Position.ID()).Info("position deactivated")
}

func (h *TransitionHandler) onChangeRequestCreated(ev events.ChangeRequestCreated) {
	h.log.WithFields(logrus.Fields{
		"request_number": ev.Request.RequestNumber,
		"type":           ev.Request.Type,
	}).Info("change request created")
}

func (h *TransitionHandler) onChangeRequestSubmitted(ev events.ChangeRequestSubmitted) {
	h.log.WithField("request_number", ev.Request.RequestNumber).Info("change request submitted")
}

func (h *TransitionHandler) onChangeRequestCancelled(ev events.ChangeRequestCancelled) {
	h.log.WithField("request_number", ev.Request.RequestNumber).Info("change request cancelled")
}

func (h *TransitionHandler) onChangeRequestDecided(ev events.ChangeRequestDecided) {
	h.log.WithFields(logrus.Fields{
		"request_number": ev.Request.RequestNumber,
		"approved":       ev.Approved,
	}).Info("change request decided")
}

func (h *TransitionHandler) onChangeRequestImplemented(ev events.ChangeRequestImplemented) {
	h.log.WithField("request_number", ev.Request.RequestNumber).Info("change request implemented")
}
