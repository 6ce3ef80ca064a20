package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgstruct/modules/org/domain/changerequest"
	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/modules/org/domain/employee"
	"github.com/iota-uz/orgstruct/modules/org/domain/events"
	"github.com/iota-uz/orgstruct/modules/org/domain/notification"
	"github.com/iota-uz/orgstruct/modules/org/domain/position"
	"github.com/iota-uz/orgstruct/pkg/composables"
	"github.com/iota-uz/orgstruct/pkg/eventbus"
)

// ChangeRequestService drives the change request lifecycle. Status
// read-modify-write happens inside one transaction; notification emission is
// best-effort and never rolls back the transition it follows.
type ChangeRequestService struct {
	requests      changerequest.Repository
	employees     employee.Repository
	departments   department.Repository
	positions     position.Repository
	notifications notification.Sink
	numbers       *RequestNumberGenerator
	org           *OrgService
	publisher     eventbus.EventBus
	log           *logrus.Logger
}

func NewChangeRequestService(
	requests changerequest.Repository,
	employees employee.Repository,
	departments department.Repository,
	positions position.Repository,
	notifications notification.Sink,
	numbers *RequestNumberGenerator,
	org *OrgService,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *ChangeRequestService {
	return &ChangeRequestService{
		requests:      requests,
		employees:     employees,
		departments:   departments,
		positions:     positions,
		notifications: notifications,
		numbers:       numbers,
		org:           org,
		publisher:     publisher,
		log:           log,
	}
}

type CreateChangeRequestDTO struct {
	RequesterID        uuid.UUID          `validate:"required"`
	Type               changerequest.Type `validate:"required"`
	TargetDepartmentID *uuid.UUID
	TargetPositionID   *uuid.UUID
	Details            string
	Reason             string
}

func (s *ChangeRequestService) Create(ctx context.Context, dto CreateChangeRequestDTO) (*changerequest.ChangeRequest, error) {
	if verrs, ok := validateDTO(&dto, "Org.ChangeRequests"); !ok {
		return nil, invalidBody(verrs)
	}
	if !dto.Type.Valid() {
		return nil, newServiceError(http.StatusBadRequest, "ORG_INVALID_REQUEST_TYPE", "unknown request type", nil)
	}
	if dto.Type.RequiresDepartmentTarget() && dto.TargetDepartmentID == nil {
		return nil, newServiceError(http.StatusBadRequest, "ORG_MISSING_TARGET", "target_department_id is required for department requests", nil)
	}
	if dto.Type.RequiresPositionTarget() && dto.TargetPositionID == nil {
		return nil, newServiceError(http.StatusBadRequest, "ORG_MISSING_TARGET", "target_position_id is required for position update/close requests", nil)
	}

	if _, err := s.employees.GetByID(ctx, dto.RequesterID); err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, newServiceError(http.StatusNotFound, "ORG_REQUESTER_NOT_FOUND", "requester not found", nil)
		}
		return nil, err
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*changerequest.ChangeRequest, error) {
		number, err := s.numbers.Next(txCtx, s.requests)
		if err != nil {
			return nil, err
		}
		cr := &changerequest.ChangeRequest{
			RequestNumber:      number,
			RequesterID:        dto.RequesterID,
			Type:               dto.Type,
			TargetDepartmentID: dto.TargetDepartmentID,
			TargetPositionID:   dto.TargetPositionID,
			Details:            dto.Details,
			Reason:             dto.Reason,
			Status:             changerequest.StatusDraft,
		}
		created, err := s.requests.Create(txCtx, cr)
		if err != nil {
			if errors.Is(err, changerequest.ErrDuplicateNumber) {
				recordNumberCollision()
				return nil, newServiceError(http.StatusConflict, "ORG_REQUEST_NUMBER_CONFLICT", "request number already exists", err)
			}
			return nil, err
		}
		return created, nil
	})
	if err != nil {
		return nil, err
	}

	recordTransition(string(changerequest.StatusDraft))
	s.publisher.Publish(events.ChangeRequestCreated{Request: created})
	return created, nil
}

func (s *ChangeRequestService) Submit(ctx context.Context, requestID, submitterID uuid.UUID) (*changerequest.ChangeRequest, error) {
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*changerequest.ChangeRequest, error) {
		cr, err := s.getForUpdate(txCtx, requestID)
		if err != nil {
			return nil, err
		}
		if !cr.RequestedBy(submitterID) {
			return nil, newServiceError(http.StatusForbidden, "ORG_NOT_REQUESTER", "only the original requester may submit", nil)
		}
		if cr.Status != changerequest.StatusDraft {
			return nil, newServiceError(http.StatusBadRequest, "ORG_WRONG_STATUS", "only draft requests can be submitted", nil)
		}

		now := time.Now().UTC()
		cr.Status = changerequest.StatusSubmitted
		cr.SubmittedByID = &submitterID
		cr.SubmittedAt = &now
		return s.requests.Update(txCtx, cr)
	})
	if err != nil {
		return nil, err
	}

	recordTransition(string(changerequest.StatusSubmitted))
	// Notification emission is deliberately outside the transaction: the
	// transition has already succeeded and must not be rolled back.
	s.notifyAdmins(ctx, updated)
	s.publisher.Publish(events.ChangeRequestSubmitted{Request: updated})
	return updated, nil
}

type UpdateDraftDTO struct {
	Details *string
	Reason  *string
}

func (s *ChangeRequestService) UpdateDraft(ctx context.Context, requestID, employeeID uuid.UUID, patch UpdateDraftDTO) (*changerequest.ChangeRequest, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*changerequest.ChangeRequest, error) {
		cr, err := s.getForUpdate(txCtx, requestID)
		if err != nil {
			return nil, err
		}
		if !cr.RequestedBy(employeeID) {
			return nil, newServiceError(http.StatusForbidden, "ORG_NOT_REQUESTER", "only the original requester may update", nil)
		}
		if !cr.Editable() {
			return nil, newServiceError(http.StatusBadRequest, "ORG_NOT_DRAFT", "only draft requests are editable", nil)
		}

		if patch.Details != nil {
			cr.Details = *patch.Details
		}
		if patch.Reason != nil {
			cr.Reason = *patch.Reason
		}
		return s.requests.Update(txCtx, cr)
	})
}

func (s *ChangeRequestService) Cancel(ctx context.Context, requestID, employeeID uuid.UUID) (*changerequest.ChangeRequest, error) {
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*changerequest.ChangeRequest, error) {
		cr, err := s.getForUpdate(txCtx, requestID)
		if err != nil {
			return nil, err
		}
		if !cr.RequestedBy(employeeID) {
			return nil, newServiceError(http.StatusForbidden, "ORG_NOT_REQUESTER", "only the original requester may cancel", nil)
		}
		if !cr.Cancelable() {
			return nil, newServiceError(http.StatusBadRequest, "ORG_ALREADY_FINAL", "request is already final", nil)
		}

		cr.Status = changerequest.StatusCancelled
		return s.requests.Update(txCtx, cr)
	})
	if err != nil {
		return nil, err
	}

	recordTransition(string(changerequest.StatusCancelled))
	s.publisher.Publish(events.ChangeRequestCancelled{Request: updated})
	return updated, nil
}

// StartReview moves a submitted request under review. Reviewer authorization
// goes through the closed role predicate, never string comparison at call
// sites.
func (s *ChangeRequestService) StartReview(ctx context.Context, requestID, reviewerID uuid.UUID) (*changerequest.ChangeRequest, error) {
	if err := s.requireReviewer(ctx, reviewerID); err != nil {
		return nil, err
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*changerequest.ChangeRequest, error) {
		cr, err := s.getForUpdate(txCtx, requestID)
		if err != nil {
			return nil, err
		}
		if cr.Status != changerequest.StatusSubmitted {
			return nil, newServiceError(http.StatusBadRequest, "ORG_WRONG_STATUS", "only submitted requests can move under review", nil)
		}

		cr.Status = changerequest.StatusUnderReview
		return s.requests.Update(txCtx, cr)
	})
	if err != nil {
		return nil, err
	}

	recordTransition(string(changerequest.StatusUnderReview))
	return updated, nil
}

// Decide applies a review outcome to a submitted or under-review request.
func (s *ChangeRequestService) Decide(ctx context.Context, requestID, reviewerID uuid.UUID, approve bool) (*changerequest.ChangeRequest, error) {
	if err := s.requireReviewer(ctx, reviewerID); err != nil {
		return nil, err
	}

	next := changerequest.StatusRejected
	if approve {
		next = changerequest.StatusApproved
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*changerequest.ChangeRequest, error) {
		cr, err := s.getForUpdate(txCtx, requestID)
		if err != nil {
			return nil, err
		}
		if !cr.Status.Reviewable() {
			return nil, newServiceError(http.StatusBadRequest, "ORG_NOT_REVIEWABLE", "request is not in a reviewable state", nil)
		}

		cr.Status = next
		return s.requests.Update(txCtx, cr)
	})
	if err != nil {
		return nil, err
	}

	recordTransition(string(next))
	s.publisher.Publish(events.ChangeRequestDecided{Request: updated, Approved: approve})
	return updated, nil
}

// Implement finalizes an approved request. Close-position requests carry a
// structured target and are applied through the validator-guarded OrgService;
// the remaining types describe their change in free text and are applied
// out-of-band by a privileged caller before this transition.
func (s *ChangeRequestService) Implement(ctx context.Context, requestID uuid.UUID) (*changerequest.ChangeRequest, error) {
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*changerequest.ChangeRequest, error) {
		cr, err := s.getForUpdate(txCtx, requestID)
		if err != nil {
			return nil, err
		}
		if cr.Status != changerequest.StatusApproved {
			return nil, newServiceError(http.StatusBadRequest, "ORG_WRONG_STATUS", "only approved requests can be implemented", nil)
		}

		if cr.Type == changerequest.TypeClosePosition && cr.TargetPositionID != nil {
			if _, err := s.org.DeactivatePosition(txCtx, *cr.TargetPositionID); err != nil {
				return nil, err
			}
		}

		cr.Status = changerequest.StatusImplemented
		return s.requests.Update(txCtx, cr)
	})
	if err != nil {
		return nil, err
	}

	recordTransition(string(changerequest.StatusImplemented))
	s.publisher.Publish(events.ChangeRequestImplemented{Request: updated})
	return updated, nil
}

func (s *ChangeRequestService) GetByID(ctx context.Context, requestID uuid.UUID) (*changerequest.ChangeRequest, error) {
	return s.getForUpdate(ctx, requestID)
}

func (s *ChangeRequestService) ListByRequester(ctx context.Context, employeeID uuid.UUID) ([]*changerequest.ChangeRequest, error) {
	return s.requests.GetByRequester(ctx, employeeID)
}

// ChangeRequestView is a change request with its references resolved for
// display. When a reference no longer resolves, the name fields stay empty
// and the raw ids remain usable: list reads degrade instead of failing.
type ChangeRequestView struct {
	*changerequest.ChangeRequest
	RequesterName        string
	TargetDepartmentName string
	TargetPositionTitle  string
}

func (s *ChangeRequestService) ListPending(ctx context.Context) ([]ChangeRequestView, error) {
	pending, err := s.requests.GetPending(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveViews(ctx, pending), nil
}

func (s *ChangeRequestService) ListAll(ctx context.Context) ([]ChangeRequestView, error) {
	all, err := s.requests.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveViews(ctx, all), nil
}

func (s *ChangeRequestService) resolveViews(ctx context.Context, requests []*changerequest.ChangeRequest) []ChangeRequestView {
	views := make([]ChangeRequestView, 0, len(requests))
	for _, cr := range requests {
		view := ChangeRequestView{ChangeRequest: cr}
		if emp, err := s.employees.GetByID(ctx, cr.RequesterID); err == nil {
			view.RequesterName = emp.Name()
		} else {
			s.log.WithError(err).WithField("request_number", cr.RequestNumber).Debug("requester did not resolve")
		}
		if cr.TargetDepartmentID != nil {
			if dept, err := s.departments.GetByID(ctx, *cr.TargetDepartmentID); err == nil {
				view.TargetDepartmentName = dept.Name()
			} else {
				s.log.WithError(err).WithField("request_number", cr.RequestNumber).Debug("target department did not resolve")
			}
		}
		if cr.TargetPositionID != nil {
			if pos, err := s.positions.GetByID(ctx, *cr.TargetPositionID); err == nil {
				view.TargetPositionTitle = pos.Title()
			} else {
				s.log.WithError(err).WithField("request_number", cr.RequestNumber).Debug("target position did not resolve")
			}
		}
		views = append(views, view)
	}
	return views
}

func (s *ChangeRequestService) getForUpdate(ctx context.Context, requestID uuid.UUID) (*changerequest.ChangeRequest, error) {
	cr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, changerequest.ErrNotFound) {
			return nil, newServiceError(http.StatusNotFound, "ORG_REQUEST_NOT_FOUND", "change request not found", nil)
		}
		return nil, err
	}
	return cr, nil
}

func (s *ChangeRequestService) requireReviewer(ctx context.Context, reviewerID uuid.UUID) error {
	reviewer, err := s.employees.GetByID(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return newServiceError(http.StatusNotFound, "ORG_REVIEWER_NOT_FOUND", "reviewer not found", nil)
		}
		return err
	}
	if !reviewer.Role().IsAuthorizedReviewer() {
		return newServiceError(http.StatusForbidden, "ORG_NOT_REVIEWER", "employee is not an authorized reviewer", nil)
	}
	return nil
}

// notifyAdmins records one notification per administrative employee. Failures
// are logged and counted, never propagated.
func (s *ChangeRequestService) notifyAdmins(ctx context.Context, cr *changerequest.ChangeRequest) {
	admins, err := s.employees.GetByRoles(ctx, employee.AdminRoles()...)
	if err != nil {
		recordNotification("lookup_failed")
		s.log.WithError(err).Warn("admin lookup for submit notification failed")
		return
	}

	now := time.Now().UTC()
	for _, admin := range admins {
		n := notification.Notification{
			ID:            uuid.New(),
			EmployeeID:    admin.ID(),
			RequestNumber: cr.RequestNumber,
			RequestType:   cr.Type,
			Message:       fmt.Sprintf("change request %s (%s) was submitted for review", cr.RequestNumber, cr.Type),
			CreatedAt:     now,
		}
		if err := s.notifications.Record(ctx, n); err != nil {
			recordNotification("failed")
			s.log.WithError(err).WithFields(logrus.Fields{
				"request_number": cr.RequestNumber,
				"employee_id":    admin.ID(),
			}).Warn("notification record failed")
			continue
		}
		recordNotification("recorded")
	}
}
