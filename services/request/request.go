package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	requestRepo "homehub/database/repository/request"
	userRepo "homehub/database/repository/user"
	"homehub/models"
	"homehub/services/device"
	"homehub/services/notification"
	"homehub/services/policy"
	"homehub/stream"
	"homehub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicatePending signals the requester already has an outstanding
// request for the same device.
var ErrDuplicatePending = errors.New("a pending request for this device already exists")

// ErrDirectActionAllowed signals the actor could have acted directly;
// filing a request would be a policy bypass in the other direction.
var ErrDirectActionAllowed = errors.New("actor may change this device directly")

// RequestService defines business logic for the control request workflow.
type RequestService interface {
	// Submit files a control request on behalf of an actor whose role
	// policy forbids the direct change.
	Submit(ctx context.Context, actor device.Actor, input models.DeviceRequestInput) (*models.DeviceRequest, error)
	// GetByID retrieves a request by its unique ID.
	GetByID(id string) (*models.DeviceRequest, error)
	// GetAll retrieves all requests, newest first.
	GetAll() ([]models.DeviceRequest, error)
	// GetPending retrieves requests still awaiting a decision.
	GetPending() ([]models.DeviceRequest, error)
	// GetMine retrieves the requests filed by the actor.
	GetMine(requesterID string) ([]models.DeviceRequest, error)
	// Resolve transitions a PENDING request to APPROVED or REJECTED.
	// Approval applies the requested status to the device. Terminal
	// requests yield requestRepo.ErrAlreadyResolved.
	Resolve(ctx context.Context, adminID, requestID string, outcome models.RequestStatus) (*models.DeviceRequest, error)
}

// DefaultRequestService is the production implementation.
type DefaultRequestService struct {
	Repo      requestRepo.RequestRepository
	Users     userRepo.UserRepository
	Devices   device.DeviceService
	Access    device.AccessResolver
	Publisher *stream.Publisher
	Notifier  notification.NotificationService
}

// Submit validates the target, rejects duplicates, snapshots the
// requester and device for display, and notifies the admins.
func (s *DefaultRequestService) Submit(ctx context.Context, actor device.Actor, input models.DeviceRequestInput) (*models.DeviceRequest, error) {
	d, err := s.Devices.GetByID(input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	if !policy.ValidStatus(d.Type, input.RequestedStatus) {
		return nil, device.ErrInvalidStatus
	}

	allowed := policy.NewAccessSet()
	if actor.Role == models.RoleAdult || actor.Role == models.RoleChild {
		allowed, err = s.Access.AllowedDeviceIDs(actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve device access: %w", err)
		}
	}
	if policy.CanActDirectly(actor.Role, *d, allowed) {
		return nil, ErrDirectActionAllowed
	}

	dup, err := s.Repo.HasPending(input.DeviceID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate request: %w", err)
	}
	if dup {
		return nil, ErrDuplicatePending
	}

	requester, err := s.Users.GetByID(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requester: %w", err)
	}

	now := time.Now()
	req := models.DeviceRequest{
		ID:              uuid.New().String(),
		RequesterID:     actor.ID,
		DeviceID:        d.ID,
		RequestedStatus: input.RequestedStatus,
		Status:          models.RequestPending,
		Message:         input.Message,
		Requester: &models.RequesterSnapshot{
			ID:       requester.ID,
			FullName: requester.FullName,
			Email:    requester.Email,
			Role:     requester.Role,
		},
		Device: &models.DeviceSnapshot{
			ID:           d.ID,
			Name:         d.Name,
			Type:         d.Type,
			Status:       d.Status,
			IsRestricted: d.IsRestricted,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(&req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.Notifier != nil {
		title := "New device control request"
		body := fmt.Sprintf("%s wants to set %s to %s", requester.FullName, d.Name, input.RequestedStatus)
		if err := s.Notifier.PushToAdmins(ctx, title, body, map[string]string{
			"type":      "deviceRequest",
			"requestId": req.ID,
		}); err != nil {
			utils.GetLogger().Warn("admin push failed", zap.Error(err))
		}
	}

	return &req, nil
}

// GetByID retrieves one request.
func (s *DefaultRequestService) GetByID(id string) (*models.DeviceRequest, error) {
	req, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}
	return req, nil
}

// GetAll retrieves all requests, newest first.
func (s *DefaultRequestService) GetAll() ([]models.DeviceRequest, error) {
	reqs, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// GetPending retrieves requests awaiting a decision.
func (s *DefaultRequestService) GetPending() ([]models.DeviceRequest, error) {
	reqs, err := s.Repo.GetPending()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return reqs, nil
}

// GetMine retrieves the actor's own requests.
func (s *DefaultRequestService) GetMine(requesterID string) ([]models.DeviceRequest, error) {
	reqs, err := s.Repo.GetByRequester(requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// Resolve finalizes a pending request. The repository transition is
// conditional on the PENDING state, so concurrent resolutions cannot
// double-apply: exactly one caller wins, the rest see ErrAlreadyResolved.
func (s *DefaultRequestService) Resolve(ctx context.Context, adminID, requestID string, outcome models.RequestStatus) (*models.DeviceRequest, error) {
	if outcome != models.RequestApproved && outcome != models.RequestRejected {
		return nil, fmt.Errorf("outcome must be %s or %s", models.RequestApproved, models.RequestRejected)
	}

	req, err := s.Repo.Resolve(requestID, outcome)
	if err != nil {
		return nil, err
	}

	ev := models.RequestUpdateEvent{
		RequestID: req.ID,
		Status:    outcome,
		DeviceID:  req.DeviceID,
	}
	if req.Device != nil {
		ev.DeviceName = req.Device.Name
	}

	if outcome == models.RequestApproved {
		d, err := s.Devices.ApplyStatus(ctx, req.DeviceID, req.RequestedStatus, adminID, models.SourceRequest)
		if err != nil {
			// The decision is terminal and cannot be re-approved, so a
			// failed device write has to be surfaced loudly.
			utils.GetLogger().Error("approved request but device update failed",
				zap.String("requestId", req.ID),
				zap.String("deviceId", req.DeviceID),
				zap.Error(err))
		} else {
			ev.NewStatus = d.Status
		}
	}

	if s.Publisher != nil {
		s.Publisher.Publish(ctx, models.Event{
			Type:    models.EventDeviceRequestUpdated,
			UserID:  req.RequesterID,
			Request: &ev,
		})
	}

	if s.Notifier != nil {
		title := "Control request " + statusWord(outcome)
		body := fmt.Sprintf("Your request for %s was %s", ev.DeviceName, statusWord(outcome))
		if err := s.Notifier.PushToUser(ctx, req.RequesterID, title, body, map[string]string{
			"type":      "deviceRequestUpdated",
			"requestId": req.ID,
			"status":    string(outcome),
		}); err != nil {
			utils.GetLogger().Warn("requester push failed", zap.Error(err))
		}
	}

	return req, nil
}

func statusWord(outcome models.RequestStatus) string {
	if outcome == models.RequestApproved {
		return "approved"
	}
	return "rejected"
}
