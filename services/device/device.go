package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	deviceRepo "homehub/database/repository/device"
	logRepo "homehub/database/repository/log"
	"homehub/models"
	"homehub/services/policy"
	"homehub/stream"
	"homehub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrApprovalRequired signals that the actor's role forbids a direct
// status change and the mutation must go through a control request.
var ErrApprovalRequired = errors.New("status change requires admin approval")

// ErrInvalidStatus signals that the target status lies outside the
// device category's domain.
var ErrInvalidStatus = errors.New("status is not valid for this device type")

// Actor is the authenticated caller of a device mutation.
type Actor struct {
	ID   string
	Role models.Role
}

// AccessResolver resolves the set of devices an actor may act on
// directly.
type AccessResolver interface {
	AllowedDeviceIDs(userID string) (policy.AccessSet, error)
}

// DeviceService defines business logic for the device fleet.
type DeviceService interface {
	// Create registers a new device.
	Create(input models.DeviceCreate) (*models.Device, error)
	// GetByID retrieves a device by its unique ID.
	GetByID(id string) (*models.Device, error)
	// GetAll retrieves all devices.
	GetAll() ([]models.Device, error)
	// GetByRoom retrieves the devices assigned to a room.
	GetByRoom(roomID string) ([]models.Device, error)
	// Update applies a partial update to device metadata.
	Update(id string, input models.DeviceUpdate) (*models.Device, error)
	// Delete removes a device.
	Delete(id string) error
	// UpdateStatus applies a status change on behalf of an actor,
	// enforcing the role policy. ErrApprovalRequired means the caller
	// must file a control request instead.
	UpdateStatus(ctx context.Context, actor Actor, id string, status models.DeviceStatus) (*models.Device, error)
	// ApplyStatus applies an already-authorized status change (approved
	// request, schedule) without consulting the role policy.
	ApplyStatus(ctx context.Context, id string, status models.DeviceStatus, userID string, source models.LogSource) (*models.Device, error)
	// Stats summarizes the fleet for the dashboard.
	Stats() (*models.DeviceStats, error)
	// CachedStatus returns the cached status for a device, falling back
	// to the database on a cache miss.
	CachedStatus(ctx context.Context, id string) (models.DeviceStatus, error)
}

// DefaultDeviceService is the production implementation.
type DefaultDeviceService struct {
	Repo      deviceRepo.DeviceRepository
	Logs      logRepo.LogRepository
	Access    AccessResolver
	Publisher *stream.Publisher
}

// Create registers a new device, defaulting the status to the idle state
// of its category when none is given.
func (s *DefaultDeviceService) Create(input models.DeviceCreate) (*models.Device, error) {
	status := input.Status
	if status == "" {
		status = idleStatus(input.Type)
	}
	if !policy.ValidStatus(input.Type, status) {
		return nil, ErrInvalidStatus
	}

	now := time.Now()
	d := models.Device{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Type:         input.Type,
		Status:       status,
		RoomID:       input.RoomID,
		Description:  input.Description,
		Value:        input.Value,
		Unit:         input.Unit,
		MinThreshold: input.MinThreshold,
		MaxThreshold: input.MaxThreshold,
		IsRestricted: input.IsRestricted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(&d); err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	return &d, nil
}

// GetByID retrieves a device by ID.
func (s *DefaultDeviceService) GetByID(id string) (*models.Device, error) {
	d, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	return d, nil
}

// GetAll retrieves all devices.
func (s *DefaultDeviceService) GetAll() ([]models.Device, error) {
	devices, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// GetByRoom retrieves the devices assigned to a room.
func (s *DefaultDeviceService) GetByRoom(roomID string) ([]models.Device, error) {
	devices, err := s.Repo.GetByRoom(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room devices: %w", err)
	}
	return devices, nil
}

// Update applies a partial metadata update. Status is excluded here;
// status changes flow through UpdateStatus so policy and events apply.
func (s *DefaultDeviceService) Update(id string, input models.DeviceUpdate) (*models.Device, error) {
	d, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	if input.Name != nil {
		d.Name = *input.Name
	}
	if input.Type != nil {
		d.Type = *input.Type
	}
	if input.RoomID != nil {
		d.RoomID = *input.RoomID
	}
	if input.Description != nil {
		d.Description = *input.Description
	}
	if input.Value != nil {
		d.Value = input.Value
	}
	if input.Unit != nil {
		d.Unit = *input.Unit
	}
	if input.MinThreshold != nil {
		d.MinThreshold = input.MinThreshold
	}
	if input.MaxThreshold != nil {
		d.MaxThreshold = input.MaxThreshold
	}
	if input.IsRestricted != nil {
		d.IsRestricted = *input.IsRestricted
	}
	d.UpdatedAt = time.Now()
	if err := s.Repo.Update(d); err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	return d, nil
}

// Delete removes a device and drops its cached status.
func (s *DefaultDeviceService) Delete(id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	utils.GetCacheClient().Del(context.Background(), utils.DeviceStatusCachePrefix+id)
	return nil
}

// UpdateStatus enforces the role policy before applying the change.
// ADMIN always acts directly; GUEST never does; ADULT and CHILD act
// directly only on unrestricted devices within their room access.
func (s *DefaultDeviceService) UpdateStatus(ctx context.Context, actor Actor, id string, status models.DeviceStatus) (*models.Device, error) {
	d, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	if !policy.ValidStatus(d.Type, status) {
		return nil, ErrInvalidStatus
	}

	allowed := policy.NewAccessSet()
	if actor.Role == models.RoleAdult || actor.Role == models.RoleChild {
		allowed, err = s.Access.AllowedDeviceIDs(actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve device access: %w", err)
		}
	}
	if !policy.CanActDirectly(actor.Role, *d, allowed) {
		return nil, ErrApprovalRequired
	}

	return s.apply(ctx, d, status, actor.ID, models.SourceDirect)
}

// ApplyStatus is the unguarded path for mutations that carry their own
// authorization: an approved request or a firing schedule.
func (s *DefaultDeviceService) ApplyStatus(ctx context.Context, id string, status models.DeviceStatus, userID string, source models.LogSource) (*models.Device, error) {
	d, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	if !policy.ValidStatus(d.Type, status) {
		return nil, ErrInvalidStatus
	}
	return s.apply(ctx, d, status, userID, source)
}

func (s *DefaultDeviceService) apply(ctx context.Context, d *models.Device, status models.DeviceStatus, userID string, source models.LogSource) (*models.Device, error) {
	oldStatus := d.Status
	if err := s.Repo.UpdateStatus(d.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update device status: %w", err)
	}
	d.Status = status
	now := time.Now()
	d.LastActive = &now
	d.UpdatedAt = now

	s.cacheStatus(ctx, d.ID, status)

	entry := models.DeviceLog{
		ID:        uuid.New().String(),
		DeviceID:  d.ID,
		UserID:    userID,
		Action:    fmt.Sprintf("status %s -> %s", oldStatus, status),
		OldStatus: oldStatus,
		NewStatus: status,
		Source:    source,
		Timestamp: now,
	}
	if err := s.Logs.Create(&entry); err != nil {
		utils.GetLogger().Warn("failed to record device log",
			zap.String("deviceId", d.ID), zap.Error(err))
	}

	if s.Publisher != nil {
		s.Publisher.Publish(ctx, models.Event{
			Type:   models.EventDeviceStatusChanged,
			Device: &models.DeviceStatusEvent{DeviceID: d.ID, Status: status},
		})
	}
	return d, nil
}

// Stats aggregates the fleet in memory; the fleet is household-sized.
func (s *DefaultDeviceService) Stats() (*models.DeviceStats, error) {
	devices, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	stats := models.DeviceStats{
		Total:       len(devices),
		ByType:      make(map[string]int),
		ByRoom:      make(map[string]int),
		LastUpdated: time.Now(),
	}
	for _, d := range devices {
		stats.ByType[string(d.Type)]++
		stats.ByRoom[d.RoomID]++
		switch d.Status {
		case models.StatusOn, models.StatusOpen, models.StatusActive:
			stats.Active++
		}
	}
	return &stats, nil
}

// CachedStatus serves status lookups from Redis, refilling on miss.
func (s *DefaultDeviceService) CachedStatus(ctx context.Context, id string) (models.DeviceStatus, error) {
	client := utils.GetCacheClient()
	val, err := client.Get(ctx, utils.DeviceStatusCachePrefix+id).Result()
	if err == nil && val != "" {
		return models.DeviceStatus(val), nil
	}
	d, err := s.Repo.GetByID(id)
	if err != nil {
		return "", fmt.Errorf("failed to fetch device: %w", err)
	}
	s.cacheStatus(ctx, id, d.Status)
	return d.Status, nil
}

func (s *DefaultDeviceService) cacheStatus(ctx context.Context, id string, status models.DeviceStatus) {
	client := utils.GetCacheClient()
	if err := client.Set(ctx, utils.DeviceStatusCachePrefix+id, string(status), utils.DeviceStatusCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache device status",
			zap.String("deviceId", id), zap.Error(err))
	}
}

// idleStatus is the default state a newly registered device starts in.
func idleStatus(t models.DeviceType) models.DeviceStatus {
	switch policy.CategoryOf(t) {
	case policy.CategoryDoor:
		return models.StatusClose
	case policy.CategorySensor:
		return models.StatusInactive
	default:
		return models.StatusOff
	}
}
