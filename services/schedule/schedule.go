package schedule

import (
	"errors"
	"fmt"
	"sync"
	"time"

	scheduleRepo "homehub/database/repository/schedule"
	"homehub/models"
	"homehub/services/device"
	"homehub/services/tasks"
	"homehub/utils"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ErrNoTrigger signals a schedule without either a firing time or a
// cron expression.
var ErrNoTrigger = errors.New("schedule needs either an 'at' time or a cron expression")

// ScheduleService defines business logic for timed device actions.
type ScheduleService interface {
	// Create registers a schedule and arms its trigger.
	Create(input models.ScheduleCreate, userID string) (*models.Schedule, error)
	// GetByID retrieves a schedule by its unique ID.
	GetByID(id string) (*models.Schedule, error)
	// GetAll retrieves all schedules.
	GetAll() ([]models.Schedule, error)
	// Update applies a partial update and re-arms the trigger.
	Update(id string, input models.ScheduleUpdate) (*models.Schedule, error)
	// Delete removes a schedule and disarms its trigger.
	Delete(id string) error
	// ArmPersisted re-arms every enabled recurring schedule, called at
	// worker startup so cron entries survive restarts.
	ArmPersisted() error
}

// DefaultScheduleService is the production implementation.
type DefaultScheduleService struct {
	Repo      scheduleRepo.ScheduleRepository
	Devices   device.DeviceService
	Client    *asynq.Client
	Inspector *asynq.Inspector
	Scheduler *asynq.Scheduler

	mu      sync.Mutex
	entries map[string]string // scheduleID -> scheduler entry ID
}

func validAction(a models.ScheduleAction) bool {
	switch a {
	case models.ActionOn, models.ActionOff, models.ActionToggle:
		return true
	}
	return false
}

// Create registers a schedule and arms it.
func (s *DefaultScheduleService) Create(input models.ScheduleCreate, userID string) (*models.Schedule, error) {
	if !validAction(input.Action) {
		return nil, fmt.Errorf("unknown schedule action %q", input.Action)
	}
	if input.At == nil && input.Cron == "" {
		return nil, ErrNoTrigger
	}
	if _, err := s.Devices.GetByID(input.DeviceID); err != nil {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	now := time.Now()
	sch := models.Schedule{
		ID:        uuid.New().String(),
		DeviceID:  input.DeviceID,
		UserID:    userID,
		Name:      input.Name,
		Action:    input.Action,
		At:        input.At,
		Cron:      input.Cron,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(&sch); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	if sch.Enabled {
		if err := s.arm(&sch); err != nil {
			return nil, fmt.Errorf("failed to arm schedule: %w", err)
		}
	}
	return &sch, nil
}

// GetByID retrieves a schedule by ID.
func (s *DefaultScheduleService) GetByID(id string) (*models.Schedule, error) {
	sch, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return sch, nil
}

// GetAll retrieves all schedules.
func (s *DefaultScheduleService) GetAll() ([]models.Schedule, error) {
	schedules, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// Update applies a partial update, then disarms and re-arms the trigger
// from scratch so the armed state always mirrors the stored record.
func (s *DefaultScheduleService) Update(id string, input models.ScheduleUpdate) (*models.Schedule, error) {
	sch, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	if input.Action != nil {
		if !validAction(*input.Action) {
			return nil, fmt.Errorf("unknown schedule action %q", *input.Action)
		}
		sch.Action = *input.Action
	}
	if input.At != nil {
		sch.At = input.At
	}
	if input.Cron != nil {
		sch.Cron = *input.Cron
	}
	if input.Name != nil {
		sch.Name = *input.Name
	}
	if input.Enabled != nil {
		sch.Enabled = *input.Enabled
	}
	if sch.At == nil && sch.Cron == "" {
		return nil, ErrNoTrigger
	}
	sch.UpdatedAt = time.Now()
	if err := s.Repo.Update(sch); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	s.disarm(id)
	if sch.Enabled {
		if err := s.arm(sch); err != nil {
			return nil, fmt.Errorf("failed to re-arm schedule: %w", err)
		}
	}
	return sch, nil
}

// Delete removes a schedule and disarms its trigger.
func (s *DefaultScheduleService) Delete(id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	s.disarm(id)
	return nil
}

// ArmPersisted registers every enabled recurring schedule with the
// scheduler. One-off tasks persist in the Redis queue on their own.
func (s *DefaultScheduleService) ArmPersisted() error {
	schedules, err := s.Repo.GetEnabledCron()
	if err != nil {
		return fmt.Errorf("failed to load recurring schedules: %w", err)
	}
	for i := range schedules {
		if err := s.arm(&schedules[i]); err != nil {
			utils.GetLogger().Warn("failed to arm recurring schedule",
				zap.String("scheduleId", schedules[i].ID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultScheduleService) arm(sch *models.Schedule) error {
	payload := models.ScheduledActionPayload{
		ScheduleID: sch.ID,
		DeviceID:   sch.DeviceID,
		UserID:     sch.UserID,
		Action:     sch.Action,
	}

	if sch.Cron != "" {
		task, err := tasks.NewCronActionTask(payload)
		if err != nil {
			return err
		}
		entryID, err := s.Scheduler.Register(sch.Cron, task)
		if err != nil {
			return err
		}
		s.mu.Lock()
		if s.entries == nil {
			s.entries = make(map[string]string)
		}
		s.entries[sch.ID] = entryID
		s.mu.Unlock()
		return nil
	}

	if sch.At.Before(time.Now()) {
		return fmt.Errorf("firing time %s is in the past", sch.At.Format(time.RFC3339))
	}
	task, opts, err := tasks.NewScheduledActionTask(payload, *sch.At)
	if err != nil {
		return err
	}
	if _, err := s.Client.Enqueue(task, opts...); err != nil {
		return err
	}
	return nil
}

func (s *DefaultScheduleService) disarm(id string) {
	s.mu.Lock()
	entryID, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()
	if ok {
		if err := s.Scheduler.Unregister(entryID); err != nil {
			utils.GetLogger().Warn("failed to unregister cron entry",
				zap.String("scheduleId", id), zap.Error(err))
		}
	}

	// A queued one-off may or may not exist; absence is fine.
	if s.Inspector != nil {
		if err := s.Inspector.DeleteTask("default", id); err != nil &&
			!errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
			utils.GetLogger().Warn("failed to delete queued task",
				zap.String("scheduleId", id), zap.Error(err))
		}
	}
}
