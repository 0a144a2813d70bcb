package scheduleRepo

import "homehub/models"

// ScheduleRepository defines methods for schedule data access.
type ScheduleRepository interface {
	// GetByID retrieves a schedule by its unique ID.
	GetByID(id string) (*models.Schedule, error)
	// GetAll retrieves all schedules.
	GetAll() ([]models.Schedule, error)
	// GetEnabledCron retrieves enabled recurring schedules.
	GetEnabledCron() ([]models.Schedule, error)
	// Create inserts a new schedule record.
	Create(schedule *models.Schedule) error
	// Update modifies an existing schedule record.
	Update(schedule *models.Schedule) error
	// Delete removes a schedule record by its ID.
	Delete(id string) error
}
