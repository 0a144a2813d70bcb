package logRepo

import "homehub/models"

// LogRepository defines methods for device activity log access.
type LogRepository interface {
	// Create appends a new activity entry.
	Create(entry *models.DeviceLog) error
	// GetRecent retrieves the most recent entries, newest first.
	GetRecent(limit int64) ([]models.DeviceLog, error)
	// GetByDevice retrieves the most recent entries for one device.
	GetByDevice(deviceID string, limit int64) ([]models.DeviceLog, error)
}
