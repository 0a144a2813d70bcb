package deviceRepo

import "homehub/models"

// DeviceRepository defines methods for device data access.
type DeviceRepository interface {
	// GetByID retrieves a device by its unique ID.
	GetByID(id string) (*models.Device, error)
	// GetAll retrieves all devices.
	GetAll() ([]models.Device, error)
	// GetByRoom retrieves all devices assigned to a room.
	GetByRoom(roomID string) ([]models.Device, error)
	// GetByRooms retrieves all devices assigned to any of the given rooms.
	GetByRooms(roomIDs []string) ([]models.Device, error)
	// Create inserts a new device record.
	Create(device *models.Device) error
	// Update modifies an existing device record.
	Update(device *models.Device) error
	// UpdateStatus sets only the status and activity timestamp of a device.
	UpdateStatus(id string, status models.DeviceStatus) error
	// Delete removes a device record by its ID.
	Delete(id string) error
}
