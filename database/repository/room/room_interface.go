package roomRepo

import "homehub/models"

// RoomRepository defines methods for room data access.
type RoomRepository interface {
	// GetByID retrieves a room by its unique ID.
	GetByID(id string) (*models.Room, error)
	// GetAll retrieves all rooms.
	GetAll() ([]models.Room, error)
	// GetByMember retrieves all rooms the given user belongs to.
	GetByMember(userID string) ([]models.Room, error)
	// Create inserts a new room record.
	Create(room *models.Room) error
	// Update modifies an existing room record.
	Update(room *models.Room) error
	// Delete removes a room record by its ID.
	Delete(id string) error
}
