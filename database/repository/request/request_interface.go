package requestRepo

import (
	"errors"

	"homehub/models"
)

// ErrAlreadyResolved is returned when a resolution targets a request
// that has already left the PENDING state.
var ErrAlreadyResolved = errors.New("device request already resolved")

// RequestRepository defines methods for device control request access.
type RequestRepository interface {
	// GetByID retrieves a request by its unique ID.
	GetByID(id string) (*models.DeviceRequest, error)
	// GetAll retrieves all requests, newest first.
	GetAll() ([]models.DeviceRequest, error)
	// GetByRequester retrieves the requests filed by a user, newest first.
	GetByRequester(requesterID string) ([]models.DeviceRequest, error)
	// GetPending retrieves all requests still awaiting a decision.
	GetPending() ([]models.DeviceRequest, error)
	// HasPending reports whether the requester already has an
	// outstanding PENDING request for the device.
	HasPending(deviceID, requesterID string) (bool, error)
	// Create inserts a new request record.
	Create(req *models.DeviceRequest) error
	// Resolve transitions a PENDING request into a terminal state and
	// returns the updated record. A request already in a terminal state
	// yields ErrAlreadyResolved; terminal states are never rewritten.
	Resolve(id string, outcome models.RequestStatus) (*models.DeviceRequest, error)
}
