// Package client implements the device-control workflow used by
// dashboard frontends: every status-change intent is mediated through
// the role policy, executed either directly or as a control request,
// and reconciled against live update events. The package holds only an
// ephemeral projection of server state; the server stays authoritative.
package client

import (
	"context"

	"homehub/models"
	"homehub/services/policy"
)

// ActorContext identifies the authenticated actor issuing intents. It
// is passed explicitly into every operation; the controller never
// consults ambient session state.
type ActorContext struct {
	ID      string
	Role    models.Role
	Allowed policy.AccessSet
}

// DeviceGateway reads and mutates devices on the system of record.
type DeviceGateway interface {
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
	UpdateStatus(ctx context.Context, id string, status models.DeviceStatus) (*models.Device, error)
}

// RequestGateway files and lists device control requests.
type RequestGateway interface {
	Submit(ctx context.Context, in models.DeviceRequestInput) (*models.DeviceRequest, error)
	ListMine(ctx context.Context) ([]models.DeviceRequest, error)
}

// Notifier surfaces operation outcomes to the user.
type Notifier interface {
	Success(message string)
	Failure(message string)
}
