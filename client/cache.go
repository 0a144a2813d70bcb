package client

import (
	"sync"

	"homehub/models"
)

// StateCache is the client-local projection of device state: cached
// statuses plus pending-request markers. Markers are bookkeeping only
// and are always superseded by server truth on the next refresh.
type StateCache struct {
	mu      sync.Mutex
	devices map[string]models.Device
	pending map[string]string // device id -> request id
}

// NewStateCache creates an empty cache.
func NewStateCache() *StateCache {
	return &StateCache{
		devices: make(map[string]models.Device),
		pending: make(map[string]string),
	}
}

// Device returns the cached device, if known.
func (c *StateCache) Device(id string) (models.Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.devices[id]
	return d, ok
}

// SetStatus updates the cached status of a device. Unknown devices are
// ignored; they will appear on the next refresh.
func (c *StateCache) SetStatus(id string, status models.DeviceStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.devices[id]; ok {
		d.Status = status
		c.devices[id] = d
	}
}

// ReplaceDevices swaps in an authoritative device listing.
func (c *StateCache) ReplaceDevices(devices []models.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices = make(map[string]models.Device, len(devices))
	for _, d := range devices {
		c.devices[d.ID] = d
	}
}

// Put stores one device.
func (c *StateCache) Put(d models.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices[d.ID] = d
}

// MarkPending records an outstanding request for a device.
func (c *StateCache) MarkPending(deviceID, requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[deviceID] = requestID
}

// IsPending reports whether the device has an outstanding local marker.
func (c *StateCache) IsPending(deviceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[deviceID]
	return ok
}

// ClearPending removes the marker for a device, reporting whether one
// existed. Clearing an absent marker is a no-op.
func (c *StateCache) ClearPending(deviceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[deviceID]; ok {
		delete(c.pending, deviceID)
		return true
	}
	return false
}

// ClearPendingByRequest removes the marker matching a request id,
// returning the device it covered. Used when a resolution event omits
// the device id.
func (c *StateCache) ClearPendingByRequest(requestID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for deviceID, reqID := range c.pending {
		if reqID == requestID {
			delete(c.pending, deviceID)
			return deviceID, true
		}
	}
	return "", false
}

// SyncPending rebuilds the markers from an authoritative request
// listing: only requests still PENDING keep a marker.
func (c *StateCache) SyncPending(requests []models.DeviceRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = make(map[string]string)
	for _, r := range requests {
		if r.Status == models.RequestPending {
			c.pending[r.DeviceID] = r.ID
		}
	}
}
