package client

import (
	"context"
	"fmt"

	"homehub/models"
	"homehub/services/policy"

	"go.uber.org/zap"
)

// Controller mediates device-status-change intents through the role
// policy and folds live update events back into the local cache.
type Controller struct {
	devices  DeviceGateway
	requests RequestGateway
	notifier Notifier
	cache    *StateCache
	logger   *zap.Logger
}

// NewController assembles a workflow controller.
func NewController(devices DeviceGateway, requests RequestGateway, notifier Notifier, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		devices:  devices,
		requests: requests,
		notifier: notifier,
		cache:    NewStateCache(),
		logger:   logger,
	}
}

// Cache exposes the local projection for rendering.
func (c *Controller) Cache() *StateCache {
	return c.cache
}

// Toggle derives the opposite status for the device's category and
// routes it through RequestStatusChange. The derivation is shared with
// the request path, so a request never carries a status outside the
// device's domain.
func (c *Controller) Toggle(ctx context.Context, actor ActorContext, deviceID string) error {
	device, ok := c.cache.Device(deviceID)
	if !ok {
		fetched, err := c.devices.GetDevice(ctx, deviceID)
		if err != nil {
			c.notifier.Failure(fmt.Sprintf("Could not load device %s", deviceID))
			return fmt.Errorf("toggle: fetch device %s: %w", deviceID, err)
		}
		device = *fetched
		c.cache.Put(device)
	}

	desired := policy.Flip(device.Type, device.Status)
	return c.RequestStatusChange(ctx, actor, device, desired)
}

// RequestStatusChange applies the desired status directly when the
// policy permits, or files a control request otherwise. Failures are
// surfaced as notifications and never retried; the cache is only
// touched on success.
func (c *Controller) RequestStatusChange(ctx context.Context, actor ActorContext, device models.Device, desired models.DeviceStatus) error {
	if !policy.ValidStatus(device.Type, desired) {
		// Unreachable when the shared derivation is used; treated as a
		// programming defect rather than a user mistake.
		c.notifier.Failure("Something went wrong, please try again")
		return fmt.Errorf("status %s is not valid for device type %s", desired, device.Type)
	}

	if policy.CanActDirectly(actor.Role, device, actor.Allowed) {
		updated, err := c.devices.UpdateStatus(ctx, device.ID, desired)
		if err != nil {
			c.logger.Warn("direct update failed",
				zap.String("deviceId", device.ID),
				zap.String("role", string(actor.Role)),
				zap.Error(err))
			c.notifier.Failure(fmt.Sprintf("Could not switch %s to %s", device.Name, desired))
			return err
		}
		status := desired
		if updated != nil {
			status = updated.Status
		}
		c.cache.SetStatus(device.ID, status)
		c.notifier.Success(fmt.Sprintf("%s is now %s", device.Name, status))
		return nil
	}

	req, err := c.requests.Submit(ctx, models.DeviceRequestInput{
		DeviceID:        device.ID,
		RequestedStatus: desired,
	})
	if err != nil {
		c.notifier.Failure(fmt.Sprintf("Could not submit control request for %s", device.Name))
		return err
	}
	c.cache.MarkPending(device.ID, req.ID)
	c.notifier.Success(fmt.Sprintf("Control request for %s submitted for approval", device.Name))
	return nil
}

// Run consumes the live update channel until the context is cancelled.
// Telemetry and unrelated events are ignored; device status events keep
// the cache warm; request resolutions are folded via the reconciliation
// rules.
func (c *Controller) Run(ctx context.Context, events <-chan models.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case models.EventDeviceRequestUpdated:
				if ev.Request != nil {
					c.applyRequestUpdate(ctx, *ev.Request)
				}
			case models.EventDeviceStatusChanged:
				if ev.Device != nil {
					c.cache.SetStatus(ev.Device.DeviceID, ev.Device.Status)
				}
			}
		}
	}
}

// applyRequestUpdate folds one resolution event into local state. The
// operation is idempotent: clearing an absent marker is a no-op, and a
// notification fires only when a marker was actually cleared, so
// re-delivered or foreign-session events refresh silently.
func (c *Controller) applyRequestUpdate(ctx context.Context, ev models.RequestUpdateEvent) {
	deviceID := ev.DeviceID
	var cleared bool
	if deviceID != "" {
		cleared = c.cache.ClearPending(deviceID)
	} else {
		deviceID, cleared = c.cache.ClearPendingByRequest(ev.RequestID)
	}

	name := ev.DeviceName
	if name == "" {
		name = deviceID
	}

	switch ev.Status {
	case models.RequestApproved:
		if ev.NewStatus != "" && deviceID != "" {
			c.cache.SetStatus(deviceID, ev.NewStatus)
		}
		if cleared {
			c.notifier.Success(fmt.Sprintf("Control request for %s approved, now %s", name, ev.NewStatus))
		}
	case models.RequestRejected:
		if cleared {
			c.notifier.Failure(fmt.Sprintf("Control request for %s was rejected", name))
		}
	}

	c.Refresh(ctx)
}

// Refresh replaces the cached device listing and pending markers with
// server truth. Failures are logged; the stale cache stays usable.
func (c *Controller) Refresh(ctx context.Context) {
	devices, err := c.devices.ListDevices(ctx)
	if err != nil {
		c.logger.Warn("device listing refresh failed", zap.Error(err))
	} else {
		c.cache.ReplaceDevices(devices)
	}

	requests, err := c.requests.ListMine(ctx)
	if err != nil {
		c.logger.Warn("request listing refresh failed", zap.Error(err))
		return
	}
	c.cache.SyncPending(requests)
}
