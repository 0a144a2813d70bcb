// Package policy holds the pure decision logic for device control:
// who may mutate a device directly, and which status a toggle targets.
// Every call site composes these functions instead of re-deriving them.
package policy

import (
	"strings"

	"homehub/models"
)

// AccessSet is the set of device ids an actor may act on directly,
// computed server-side from room membership.
type AccessSet map[string]struct{}

// NewAccessSet builds an AccessSet from device ids.
func NewAccessSet(deviceIDs ...string) AccessSet {
	s := make(AccessSet, len(deviceIDs))
	for _, id := range deviceIDs {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether the device id is in the set.
func (s AccessSet) Contains(deviceID string) bool {
	_, ok := s[deviceID]
	return ok
}

// CanActDirectly decides whether the actor may mutate the device without
// filing a control request. ADMIN always may, GUEST never may; ADULT and
// CHILD may unless the device is restricted or outside their allowed set.
func CanActDirectly(role models.Role, device models.Device, allowed AccessSet) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleGuest:
		return false
	case models.RoleAdult, models.RoleChild:
		if device.IsRestricted {
			return false
		}
		return allowed.Contains(device.ID)
	default:
		return false
	}
}

// Category groups device types by their status domain.
type Category int

const (
	CategorySwitch Category = iota // ON / OFF
	CategoryDoor                   // OPEN / CLOSE
	CategorySensor                 // ACTIVE / INACTIVE
)

// CategoryOf maps a device type to its status category.
func CategoryOf(t models.DeviceType) Category {
	switch {
	case t == models.TypeDoor || t == models.TypeGate:
		return CategoryDoor
	case strings.Contains(string(t), "sensor"):
		return CategorySensor
	default:
		return CategorySwitch
	}
}

// Flip derives the toggle target for a device type and current status.
// It is an involution over the two-element domain of each category, so
// the direct-action and request-submission paths always derive the same
// target.
func Flip(t models.DeviceType, current models.DeviceStatus) models.DeviceStatus {
	switch CategoryOf(t) {
	case CategoryDoor:
		if current == models.StatusOpen {
			return models.StatusClose
		}
		return models.StatusOpen
	case CategorySensor:
		if current == models.StatusActive {
			return models.StatusInactive
		}
		return models.StatusActive
	default:
		if current == models.StatusOn {
			return models.StatusOff
		}
		return models.StatusOn
	}
}

// ValidStatus reports whether the status lies in the device type's domain.
func ValidStatus(t models.DeviceType, status models.DeviceStatus) bool {
	switch CategoryOf(t) {
	case CategoryDoor:
		return status == models.StatusOpen || status == models.StatusClose
	case CategorySensor:
		return status == models.StatusActive || status == models.StatusInactive
	default:
		return status == models.StatusOn || status == models.StatusOff
	}
}

// StatusForAction resolves a schedule action into a concrete status for
// the device. TOGGLE flips the current status; ON/OFF map into the
// device category's domain.
func StatusForAction(t models.DeviceType, current models.DeviceStatus, action models.ScheduleAction) models.DeviceStatus {
	if action == models.ActionToggle {
		return Flip(t, current)
	}
	on := action == models.ActionOn
	switch CategoryOf(t) {
	case CategoryDoor:
		if on {
			return models.StatusOpen
		}
		return models.StatusClose
	case CategorySensor:
		if on {
			return models.StatusActive
		}
		return models.StatusInactive
	default:
		if on {
			return models.StatusOn
		}
		return models.StatusOff
	}
}
