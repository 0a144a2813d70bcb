package models

import "time"

// Event types delivered on the live update channel.
const (
	EventDeviceRequestUpdated = "deviceRequestUpdated"
	EventDeviceStatusChanged  = "deviceStatusChanged"
	EventSensorTelemetry      = "sensorTelemetry"
)

// Event is the envelope pushed to connected clients. UserID targets the
// event at one actor's sessions; empty means broadcast.
type Event struct {
	Type      string              `json:"type"`
	UserID    string              `json:"-"`
	Request   *RequestUpdateEvent `json:"request,omitempty"`
	Device    *DeviceStatusEvent  `json:"device,omitempty"`
	Telemetry *TelemetryEvent     `json:"telemetry,omitempty"`
	At        time.Time           `json:"at"`
}

// RequestUpdateEvent announces a control request resolution.
type RequestUpdateEvent struct {
	RequestID  string        `json:"requestId"`
	Status     RequestStatus `json:"status"`
	DeviceID   string        `json:"deviceId,omitempty"`
	DeviceName string        `json:"deviceName,omitempty"`
	NewStatus  DeviceStatus  `json:"newStatus,omitempty"`
}

// DeviceStatusEvent announces an applied device status change.
type DeviceStatusEvent struct {
	DeviceID string       `json:"deviceId"`
	Status   DeviceStatus `json:"status"`
}

// TelemetryEvent carries a sensor reading. The control workflow ignores
// these; they exist for dashboard gauges.
type TelemetryEvent struct {
	DeviceID string  `json:"deviceId"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
}
