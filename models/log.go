package models

import "time"

// LogSource distinguishes how a device mutation was triggered.
type LogSource string

const (
	SourceDirect   LogSource = "direct"
	SourceRequest  LogSource = "request"
	SourceSchedule LogSource = "schedule"
)

// DeviceLog is one entry in the device activity trail.
type DeviceLog struct {
	ID        string       `bson:"id" json:"id"`
	DeviceID  string       `bson:"deviceId" json:"deviceId"`
	UserID    string       `bson:"userId,omitempty" json:"userId,omitempty"`
	Action    string       `bson:"action" json:"action"`
	OldStatus DeviceStatus `bson:"oldStatus,omitempty" json:"oldStatus,omitempty"`
	NewStatus DeviceStatus `bson:"newStatus,omitempty" json:"newStatus,omitempty"`
	Source    LogSource    `bson:"source" json:"source"`
	Timestamp time.Time    `bson:"timestamp" json:"timestamp"`
}
