package models

import "time"

// ScheduleAction is the operation a schedule performs on its device.
type ScheduleAction string

const (
	ActionOn     ScheduleAction = "ON"
	ActionOff    ScheduleAction = "OFF"
	ActionToggle ScheduleAction = "TOGGLE"
)

// Schedule is a timed device action, either one-off (At) or recurring (Cron).
type Schedule struct {
	ID        string         `bson:"id" json:"id"`
	DeviceID  string         `bson:"deviceId" json:"deviceId"`
	UserID    string         `bson:"userId" json:"userId"`
	Name      string         `bson:"name,omitempty" json:"name,omitempty"`
	Action    ScheduleAction `bson:"action" json:"action"`
	At        *time.Time     `bson:"at,omitempty" json:"at,omitempty"`
	Cron      string         `bson:"cron,omitempty" json:"cron,omitempty"`
	Enabled   bool           `bson:"enabled" json:"enabled"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// ScheduleCreate is the payload for creating a schedule.
type ScheduleCreate struct {
	DeviceID string         `json:"deviceId" binding:"required"`
	Action   ScheduleAction `json:"action" binding:"required"`
	At       *time.Time     `json:"at"`
	Cron     string         `json:"cron"`
	Name     string         `json:"name"`
	Enabled  *bool          `json:"enabled"`
}

// ScheduleUpdate is the payload for partially updating a schedule.
type ScheduleUpdate struct {
	Action  *ScheduleAction `json:"action"`
	At      *time.Time      `json:"at"`
	Cron    *string         `json:"cron"`
	Name    *string         `json:"name"`
	Enabled *bool           `json:"enabled"`
}

// ScheduledActionPayload is the asynq task body for executing a schedule.
type ScheduledActionPayload struct {
	ScheduleID string         `json:"scheduleId"`
	DeviceID   string         `json:"deviceId"`
	UserID     string         `json:"userId"`
	Action     ScheduleAction `json:"action"`
}
