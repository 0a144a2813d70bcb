package models

import "time"

// DeviceStatus is the closed set of device states.
type DeviceStatus string

const (
	StatusOn       DeviceStatus = "ON"
	StatusOff      DeviceStatus = "OFF"
	StatusOpen     DeviceStatus = "OPEN"
	StatusClose    DeviceStatus = "CLOSE"
	StatusActive   DeviceStatus = "ACTIVE"
	StatusInactive DeviceStatus = "INACTIVE"
)

// DeviceType enumerates supported device categories.
type DeviceType string

const (
	TypeLight              DeviceType = "light"
	TypeAirConditioner     DeviceType = "air_conditioner"
	TypeFan                DeviceType = "fan"
	TypeDoor               DeviceType = "door"
	TypeGate               DeviceType = "gate"
	TypeRelay              DeviceType = "relay"
	TypeKeypad             DeviceType = "keypad"
	TypeSiren              DeviceType = "siren"
	TypeLedAlarm           DeviceType = "led_alarm"
	TypeSoilMoistureSensor DeviceType = "soil_moisture_sensor"
	TypePIRSensor          DeviceType = "pir_sensor"
	TypeGasSensor          DeviceType = "gas_sensor"
	TypeRainSensor         DeviceType = "rain_sensor"
	TypeLightSensor        DeviceType = "light_sensor"
	TypeHumiditySensor     DeviceType = "humidity_sensor"
	TypeTemperatureSensor  DeviceType = "temperature_sensor"
	TypeAwning             DeviceType = "awning"
	TypeOther              DeviceType = "other"
)

// Device represents a controllable or sensing unit assigned to a room.
type Device struct {
	ID           string       `bson:"id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Type         DeviceType   `bson:"type" json:"type"`
	Status       DeviceStatus `bson:"status" json:"status"`
	RoomID       string       `bson:"roomId" json:"roomId"`
	Description  string       `bson:"description,omitempty" json:"description,omitempty"`
	Value        *float64     `bson:"value,omitempty" json:"value,omitempty"`
	Unit         string       `bson:"unit,omitempty" json:"unit,omitempty"`
	MinThreshold *float64     `bson:"minThreshold,omitempty" json:"minThreshold,omitempty"`
	MaxThreshold *float64     `bson:"maxThreshold,omitempty" json:"maxThreshold,omitempty"`
	IsRestricted bool         `bson:"isRestricted" json:"isRestricted"`
	LastActive   *time.Time   `bson:"lastActive,omitempty" json:"lastActive,omitempty"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// DeviceCreate is the payload for registering a new device.
type DeviceCreate struct {
	Name         string       `json:"name" binding:"required"`
	Type         DeviceType   `json:"type" binding:"required"`
	RoomID       string       `json:"roomId" binding:"required"`
	Description  string       `json:"description"`
	Status       DeviceStatus `json:"status"`
	Value        *float64     `json:"value"`
	Unit         string       `json:"unit"`
	MinThreshold *float64     `json:"minThreshold"`
	MaxThreshold *float64     `json:"maxThreshold"`
	IsRestricted bool         `json:"isRestricted"`
}

// DeviceUpdate is the payload for partially updating a device.
// Status changes go through the dedicated status endpoint instead.
type DeviceUpdate struct {
	Name         *string     `json:"name"`
	Type         *DeviceType `json:"type"`
	RoomID       *string     `json:"roomId"`
	Description  *string     `json:"description"`
	Value        *float64    `json:"value"`
	Unit         *string     `json:"unit"`
	MinThreshold *float64    `json:"minThreshold"`
	MaxThreshold *float64    `json:"maxThreshold"`
	IsRestricted *bool       `json:"isRestricted"`
}

// DeviceStats summarizes the device fleet for the dashboard.
type DeviceStats struct {
	Total       int            `json:"total"`
	Active      int            `json:"active"`
	ByType      map[string]int `json:"byType"`
	ByRoom      map[string]int `json:"byRoom"`
	LastUpdated time.Time      `json:"lastUpdated"`
}
