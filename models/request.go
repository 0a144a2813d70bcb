package models

import "time"

// RequestStatus is the lifecycle state of a device control request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// RequesterSnapshot is a denormalized view of the requester for display.
type RequesterSnapshot struct {
	ID       string `bson:"id" json:"id"`
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email" json:"email"`
	Role     Role   `bson:"role" json:"role"`
}

// DeviceSnapshot is a denormalized view of the target device for display.
type DeviceSnapshot struct {
	ID           string       `bson:"id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Type         DeviceType   `bson:"type" json:"type"`
	Status       DeviceStatus `bson:"status" json:"status"`
	IsRestricted bool         `bson:"isRestricted" json:"isRestricted"`
}

// DeviceRequest is a deferred device mutation awaiting an admin decision.
// The only legal outcome transitions are PENDING -> APPROVED and
// PENDING -> REJECTED; terminal states never change.
type DeviceRequest struct {
	ID              string             `bson:"id" json:"id"`
	RequesterID     string             `bson:"requesterId" json:"requesterId"`
	DeviceID        string             `bson:"deviceId" json:"deviceId"`
	RequestedStatus DeviceStatus       `bson:"requestedStatus" json:"requestedStatus"`
	Status          RequestStatus      `bson:"status" json:"status"`
	Message         string             `bson:"message,omitempty" json:"message,omitempty"`
	Requester       *RequesterSnapshot `bson:"requester,omitempty" json:"requester,omitempty"`
	Device          *DeviceSnapshot    `bson:"device,omitempty" json:"device,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeviceRequestInput is the payload for submitting a control request.
type DeviceRequestInput struct {
	DeviceID        string       `json:"deviceId" binding:"required"`
	RequestedStatus DeviceStatus `json:"requestedStatus" binding:"required"`
	Message         string       `json:"message"`
}
