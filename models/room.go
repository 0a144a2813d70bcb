package models

import "time"

// Room groups devices and the members allowed to act on them directly.
type Room struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	MemberIDs   []string  `bson:"memberIds" json:"memberIds"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RoomCreate is the payload for creating a room.
type RoomCreate struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"memberIds"`
}

// RoomUpdate is the payload for partially updating a room.
type RoomUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	MemberIDs   *[]string `json:"memberIds"`
}

// RoomDetail is a room expanded with its devices and member profiles.
type RoomDetail struct {
	Room
	Devices []Device `json:"devices"`
	Members []User   `json:"members"`
}
