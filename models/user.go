package models

import "time"

// Role is the closed set of actor roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleAdult Role = "ADULT"
	RoleChild Role = "CHILD"
	RoleGuest Role = "GUEST"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAdult, RoleChild, RoleGuest:
		return true
	}
	return false
}

// User represents a household member.
type User struct {
	ID           string    `bson:"id" json:"id"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	DateOfBirth  string    `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	IsBlocked    bool      `bson:"isBlocked" json:"isBlocked"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	TokenHash    string    `bson:"tokenHash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserCreate is the payload for an admin creating a member.
type UserCreate struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required"`
}

// UserUpdate is the payload for partially updating a member.
type UserUpdate struct {
	FullName    *string `json:"fullName"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Role        *Role   `json:"role"`
	DateOfBirth *string `json:"dateOfBirth"`
	IsBlocked   *bool   `json:"isBlocked"`
}

// AuthResponse is returned on successful login or registration.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
