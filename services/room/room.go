package room

import (
	"fmt"
	"time"

	deviceRepo "homehub/database/repository/device"
	roomRepo "homehub/database/repository/room"
	userRepo "homehub/database/repository/user"
	"homehub/models"

	"github.com/google/uuid"
)

// RoomService defines business logic for rooms and their membership.
type RoomService interface {
	// Create adds a new room.
	Create(input models.RoomCreate) (*models.Room, error)
	// GetByID retrieves a room by its unique ID.
	GetByID(id string) (*models.Room, error)
	// GetAll retrieves all rooms.
	GetAll() ([]models.Room, error)
	// GetDetail expands a room with its devices and member profiles.
	GetDetail(id string) (*models.RoomDetail, error)
	// Update applies a partial update, including membership changes.
	Update(id string, input models.RoomUpdate) (*models.Room, error)
	// Delete removes a room.
	Delete(id string) error
}

// DefaultRoomService is the production implementation.
type DefaultRoomService struct {
	Repo    roomRepo.RoomRepository
	Devices deviceRepo.DeviceRepository
	Users   userRepo.UserRepository
}

// Create adds a new room.
func (s *DefaultRoomService) Create(input models.RoomCreate) (*models.Room, error) {
	now := time.Now()
	r := models.Room{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		MemberIDs:   input.MemberIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.MemberIDs == nil {
		r.MemberIDs = []string{}
	}
	if err := s.Repo.Create(&r); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &r, nil
}

// GetByID retrieves a room by ID.
func (s *DefaultRoomService) GetByID(id string) (*models.Room, error) {
	r, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	return r, nil
}

// GetAll retrieves all rooms.
func (s *DefaultRoomService) GetAll() ([]models.Room, error) {
	rooms, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// GetDetail expands a room with its devices and member profiles.
// Members that have since been deleted are dropped from the view.
func (s *DefaultRoomService) GetDetail(id string) (*models.RoomDetail, error) {
	r, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	devices, err := s.Devices.GetByRoom(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list room devices: %w", err)
	}
	members := make([]models.User, 0, len(r.MemberIDs))
	for _, uid := range r.MemberIDs {
		u, err := s.Users.GetByID(uid)
		if err != nil {
			continue
		}
		members = append(members, *u)
	}
	return &models.RoomDetail{Room: *r, Devices: devices, Members: members}, nil
}

// Update applies a partial update. Replacing MemberIDs reshapes the
// direct-action access of every member involved.
func (s *DefaultRoomService) Update(id string, input models.RoomUpdate) (*models.Room, error) {
	r, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	if input.Name != nil {
		r.Name = *input.Name
	}
	if input.Description != nil {
		r.Description = *input.Description
	}
	if input.MemberIDs != nil {
		r.MemberIDs = *input.MemberIDs
	}
	r.UpdatedAt = time.Now()
	if err := s.Repo.Update(r); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return r, nil
}

// Delete removes a room. Devices keep their room reference; reassigning
// them is a separate device update.
func (s *DefaultRoomService) Delete(id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}
