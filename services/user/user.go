package user

import (
	"context"
	"fmt"
	"time"

	roomRepo "homehub/database/repository/room"
	userRepo "homehub/database/repository/user"
	"homehub/models"
	"homehub/services/policy"
	"homehub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// UserService defines business logic for member accounts.
type UserService interface {
	// Register creates a new member account and returns its ID and token.
	Register(input models.UserCreate) (*models.AuthResponse, error)
	// Authenticate verifies credentials and returns a fresh token.
	Authenticate(email, password string) (*models.AuthResponse, error)
	// Logout revokes the member's current token.
	Logout(userID string) error
	// GetByID retrieves a member by its unique ID.
	GetByID(userID string) (*models.User, error)
	// GetAll retrieves all members.
	GetAll() ([]models.User, error)
	// Update applies a partial update to a member.
	Update(userID string, input models.UserUpdate) (*models.User, error)
	// Delete removes a member account.
	Delete(userID string) error
	// UpdateFCMToken records the member's push notification token.
	UpdateFCMToken(userID, token string) error
	// AllowedDeviceIDs resolves the set of devices the member may act
	// on directly, derived from room membership.
	AllowedDeviceIDs(userID string) (policy.AccessSet, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	RoomRepo roomRepo.RoomRepository
	Devices  DeviceLister
}

// DeviceLister is the slice of the device repository the access
// resolution needs.
type DeviceLister interface {
	GetByRooms(roomIDs []string) ([]models.Device, error)
}

// GetByID retrieves a member by ID.
func (s *DefaultUserService) GetByID(userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

// GetAll retrieves all members.
func (s *DefaultUserService) GetAll() ([]models.User, error) {
	users, err := s.Repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update applies a partial update. Set fields only; omitted fields keep
// their current values.
func (s *DefaultUserService) Update(userID string, input models.UserUpdate) (*models.User, error) {
	updateDoc := bson.M{"updatedAt": time.Now()}
	if input.FullName != nil {
		updateDoc["fullName"] = *input.FullName
	}
	if input.Email != nil {
		updateDoc["email"] = *input.Email
	}
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			return nil, fmt.Errorf("unknown role %q", *input.Role)
		}
		updateDoc["role"] = *input.Role
	}
	if input.DateOfBirth != nil {
		updateDoc["dateOfBirth"] = *input.DateOfBirth
	}
	if input.IsBlocked != nil {
		updateDoc["isBlocked"] = *input.IsBlocked
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updateDoc["passwordHash"] = string(hash)
		// A password change revokes the current token.
		updateDoc["tokenHash"] = ""
	}

	// Role, blocking and password changes must take effect before the
	// cached authorization would have expired on its own.
	if input.Role != nil || input.IsBlocked != nil || input.Password != nil {
		if current, err := s.Repo.GetByID(userID); err == nil {
			invalidateAuthCache(current.TokenHash)
		}
	}

	if err := s.Repo.UpdateSetDocument(userID, updateDoc); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.Repo.GetByID(userID)
}

// Delete removes a member account and its cached authorization.
func (s *DefaultUserService) Delete(userID string) error {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	if err := s.Repo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	invalidateAuthCache(u.TokenHash)
	return nil
}

// UpdateFCMToken records the push token for the member's device.
func (s *DefaultUserService) UpdateFCMToken(userID, token string) error {
	updateDoc := bson.M{"fcmToken": token, "updatedAt": time.Now()}
	if err := s.Repo.UpdateSetDocument(userID, updateDoc); err != nil {
		return fmt.Errorf("failed to update FCM token: %w", err)
	}
	return nil
}

// AllowedDeviceIDs collects the devices in every room the member belongs
// to. ADMIN callers bypass the set entirely, so no special case here.
func (s *DefaultUserService) AllowedDeviceIDs(userID string) (policy.AccessSet, error) {
	rooms, err := s.RoomRepo.GetByMember(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room membership: %w", err)
	}
	if len(rooms) == 0 {
		return policy.NewAccessSet(), nil
	}
	roomIDs := make([]string, 0, len(rooms))
	for _, r := range rooms {
		roomIDs = append(roomIDs, r.ID)
	}
	devices, err := s.Devices.GetByRooms(roomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room devices: %w", err)
	}
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.ID)
	}
	return policy.NewAccessSet(ids...), nil
}

func invalidateAuthCache(tokenHash string) {
	if tokenHash == "" {
		return
	}
	client := utils.GetAuthCacheClient()
	client.Del(context.Background(), utils.AuthCachePrefix+tokenHash)
}
