package user

import (
	"fmt"
	"time"

	"homehub/models"
	"homehub/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register validates the payload, hashes the password, persists the
// member, and issues a token. Registration is an ADMIN operation; the
// route guard enforces that.
func (s *DefaultUserService) Register(input models.UserCreate) (*models.AuthResponse, error) {
	if !models.ValidRole(input.Role) {
		return nil, fmt.Errorf("unknown role %q", input.Role)
	}

	existing, err := s.Repo.GetByEmail(input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("a member with email %s already exists", input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	u := models.User{
		ID:           uuid.New().String(),
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(&u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(&u)
}

// Authenticate verifies credentials and returns a fresh token. Error
// messages never reveal whether the email exists.
func (s *DefaultUserService) Authenticate(email, password string) (*models.AuthResponse, error) {
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if u == nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if u.IsBlocked {
		return nil, fmt.Errorf("account is blocked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	// A new login supersedes the previous session.
	invalidateAuthCache(u.TokenHash)
	return s.issueToken(u)
}

// Logout revokes the member's current token so the middleware rejects it
// on the next request.
func (s *DefaultUserService) Logout(userID string) error {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	invalidateAuthCache(u.TokenHash)
	updateDoc := bson.M{"tokenHash": "", "fcmToken": "", "updatedAt": time.Now()}
	if err := s.Repo.UpdateSetDocument(userID, updateDoc); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// issueToken generates a JWT, stores its hash on the member record, and
// builds the auth response.
func (s *DefaultUserService) issueToken(u *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(u.ID, u.Email, string(u.Role), utils.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	u.TokenHash = utils.HashToken(token)
	updateDoc := bson.M{"tokenHash": u.TokenHash, "updatedAt": time.Now()}
	if err := s.Repo.UpdateSetDocument(u.ID, updateDoc); err != nil {
		return nil, fmt.Errorf("failed to store token hash: %w", err)
	}
	return &models.AuthResponse{AccessToken: token, User: *u}, nil
}
