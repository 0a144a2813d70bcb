package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageService handles member avatar uploads.
type StorageService interface {
	// UploadAvatar stores the image and returns its public URL.
	UploadAvatar(ctx context.Context, userID string, file multipart.File) (string, error)
	// DeleteAvatar removes a previously uploaded avatar.
	DeleteAvatar(ctx context.Context, userID string) error
}

// CloudinaryStorageService is the production implementation.
type CloudinaryStorageService struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorageService builds the service from a configured
// Cloudinary handle.
func NewCloudinaryStorageService(cld *cloudinary.Cloudinary) *CloudinaryStorageService {
	return &CloudinaryStorageService{cld: cld}
}

const avatarFolder = "homehub/avatars"

func avatarPublicID(userID string) string {
	return fmt.Sprintf("%s/%s", avatarFolder, userID)
}

// UploadAvatar uploads the image under a deterministic public ID, so a
// re-upload replaces the previous avatar.
func (s *CloudinaryStorageService) UploadAvatar(ctx context.Context, userID string, file multipart.File) (string, error) {
	overwrite := true
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  avatarPublicID(userID),
		Overwrite: &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload returned no URL")
	}
	return result.SecureURL, nil
}

// DeleteAvatar removes the stored avatar for a member.
func (s *CloudinaryStorageService) DeleteAvatar(ctx context.Context, userID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: avatarPublicID(userID)}); err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
