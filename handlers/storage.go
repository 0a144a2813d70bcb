package handlers

import (
	"net/http"
	"time"

	userRepo "homehub/database/repository/user"
	"homehub/middleware"
	"homehub/services/storage"
	"homehub/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// StorageHandler serves avatar upload endpoints.
type StorageHandler struct {
	StorageService storage.StorageService
	UserRepo       userRepo.UserRepository
}

// UploadAvatarHandler handles POST /api/users/avatar. The multipart
// field is named "avatar".
func (h *StorageHandler) UploadAvatarHandler(c *gin.Context) {
	if h.StorageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "avatar storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing avatar file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable avatar file"})
		return
	}
	defer file.Close()

	userID, _ := middleware.CurrentActor(c)
	url, err := h.StorageService.UploadAvatar(c.Request.Context(), userID, file)
	if err != nil {
		utils.GetLogger().Error("Avatar upload failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updateDoc := bson.M{"avatar": url, "updatedAt": time.Now()}
	if err := h.UserRepo.UpdateSetDocument(userID, updateDoc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}
