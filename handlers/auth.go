package handlers

import (
	"net/http"

	"homehub/middleware"
	"homehub/models"
	"homehub/services/user"
	"homehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves login, logout and registration.
type AuthHandler struct {
	UserService user.UserService
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var payload struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.UserService.Authenticate(payload.Email, payload.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterHandler handles POST /api/auth/register (ADMIN only).
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var payload models.UserCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.UserService.Register(payload)
	if err != nil {
		utils.GetLogger().Error("Registration failed", zap.String("email", payload.Email), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LogoutHandler handles POST /api/auth/logout.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	userID, _ := middleware.CurrentActor(c)
	if err := h.UserService.Logout(userID); err != nil {
		utils.GetLogger().Error("Logout failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// MeHandler handles GET /api/auth/me.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	userID, _ := middleware.CurrentActor(c)
	u, err := h.UserService.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateMeHandler handles PATCH /api/auth/me. Members may change their
// own name, birth date and password; role and blocking stay with the
// admin endpoints.
func (h *AuthHandler) UpdateMeHandler(c *gin.Context) {
	var payload struct {
		FullName    *string `json:"fullName"`
		DateOfBirth *string `json:"dateOfBirth"`
		Password    *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := middleware.CurrentActor(c)
	u, err := h.UserService.Update(userID, models.UserUpdate{
		FullName:    payload.FullName,
		DateOfBirth: payload.DateOfBirth,
		Password:    payload.Password,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateFCMTokenHandler handles PUT /api/auth/fcm-token.
func (h *AuthHandler) UpdateFCMTokenHandler(c *gin.Context) {
	var payload struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := middleware.CurrentActor(c)
	if err := h.UserService.UpdateFCMToken(userID, payload.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}
