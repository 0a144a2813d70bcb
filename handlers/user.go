package handlers

import (
	"net/http"

	"homehub/models"
	"homehub/services/user"
	"homehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves member management endpoints.
type UserHandler struct {
	UserService user.UserService
}

// GetUsersHandler handles GET /api/users.
func (h *UserHandler) GetUsersHandler(c *gin.Context) {
	users, err := h.UserService.GetAll()
	if err != nil {
		utils.GetLogger().Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserByIDHandler handles GET /api/users/:id.
func (h *UserHandler) GetUserByIDHandler(c *gin.Context) {
	id := c.Param("id")
	u, err := h.UserService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateUserHandler handles PATCH /api/users/:id (ADMIN only).
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	id := c.Param("id")
	var payload models.UserUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.UserService.Update(id, payload)
	if err != nil {
		utils.GetLogger().Error("Failed to update user", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUserHandler handles DELETE /api/users/:id (ADMIN only).
func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.UserService.Delete(id); err != nil {
		utils.GetLogger().Error("Failed to delete user", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
