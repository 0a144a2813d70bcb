package handlers

import (
	"net/http"

	"homehub/models"
	"homehub/services/room"

	"github.com/gin-gonic/gin"
)

// RoomHandler serves room and membership endpoints.
type RoomHandler struct {
	RoomService room.RoomService
}

// GetRoomsHandler handles GET /api/rooms.
func (h *RoomHandler) GetRoomsHandler(c *gin.Context) {
	rooms, err := h.RoomService.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoomByIDHandler handles GET /api/rooms/:id, expanded with devices
// and member profiles.
func (h *RoomHandler) GetRoomByIDHandler(c *gin.Context) {
	id := c.Param("id")
	detail, err := h.RoomService.GetDetail(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateRoomHandler handles POST /api/rooms (ADMIN only).
func (h *RoomHandler) CreateRoomHandler(c *gin.Context) {
	var payload models.RoomCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.RoomService.Create(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, r)
}

// UpdateRoomHandler handles PATCH /api/rooms/:id (ADMIN only).
func (h *RoomHandler) UpdateRoomHandler(c *gin.Context) {
	id := c.Param("id")
	var payload models.RoomUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.RoomService.Update(id, payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRoomHandler handles DELETE /api/rooms/:id (ADMIN only).
func (h *RoomHandler) DeleteRoomHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.RoomService.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}
