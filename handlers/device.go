package handlers

import (
	"errors"
	"net/http"

	"homehub/middleware"
	"homehub/models"
	"homehub/services/device"
	"homehub/services/policy"
	"homehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler serves device fleet endpoints.
type DeviceHandler struct {
	DeviceService device.DeviceService
}

// GetDevicesHandler handles GET /api/devices.
func (h *DeviceHandler) GetDevicesHandler(c *gin.Context) {
	if roomID := c.Query("roomId"); roomID != "" {
		devices, err := h.DeviceService.GetByRoom(roomID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, devices)
		return
	}
	devices, err := h.DeviceService.GetAll()
	if err != nil {
		utils.GetLogger().Error("Failed to list devices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, devices)
}

// GetDeviceByIDHandler handles GET /api/devices/:id.
func (h *DeviceHandler) GetDeviceByIDHandler(c *gin.Context) {
	id := c.Param("id")
	d, err := h.DeviceService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetDeviceStatusHandler handles GET /api/devices/:id/status, served
// from the Redis status cache.
func (h *DeviceHandler) GetDeviceStatusHandler(c *gin.Context) {
	id := c.Param("id")
	status, err := h.DeviceService.CachedStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

// CreateDeviceHandler handles POST /api/devices (ADMIN only).
func (h *DeviceHandler) CreateDeviceHandler(c *gin.Context) {
	var payload models.DeviceCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.DeviceService.Create(payload)
	if err != nil {
		utils.GetLogger().Error("Failed to create device", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, d)
}

// UpdateDeviceHandler handles PATCH /api/devices/:id (ADMIN only).
func (h *DeviceHandler) UpdateDeviceHandler(c *gin.Context) {
	id := c.Param("id")
	var payload models.DeviceUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.DeviceService.Update(id, payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

// DeleteDeviceHandler handles DELETE /api/devices/:id (ADMIN only).
func (h *DeviceHandler) DeleteDeviceHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.DeviceService.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device deleted"})
}

// UpdateDeviceStatusHandler handles PATCH /api/devices/:id/status. A
// policy denial answers 403 with approvalRequired so clients know to
// file a control request instead.
func (h *DeviceHandler) UpdateDeviceStatusHandler(c *gin.Context) {
	id := c.Param("id")
	var payload struct {
		Status models.DeviceStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role := middleware.CurrentActor(c)
	actor := device.Actor{ID: userID, Role: role}
	d, err := h.DeviceService.UpdateStatus(c.Request.Context(), actor, id, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrApprovalRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "approvalRequired": true})
		case errors.Is(err, device.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			utils.GetLogger().Error("Failed to update device status",
				zap.String("deviceId", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, d)
}

// ToggleDeviceHandler handles POST /api/devices/:id/toggle. The target
// status is derived server-side from the device category.
func (h *DeviceHandler) ToggleDeviceHandler(c *gin.Context) {
	id := c.Param("id")
	d, err := h.DeviceService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	userID, role := middleware.CurrentActor(c)
	actor := device.Actor{ID: userID, Role: role}
	desired := policy.Flip(d.Type, d.Status)
	updated, err := h.DeviceService.UpdateStatus(c.Request.Context(), actor, id, desired)
	if err != nil {
		if errors.Is(err, device.ErrApprovalRequired) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":            err.Error(),
				"approvalRequired": true,
				"requestedStatus":  desired,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetDeviceStatsHandler handles GET /api/devices/stats.
func (h *DeviceHandler) GetDeviceStatsHandler(c *gin.Context) {
	stats, err := h.DeviceService.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
