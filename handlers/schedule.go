package handlers

import (
	"errors"
	"net/http"

	"homehub/middleware"
	"homehub/models"
	"homehub/services/schedule"
	"homehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScheduleHandler serves timed device action endpoints.
type ScheduleHandler struct {
	ScheduleService schedule.ScheduleService
}

// GetSchedulesHandler handles GET /api/schedules.
func (h *ScheduleHandler) GetSchedulesHandler(c *gin.Context) {
	schedules, err := h.ScheduleService.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// GetScheduleByIDHandler handles GET /api/schedules/:id.
func (h *ScheduleHandler) GetScheduleByIDHandler(c *gin.Context) {
	id := c.Param("id")
	sch, err := h.ScheduleService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sch)
}

// CreateScheduleHandler handles POST /api/schedules.
func (h *ScheduleHandler) CreateScheduleHandler(c *gin.Context) {
	var payload models.ScheduleCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := middleware.CurrentActor(c)
	sch, err := h.ScheduleService.Create(payload, userID)
	if err != nil {
		if errors.Is(err, schedule.ErrNoTrigger) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		utils.GetLogger().Error("Failed to create schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sch)
}

// UpdateScheduleHandler handles PATCH /api/schedules/:id.
func (h *ScheduleHandler) UpdateScheduleHandler(c *gin.Context) {
	id := c.Param("id")
	var payload models.ScheduleUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sch, err := h.ScheduleService.Update(id, payload)
	if err != nil {
		if errors.Is(err, schedule.ErrNoTrigger) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sch)
}

// DeleteScheduleHandler handles DELETE /api/schedules/:id.
func (h *ScheduleHandler) DeleteScheduleHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.ScheduleService.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}
