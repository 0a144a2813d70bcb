package handlers

import (
	"net/http"
	"strconv"

	logRepo "homehub/database/repository/log"

	"github.com/gin-gonic/gin"
)

// LogHandler serves the device activity trail.
type LogHandler struct {
	Logs logRepo.LogRepository
}

const defaultLogLimit = 50

// GetLogsHandler handles GET /api/logs. The deviceId query narrows the
// trail to one device; limit caps the page size.
func (h *LogHandler) GetLogsHandler(c *gin.Context) {
	limit := int64(defaultLogLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	if deviceID := c.Query("deviceId"); deviceID != "" {
		entries, err := h.Logs.GetByDevice(deviceID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entries, err := h.Logs.GetRecent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
