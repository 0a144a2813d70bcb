package handlers

import (
	"errors"
	"net/http"

	requestRepo "homehub/database/repository/request"
	"homehub/middleware"
	"homehub/models"
	"homehub/services/device"
	"homehub/services/request"
	"homehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestHandler serves the control request workflow endpoints.
type RequestHandler struct {
	RequestService request.RequestService
}

// SubmitRequestHandler handles POST /api/requests.
func (h *RequestHandler) SubmitRequestHandler(c *gin.Context) {
	var payload models.DeviceRequestInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role := middleware.CurrentActor(c)
	actor := device.Actor{ID: userID, Role: role}
	req, err := h.RequestService.Submit(c.Request.Context(), actor, payload)
	if err != nil {
		switch {
		case errors.Is(err, request.ErrDuplicatePending):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, request.ErrDirectActionAllowed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, device.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			utils.GetLogger().Error("Failed to submit request", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GetRequestsHandler handles GET /api/requests (ADMIN only). The
// pending=true query narrows to requests awaiting a decision.
func (h *RequestHandler) GetRequestsHandler(c *gin.Context) {
	var (
		reqs []models.DeviceRequest
		err  error
	)
	if c.Query("pending") == "true" {
		reqs, err = h.RequestService.GetPending()
	} else {
		reqs, err = h.RequestService.GetAll()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GetMyRequestsHandler handles GET /api/requests/mine.
func (h *RequestHandler) GetMyRequestsHandler(c *gin.Context) {
	userID, _ := middleware.CurrentActor(c)
	reqs, err := h.RequestService.GetMine(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GetRequestByIDHandler handles GET /api/requests/:id.
func (h *RequestHandler) GetRequestByIDHandler(c *gin.Context) {
	id := c.Param("id")
	req, err := h.RequestService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, req)
}

// ResolveRequestHandler handles PATCH /api/requests/:id (ADMIN only).
// The payload names the terminal outcome; a request that already left
// PENDING answers 409 and is never rewritten.
func (h *RequestHandler) ResolveRequestHandler(c *gin.Context) {
	id := c.Param("id")
	var payload struct {
		Status models.RequestStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, _ := middleware.CurrentActor(c)
	req, err := h.RequestService.Resolve(c.Request.Context(), adminID, id, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, requestRepo.ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			utils.GetLogger().Error("Failed to resolve request",
				zap.String("requestId", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, req)
}
