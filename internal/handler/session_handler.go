package handler

import (
	"errors"
	"net/http"
	"time"

	"studio-booking/internal/service"
	apperrors "studio-booking/pkg/app_errors"
	"studio-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type SessionHandler struct {
	service service.SessionService
}

func NewSessionHandler(service service.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("sessions", h.ListUpcoming)
	}
}

func (h *SessionHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("dashboard", h.AdminDashboard)
	router.GET("sessions", h.ListAll)
	router.POST("sessions", h.Create)
	router.DELETE("sessions/:id", h.Delete)
	router.GET("sessions/:id/participants", h.Participants)
}

// CreateSessionRequest 建立課程請求，日期與時間分開傳入
type CreateSessionRequest struct {
	Date     string  `json:"date" binding:"required"`
	Time     string  `json:"time" binding:"required"`
	Capacity int     `json:"capacity" binding:"min=0"`
	Notes    *string `json:"notes"`
}

func (h *SessionHandler) ListUpcoming(c *gin.Context) {
	sessions, err := h.service.ListUpcoming(c)
	if err != nil {
		h.handleError(c, err, "ListUpcoming")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) ListAll(c *gin.Context) {
	sessions, err := h.service.ListAll(c)
	if err != nil {
		h.handleError(c, err, "ListAll")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	// report the exact field that failed to parse
	day, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}
	clock, err := time.Parse(timeLayout, req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time, expected HH:MM"})
		return
	}

	startsAt := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)

	created, err := h.service.Create(c, service.CreateSessionParams{
		StartsAt: startsAt,
		Capacity: req.Capacity,
		Notes:    req.Notes,
	})
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c, id); err != nil {
		h.handleError(c, err, "Delete")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Participants(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	session, participants, err := h.service.Participants(c, id)
	if err != nil {
		h.handleError(c, err, "Participants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":      session,
		"participants": participants,
	})
}

func (h *SessionHandler) AdminDashboard(c *gin.Context) {
	dashboard, err := h.service.AdminDashboard(c)
	if err != nil {
		h.handleError(c, err, "AdminDashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *SessionHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		log.Warn("Session not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, apperrors.ErrSessionPast):
		log.Warn("Session already started")
		c.JSON(http.StatusConflict, gin.H{"error": "Past sessions cannot be deleted"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
