package handler

import (
	"errors"
	"net/http"

	"studio-booking/internal/model"
	"studio-booking/internal/service"
	apperrors "studio-booking/pkg/app_errors"
	"studio-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service service.BookingService
}

func NewReservationHandler(service service.BookingService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("reservations", h.Create)
		router.PUT("reservations/:id/cancel", h.Cancel)
		router.PUT("reservations/:id/move", h.Move)
		router.GET("reservations/:id/move-candidates", h.MoveCandidates)
	}
}

func (h *ReservationHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.PUT("reservations/:id/cancel-refund", h.AdminCancelRefund)
	router.PUT("reservations/:id/no-show", h.MarkNoShow)
}

// CancelReservationRequest 取消請求，member_id 為操作者
type CancelReservationRequest struct {
	MemberID int `json:"member_id" binding:"required"`
}

// MoveReservationRequest 改期請求
type MoveReservationRequest struct {
	MemberID        int `json:"member_id" binding:"required"`
	TargetSessionID int `json:"target_session_id" binding:"required"`
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req model.CreateReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Reserve(c, req)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req CancelReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	if err := h.service.Cancel(c, id, req.MemberID); err != nil {
		h.handleError(c, err, "Cancel")
		return
	}

	c.Status(http.StatusOK)
}

func (h *ReservationHandler) Move(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req MoveReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Move(c, id, req.TargetSessionID, req.MemberID)
	if err != nil {
		h.handleError(c, err, "Move")
		return
	}

	c.JSON(http.StatusOK, created)
}

func (h *ReservationHandler) MoveCandidates(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	sessions, err := h.service.MoveCandidates(c, id)
	if err != nil {
		h.handleError(c, err, "MoveCandidates")
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func (h *ReservationHandler) AdminCancelRefund(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.AdminCancelRefund(c, id); err != nil {
		h.handleError(c, err, "AdminCancelRefund")
		return
	}

	c.Status(http.StatusOK)
}

func (h *ReservationHandler) MarkNoShow(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkNoShow(c, id); err != nil {
		h.handleError(c, err, "MarkNoShow")
		return
	}

	c.Status(http.StatusOK)
}

func (h *ReservationHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrReservationNotFound):
		log.Warn("Reservation not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
	case errors.Is(err, apperrors.ErrSessionNotFound):
		log.Warn("Session not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, apperrors.ErrMemberNotFound):
		log.Warn("Member not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		log.Warn("Not the reservation owner")
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	case errors.Is(err, apperrors.ErrSessionClosed):
		log.Warn("Session closed")
		c.JSON(http.StatusConflict, gin.H{"error": "Session is completed or in the past"})
	case errors.Is(err, apperrors.ErrSessionFull):
		log.Warn("Session full")
		c.JSON(http.StatusConflict, gin.H{"error": "Session is full"})
	case errors.Is(err, apperrors.ErrNoCredits):
		log.Warn("No credits left")
		c.JSON(http.StatusConflict, gin.H{"error": "No credits left"})
	case errors.Is(err, apperrors.ErrAlreadyBooked):
		log.Warn("Already booked")
		c.JSON(http.StatusConflict, gin.H{"error": "Already booked for this session"})
	case errors.Is(err, apperrors.ErrNotActive):
		log.Warn("Reservation not active")
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation is not active"})
	case errors.Is(err, apperrors.ErrTooLateToCancel):
		log.Warn("Cancellation window closed")
		c.JSON(http.StatusConflict, gin.H{"error": "Too late to cancel"})
	case errors.Is(err, apperrors.ErrSessionPast):
		log.Warn("Session already started")
		c.JSON(http.StatusConflict, gin.H{"error": "Session is in the past"})
	case errors.Is(err, apperrors.ErrTargetPast):
		log.Warn("Target session already started")
		c.JSON(http.StatusConflict, gin.H{"error": "Target session is in the past"})
	case errors.Is(err, apperrors.ErrTargetFull):
		log.Warn("Target session full")
		c.JSON(http.StatusConflict, gin.H{"error": "Target session is full"})
	case errors.Is(err, apperrors.ErrNotAttended):
		log.Warn("Reservation not attended")
		c.JSON(http.StatusConflict, gin.H{"error": "Only attended reservations can be marked no-show"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
