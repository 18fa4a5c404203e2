package handler

import (
	"errors"
	"net/http"

	"studio-booking/internal/service"
	apperrors "studio-booking/pkg/app_errors"
	"studio-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MemberHandler struct {
	service service.MemberService
}

func NewMemberHandler(service service.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

func (h *MemberHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("members/:id/dashboard", h.Dashboard)
	}
}

func (h *MemberHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("members", h.List)
	router.POST("members", h.Create)
	router.DELETE("members/:id", h.Delete)
	router.PUT("members/:id/credits", h.AdjustCredits)
}

// CreateMemberRequest 建立會員請求
type CreateMemberRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Credits  int    `json:"credits"`
}

// AdjustCreditsRequest 點數異動請求，負值會在零截止
type AdjustCreditsRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *MemberHandler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Register(c, req.FullName, req.Credits)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *MemberHandler) Delete(c *gin.Context) {
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

func (h *MemberHandler) AdjustCredits(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req AdjustCreditsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	member, err := h.service.AdjustCredits(c, id, req.Delta)
	if err != nil {
		h.handleError(c, err, "AdjustCredits")
		return
	}

	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Dashboard(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(c, id)
	if err != nil {
		h.handleError(c, err, "Dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *MemberHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrMemberNotFound):
		log.Warn("Member not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case errors.Is(err, apperrors.ErrDuplicateMember):
		log.Warn("Duplicate member name")
		c.JSON(http.StatusConflict, gin.H{"error": "Member name already registered"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
