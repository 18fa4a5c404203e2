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

type AuthHandler struct {
	members service.MemberService
}

func NewAuthHandler(members service.MemberService) *AuthHandler {
	return &AuthHandler{members: members}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("auth/login", h.Login)
	}
}

// LoginRequest 姓名登入請求
type LoginRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	member, err := h.members.Login(c, req.Name)
	if err != nil {
		h.handleError(c, err, "Login")
		return
	}

	c.JSON(http.StatusOK, member)
}

func (h *AuthHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrMemberNotFound):
		log.Warn("Member not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
