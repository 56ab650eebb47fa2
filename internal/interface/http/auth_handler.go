package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/argentumhq/argentum/internal/application"
	"github.com/argentumhq/argentum/internal/domain/entity"
	repo "github.com/argentumhq/argentum/internal/domain/repository"
	"github.com/argentumhq/argentum/internal/domain/valueobject"
	"github.com/argentumhq/argentum/internal/interface/middleware"
	"github.com/argentumhq/argentum/pkg/response"
	"github.com/argentumhq/argentum/pkg/validation"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Svc    *application.Service
	Audit  application.AuditRecorder
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, audit application.AuditRecorder, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Audit: audit, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Username string `json:"username" binding:"required,uname"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func (h *AuthHandler) audit(c *gin.Context, action, userID, email string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	h.Audit.Record(c.Request.Context(), application.AuditEvent{
		Action:    action,
		UserID:    userID,
		Email:     email,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("request_id"),
		Metadata:  metadata,
	})
}

func isValidationErr(err error) bool {
	return errors.Is(err, valueobject.ErrInvalidEmail) ||
		errors.Is(err, valueobject.ErrInvalidPassword) ||
		errors.Is(err, entity.ErrInvalidUsername)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.ToDetails(err))
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		var conflict *repo.AlreadyExistsError
		switch {
		case errors.As(err, &conflict):
			h.audit(c, application.AuditRegisterConflict, "", req.Email, map[string]any{"field": conflict.Field})
			response.Detail(c, http.StatusBadRequest, conflict.Error())
		case isValidationErr(err):
			response.Detail(c, http.StatusUnprocessableEntity, err.Error())
		default:
			h.Logger.WithError(err).Error("register failed")
			response.Detail(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.audit(c, application.AuditRegisterSuccess, user.ID, user.Email, nil)
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.ToDetails(err))
		return
	}

	token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			// Identical body for unknown email and wrong password.
			h.audit(c, application.AuditLoginFailedCredentials, "", req.Email, nil)
			c.Header("WWW-Authenticate", "Bearer")
			response.Detail(c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error())
		case errors.Is(err, application.ErrUserNotActive):
			h.audit(c, application.AuditLoginFailedInactiveUser, "", req.Email, nil)
			response.Detail(c, http.StatusForbidden, application.ErrUserNotActive.Error())
		case isValidationErr(err):
			response.Detail(c, http.StatusUnprocessableEntity, err.Error())
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Detail(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.audit(c, application.AuditLoginSuccess, "", req.Email, nil)
	c.JSON(http.StatusOK, token)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	user, err := h.Svc.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			response.Detail(c, http.StatusNotFound, "user not found")
			return
		}
		h.Logger.WithError(err).Error("current user lookup failed")
		response.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	h.audit(c, application.AuditMeSuccess, user.ID, user.Email, nil)
	c.JSON(http.StatusOK, user)
}
