package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/kaamsetu/kaamsetu-api/internal/application"
	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
	"github.com/kaamsetu/kaamsetu-api/internal/interface/middleware"
	"github.com/kaamsetu/kaamsetu-api/pkg/response"
	"github.com/kaamsetu/kaamsetu-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	DB     *pgxpool.Pool
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, db *pgxpool.Pool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, DB: db, Logger: logger}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func meta(c *gin.Context) application.ClientMeta {
	return application.ClientMeta{IP: clientIP(c), Device: c.GetHeader("User-Agent")}
}

type sendOTPRequest struct {
	Mobile string `json:"mobile" binding:"required,mobile"`
	Role   string `json:"role" binding:"omitempty,oneof=candidate employer admin"`
}

// SendOTP POST /auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	otp, err := h.Svc.RequestCode(c.Request.Context(), req.Mobile, entity.Role(req.Role), meta(c))
	if err != nil {
		if errors.Is(err, application.ErrInvalidInput) {
			response.Error[any](c, http.StatusBadRequest, "a valid mobile number is required", nil)
			return
		}
		h.Logger.WithError(err).WithField("mobile", req.Mobile).Error("send otp failed")
		response.Error[any](c, http.StatusInternalServerError, "could not send OTP", nil)
		return
	}

	// Identical response shape whether the identity was created or
	// refreshed; account existence is not revealed here.
	data := gin.H{}
	if otp != "" {
		data["otp"] = otp
	}
	response.Success(c, http.StatusOK, data, "OTP sent successfully", nil)
}

type verifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

// VerifyOTP POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "mobile and otp are required", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.VerifyCode(c.Request.Context(), req.Mobile, req.OTP, meta(c))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidInput):
			response.Error[any](c, http.StatusBadRequest, "mobile and otp are required", nil)
		case errors.Is(err, application.ErrInvalidCode):
			response.Error[any](c, http.StatusBadRequest, "Invalid OTP", nil)
		case errors.Is(err, application.ErrCodeExpired):
			response.Error[any](c, http.StatusBadRequest, "OTP expired, please request a new one", nil)
		default:
			h.Logger.WithError(err).WithField("mobile", req.Mobile).Error("verify otp failed")
			response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":            res.Token,
		"user":             res.Identity,
		"profileCompleted": res.ProfileCompleted,
		"redirectTo":       res.RedirectTo,
	}, "OTP verified successfully", gin.H{"token_expires_at": res.TokenExpiry})
}

type registerRequest struct {
	Mobile   string `json:"mobile" binding:"required,mobile"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,pwd"`
	Role     string `json:"role" binding:"omitempty,oneof=candidate employer admin"`
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Mobile:   req.Mobile,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	}, meta(c))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidInput):
			response.Error[any](c, http.StatusBadRequest, "a valid mobile number is required", nil)
		case errors.Is(err, application.ErrAlreadyExists):
			response.Error[any](c, http.StatusBadRequest, "mobile number already registered", nil)
		default:
			h.Logger.WithError(err).WithField("mobile", req.Mobile).Error("register failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token": res.Token,
		"user":  res.Identity,
	}, "registered successfully", gin.H{"token_expires_at": res.TokenExpiry})
}

// Health GET /auth/health — liveness probe against the durable store.
func (h *AuthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var now time.Time
	if err := h.DB.QueryRow(ctx, `SELECT now()`).Scan(&now); err != nil {
		h.Logger.WithError(err).Error("health check failed")
		response.Error[any](c, http.StatusInternalServerError, "database unreachable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"server_time": now}, "ok", nil)
}

// Me GET /auth/me — returns the claims of the presented session token.
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"id":     c.GetString(middleware.CtxIdentityIDKey),
		"mobile": c.GetString(middleware.CtxMobileKey),
		"role":   c.GetString(middleware.CtxRoleKey),
	}, "session", nil)
}
