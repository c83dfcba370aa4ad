package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
	"github.com/kaamsetu/kaamsetu-api/internal/interface/middleware"
	"github.com/kaamsetu/kaamsetu-api/pkg/response"
	"github.com/kaamsetu/kaamsetu-api/pkg/resume"
	"github.com/kaamsetu/kaamsetu-api/pkg/validation"
)

// ResumeHandler proxies resume generation to the external renderer.
// Rendering, templating and artifact storage all live in that service;
// this side only authenticates the caller and forwards profile data.
type ResumeHandler struct {
	Client *resume.Client
	Logger *logrus.Logger
}

func NewResumeHandler(client *resume.Client, logger *logrus.Logger) *ResumeHandler {
	return &ResumeHandler{Client: client, Logger: logger}
}

// Generate POST /resume/generate (candidate sessions only)
func (h *ResumeHandler) Generate(c *gin.Context) {
	if c.GetString(middleware.CtxRoleKey) != string(entity.RoleCandidate) {
		response.Error[any](c, http.StatusForbidden, "resume generation is for candidate accounts", nil)
		return
	}

	var p resume.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if strings.TrimSpace(p.FullName) == "" {
		response.Error[any](c, http.StatusBadRequest, "full_name is required", nil)
		return
	}
	// The profile belongs to the session holder; never render for
	// someone else's mobile.
	p.Mobile = c.GetString(middleware.CtxMobileKey)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res, err := h.Client.Generate(ctx, p)
	if err != nil {
		h.Logger.WithError(err).Error("resume generation failed")
		response.Error[any](c, http.StatusBadGateway, "resume service unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "resume generated", nil)
}

// Health GET /resume/health — reachability of the external renderer.
func (h *ResumeHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Client.Health(ctx); err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, "resume service unreachable", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "ok", nil)
}
