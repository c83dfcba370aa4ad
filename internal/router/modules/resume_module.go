package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaamsetu/kaamsetu-api/internal/container"
	handlers "github.com/kaamsetu/kaamsetu-api/internal/interface/http"
	"github.com/kaamsetu/kaamsetu-api/internal/interface/middleware"
	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
)

// ResumeModule exposes the resume generation proxy.
// Protected: POST /api/resume/generate. Public: GET /api/resume/health.
type ResumeModule struct {
	Handler *handlers.ResumeHandler
	Tokens  *helpers.TokenIssuer
}

func NewResumeModule(h *handlers.ResumeHandler, tokens *helpers.TokenIssuer) *ResumeModule {
	return &ResumeModule{Handler: h, Tokens: tokens}
}

func (m *ResumeModule) Register(rg *gin.RouterGroup) {
	// PDF rendering is slow and external; keep the budget small.
	generateLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIP(), nil)
	healthLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/resume/health", healthLimiter, m.Handler.Health)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.POST("/resume/generate", generateLimiter, m.Handler.Generate)
	}
}
