package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaamsetu/kaamsetu-api/internal/container"
	handlers "github.com/kaamsetu/kaamsetu-api/internal/interface/http"
	"github.com/kaamsetu/kaamsetu-api/internal/interface/middleware"
	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
)

// AuthModule wires the OTP and registration endpoints.
// Public: POST /api/auth/send-otp, /api/auth/verify-otp, /api/auth/register,
// GET /api/auth/health. Protected: GET /api/auth/me.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  *helpers.TokenIssuer
}

func NewAuthModule(h *handlers.AuthHandler, tokens *helpers.TokenIssuer) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// OTP issuance is the abuse magnet; keep its per-IP budget tight.
	sendOTPLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyOTPLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	healthLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.POST("/auth/send-otp", sendOTPLimiter, m.Handler.SendOTP)
	rg.POST("/auth/verify-otp", verifyOTPLimiter, m.Handler.VerifyOTP)
	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.GET("/auth/health", healthLimiter, m.Handler.Health)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.GET("/auth/me", m.Handler.Me)
	}
}
