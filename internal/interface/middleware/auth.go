package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
	"github.com/kaamsetu/kaamsetu-api/pkg/response"
)

// Context keys set on successful authentication.
const (
	CtxIdentityIDKey = "identityID"
	CtxMobileKey     = "identityMobile"
	CtxRoleKey       = "identityRole"
)

// Auth validates the bearer session token and injects identity claims
// into the Gin context. Tokens are self-contained: there is no
// server-side session to consult and no revocation path short of
// expiry.
func Auth(tokens *helpers.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}
		c.Set(CtxIdentityIDKey, claims.IdentityID)
		c.Set(CtxMobileKey, claims.Mobile)
		c.Set(CtxRoleKey, claims.Role)
		c.Next()
	}
}
