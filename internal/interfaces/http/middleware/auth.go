package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sceneforge/internal/infrastructure/auth"
	"sceneforge/internal/shared/constants"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/utils"
)

// AuthMiddleware authenticates requests with the entitlement token. The
// claims it stores in the context are a hint only; the sync middleware
// reconciles them against the stored record before any quota decision.
type AuthMiddleware struct {
	tokenService *auth.EntitlementTokenService
	logger       logger.Interface
}

func NewAuthMiddleware(tokenService *auth.EntitlementTokenService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		logger:       logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.tokenService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify entitlement token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.Subject)
		c.Set(constants.ContextKeyClaims, claims)

		c.Next()
	}
}
