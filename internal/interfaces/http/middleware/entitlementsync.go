package middleware

import (
	"github.com/gin-gonic/gin"

	entitlementUsecases "sceneforge/internal/application/entitlement/usecases"
	"sceneforge/internal/infrastructure/auth"
	"sceneforge/internal/shared/constants"
	"sceneforge/internal/shared/logger"
)

// EntitlementSyncMiddleware reconciles the token's entitlement claims against
// the stored record on every authenticated request. The record always wins:
// stale claims never widen access, they just get a fresh token in the
// response header. Reconciliation failures are logged and the request
// proceeds; handlers load the record themselves before any quota decision.
type EntitlementSyncMiddleware struct {
	reconcileUC *entitlementUsecases.ReconcileClaimsUseCase
	logger      logger.Interface
}

func NewEntitlementSyncMiddleware(
	reconcileUC *entitlementUsecases.ReconcileClaimsUseCase,
	logger logger.Interface,
) *EntitlementSyncMiddleware {
	return &EntitlementSyncMiddleware{
		reconcileUC: reconcileUC,
		logger:      logger,
	}
}

func (m *EntitlementSyncMiddleware) Sync() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(constants.ContextKeyClaims)
		if !exists {
			c.Next()
			return
		}

		claims, ok := value.(*auth.EntitlementClaims)
		if !ok {
			c.Next()
			return
		}

		result, err := m.reconcileUC.Execute(c.Request.Context(), claims.Snapshot())
		if err != nil {
			m.logger.Warnw("entitlement reconciliation failed",
				"user_id", claims.Subject,
				"error", err)
			c.Next()
			return
		}

		if result.Diverged && result.ReissuedToken != "" {
			c.Header(constants.HeaderEntitlementToken, result.ReissuedToken)
		}

		c.Next()
	}
}
