package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sceneforge/internal/application/billing/gateway"
	billingUsecases "sceneforge/internal/application/billing/usecases"
	entitlementUsecases "sceneforge/internal/application/entitlement/usecases"
	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/domain/shared/services"
	"sceneforge/internal/infrastructure/auth"
	"sceneforge/internal/infrastructure/cache"
	"sceneforge/internal/infrastructure/config"
	"sceneforge/internal/infrastructure/email"
	"sceneforge/internal/infrastructure/exchangerate"
	"sceneforge/internal/infrastructure/gateway/payu"
	"sceneforge/internal/infrastructure/gateway/stripe"
	"sceneforge/internal/infrastructure/repository"
	"sceneforge/internal/infrastructure/scheduler"
	"sceneforge/internal/interfaces/http/handlers"
	"sceneforge/internal/interfaces/http/middleware"
	sharedDB "sceneforge/internal/shared/db"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/utils"
)

// Router wires the repositories, use cases, handlers and middleware into a
// gin engine. The billing scheduler is built here too so the server command
// can start and stop it alongside the HTTP listener.
type Router struct {
	engine             *gin.Engine
	entitlementHandler *handlers.EntitlementHandler
	billingHandler     *handlers.BillingHandler
	promoHandler       *handlers.PromoHandler
	authMiddleware     *middleware.AuthMiddleware
	syncMiddleware     *middleware.EntitlementSyncMiddleware
	billingScheduler   *scheduler.BillingScheduler
	allowedOrigins     []string
	logger             logger.Interface
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	entitlementRepo := repository.NewEntitlementRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	promoRepo := repository.NewPromoUsageRepository(db)

	snapshotCache := cache.NewEntitlementSnapshotCache(redisClient, log)
	tokenService := auth.NewEntitlementTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenExpDays)
	freeLimits := entitlement.FreeLimits(cfg.Entitlement.FreeTotalPages, cfg.Entitlement.FreeMaxShotsPerScene)

	gateways := map[vo.Gateway]gateway.PaymentGateway{
		vo.GatewayPayU:   payu.NewGateway(&cfg.Payment.PayU),
		vo.GatewayStripe: stripe.NewGateway(&cfg.Payment.Stripe),
	}

	getEntitlementUC := entitlementUsecases.NewGetEntitlementUseCase(entitlementRepo, freeLimits, log)
	quotaChecksUC := entitlementUsecases.NewQuotaChecksUseCase(getEntitlementUC, log)
	incrementUsageUC := entitlementUsecases.NewIncrementPageUsageUseCase(entitlementRepo, snapshotCache, freeLimits, log)
	upgradeUC := entitlementUsecases.NewUpgradeToProUseCase(entitlementRepo, snapshotCache, freeLimits, log)
	reconcileUC := entitlementUsecases.NewReconcileClaimsUseCase(entitlementRepo, snapshotCache, tokenService, freeLimits, log)
	txManager := sharedDB.NewTransactionManager(db)
	redeemPromoUC := entitlementUsecases.NewRedeemPromoCodeUseCase(
		promoRepo, upgradeUC, txManager, cfg.Promo.ValidCodes, log)

	createCheckoutUC := billingUsecases.NewCreateCheckoutUseCase(
		txnRepo, gateways, services.NewTransactionNumberGenerator(), cfg.Payment.ProductInfo, log)
	handleCallbackUC := billingUsecases.NewHandleCallbackUseCase(txnRepo, gateways, upgradeUC, log)
	if cfg.Email.SMTPHost != "" {
		handleCallbackUC.SetReceiptSender(email.NewReceiptMailer(cfg.Email, log))
	}
	converter := exchangerate.NewStaticRateService(cfg.ExchangeRate, log)
	historyUC := billingUsecases.NewPaymentHistoryUseCase(txnRepo, converter, log)

	expirePendingUC := billingUsecases.NewExpirePendingTransactionsUseCase(
		txnRepo, time.Duration(cfg.Payment.PendingExpiryHours)*time.Hour, log)
	stuckUpgradesUC := billingUsecases.NewCompleteStuckUpgradesUseCase(txnRepo, upgradeUC, log)
	billingScheduler := scheduler.NewBillingScheduler(
		expirePendingUC, stuckUpgradesUC,
		time.Duration(cfg.Payment.SweepIntervalMinutes)*time.Minute, log)

	entitlementHandler := handlers.NewEntitlementHandler(getEntitlementUC, quotaChecksUC, incrementUsageUC, log)
	billingHandler := handlers.NewBillingHandler(createCheckoutUC, handleCallbackUC, historyUC, log)
	promoHandler := handlers.NewPromoHandler(redeemPromoUC, log)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, log)
	syncMiddleware := middleware.NewEntitlementSyncMiddleware(reconcileUC, log)

	return &Router{
		engine:             engine,
		entitlementHandler: entitlementHandler,
		billingHandler:     billingHandler,
		promoHandler:       promoHandler,
		authMiddleware:     authMiddleware,
		syncMiddleware:     syncMiddleware,
		billingScheduler:   billingScheduler,
		allowedOrigins:     cfg.Server.AllowedOrigins,
		logger:             log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(r.allowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, 200, "ok", nil)
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Gateway callbacks authenticate by signature, not bearer token.
	payments := r.engine.Group("/payments")
	{
		payments.POST("/callback/:gateway", r.billingHandler.HandleGatewayCallback)
	}

	authed := r.engine.Group("/")
	authed.Use(r.authMiddleware.RequireAuth(), r.syncMiddleware.Sync())
	{
		authed.GET("/entitlements/me", r.entitlementHandler.GetMyEntitlement)
		authed.POST("/entitlements/checks/pages", r.entitlementHandler.CheckPageQuota)
		authed.POST("/entitlements/checks/shots", r.entitlementHandler.CheckShotsQuota)
		authed.GET("/entitlements/checks/storyboards", r.entitlementHandler.CheckStoryboardAccess)
		authed.POST("/entitlements/usage/pages", r.entitlementHandler.ConsumePages)

		authed.POST("/payments/checkout", r.billingHandler.CreateCheckout)
		authed.GET("/payments/history", r.billingHandler.GetPaymentHistory)
		authed.GET("/payments/stats", r.billingHandler.GetPaymentStats)

		authed.POST("/promo/redeem", r.promoHandler.Redeem)
	}
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetScheduler returns the billing sweep scheduler for lifecycle management.
func (r *Router) GetScheduler() *scheduler.BillingScheduler {
	return r.billingScheduler
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
