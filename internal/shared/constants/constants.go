package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType      = "Content-Type"
	HeaderAuthorization    = "Authorization"
	HeaderXRequestID       = "X-Request-ID"
	HeaderEntitlementToken = "X-Entitlement-Token"

	// Content Types
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyClaims    = "entitlement_claims"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableEntitlements   = "entitlements"
	TableTransactions   = "payment_transactions"
	TablePromoCodeUsage = "promo_code_usage"
)
