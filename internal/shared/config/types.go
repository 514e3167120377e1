// Package config defines the typed configuration structures shared across the
// application. Loading and defaulting live in internal/infrastructure/config.
package config

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database connection configuration.
// Driver selects between mysql (production) and sqlite (local/test).
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RedisConfig holds redis connection configuration.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds entitlement token configuration.
type AuthConfig struct {
	TokenSecret  string `mapstructure:"token_secret" validate:"required"`
	TokenExpDays int    `mapstructure:"token_exp_days"`
}

// EntitlementConfig fixes the canonical free-tier limits. Every code path
// that mints or resets a free entitlement must read them from here.
type EntitlementConfig struct {
	FreeTotalPages       int `mapstructure:"free_total_pages"`
	FreeMaxShotsPerScene int `mapstructure:"free_max_shots_per_scene"`
}

// PayUConfig holds the domestic gateway credentials and redirect targets.
type PayUConfig struct {
	MerchantKey  string `mapstructure:"merchant_key"`
	MerchantSalt string `mapstructure:"merchant_salt"`
	BaseURL      string `mapstructure:"base_url"`
	SuccessURL   string `mapstructure:"success_url"`
	FailureURL   string `mapstructure:"failure_url"`
	CancelURL    string `mapstructure:"cancel_url"`
}

// StripeConfig holds the international gateway credentials.
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	APIBaseURL    string `mapstructure:"api_base_url"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
}

// PaymentConfig groups gateway adapters and ledger housekeeping windows.
type PaymentConfig struct {
	PayU                 PayUConfig   `mapstructure:"payu"`
	Stripe               StripeConfig `mapstructure:"stripe"`
	ProductInfo          string       `mapstructure:"product_info"`
	PendingExpiryHours   int          `mapstructure:"pending_expiry_hours"`
	SweepIntervalMinutes int          `mapstructure:"sweep_interval_minutes"`
}

// PromoConfig lists the currently valid promo codes.
type PromoConfig struct {
	ValidCodes []string `mapstructure:"valid_codes"`
}

// EmailConfig holds SMTP configuration for payment receipts.
type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// ExchangeRateConfig holds static display-conversion rates, expressed as the
// number of source currency units per one display currency unit.
type ExchangeRateConfig struct {
	DisplayCurrency string             `mapstructure:"display_currency"`
	Rates           map[string]float64 `mapstructure:"rates"`
}
