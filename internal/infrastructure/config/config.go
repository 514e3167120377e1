package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "sceneforge/internal/shared/config"
	"sceneforge/internal/shared/utils"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Auth         sharedConfig.AuthConfig         `mapstructure:"auth"`
	Entitlement  sharedConfig.EntitlementConfig  `mapstructure:"entitlement"`
	Payment      sharedConfig.PaymentConfig      `mapstructure:"payment"`
	Promo        sharedConfig.PromoConfig        `mapstructure:"promo"`
	Email        sharedConfig.EmailConfig        `mapstructure:"email"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	ExchangeRate sharedConfig.ExchangeRateConfig `mapstructure:"exchange_rate"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("SCENEFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := utils.ValidateStruct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Database defaults
	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "sceneforge_dev")
	viper.SetDefault("database.sqlite_path", "sceneforge.db")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	viper.SetDefault("auth.token_secret", "change-me-in-production")
	viper.SetDefault("auth.token_exp_days", 30)

	// Entitlement defaults
	viper.SetDefault("entitlement.free_total_pages", 10)
	viper.SetDefault("entitlement.free_max_shots_per_scene", 5)

	// Payment defaults
	viper.SetDefault("payment.product_info", "SceneForge Pro Upgrade")
	viper.SetDefault("payment.pending_expiry_hours", 24)
	viper.SetDefault("payment.sweep_interval_minutes", 15)
	viper.SetDefault("payment.payu.base_url", "https://secure.payu.in")
	viper.SetDefault("payment.payu.merchant_key", "")
	viper.SetDefault("payment.payu.merchant_salt", "")
	viper.SetDefault("payment.payu.success_url", "http://localhost:8080/api/payments/payu/success")
	viper.SetDefault("payment.payu.failure_url", "http://localhost:8080/api/payments/payu/failure")
	viper.SetDefault("payment.stripe.api_base_url", "https://api.stripe.com")
	viper.SetDefault("payment.stripe.secret_key", "")
	viper.SetDefault("payment.stripe.webhook_secret", "")
	viper.SetDefault("payment.stripe.success_url", "http://localhost:8080/payment/success")
	viper.SetDefault("payment.stripe.cancel_url", "http://localhost:8080/payment/cancel")
	viper.SetDefault("payment.stripe.timeout_sec", 15)

	// Promo defaults (no codes valid unless configured)
	viper.SetDefault("promo.valid_codes", []string{})

	// Email defaults
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)
	viper.SetDefault("email.smtp_user", "")
	viper.SetDefault("email.smtp_password", "")
	viper.SetDefault("email.from_address", "noreply@sceneforge.local")
	viper.SetDefault("email.from_name", "SceneForge")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Exchange rate defaults: INR per USD, display only.
	viper.SetDefault("exchange_rate.display_currency", "USD")
	viper.SetDefault("exchange_rate.rates", map[string]float64{"INR": 83.0})
}
