package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	SMS      SMSConfig
	Recon    ReconConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig holds the access-token secret shared with the auth service.
// Tokens are issued elsewhere; this service only validates them.
type JWTConfig struct {
	AccessSecret string
	Issuer       string
}

// RazorpayConfig holds the gateway credential pair. The key secret is also
// the HMAC secret for checkout signature verification.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Mode      string // "test" or "live"; derived from key prefix when empty
}

type SMSConfig struct {
	APIKey  string
	BaseURL string
	Sender  string
}

// ReconConfig drives the booking-sync reconciliation sweeper.
type ReconConfig struct {
	Interval  time.Duration
	BatchSize int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8086"),
			Env:          env("ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 35 * time.Second, // gateway calls may take up to 30s
		},
		Database: DatabaseConfig{
			DSN:             env("DB_DSN", "fixserv:fixserv@tcp(localhost:3306)/fixserv?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: env("JWT_ACCESS_SECRET", ""),
			Issuer:       env("JWT_ISSUER", "fixserv"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     env("RAZORPAY_KEY_ID", ""),
			KeySecret: env("RAZORPAY_KEY_SECRET", ""),
			BaseURL:   env("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			Mode:      env("RAZORPAY_MODE", ""),
		},
		SMS: SMSConfig{
			APIKey:  env("SMS_API_KEY", ""),
			BaseURL: env("SMS_BASE_URL", "https://www.fast2sms.com/dev/bulkV2"),
			Sender:  env("SMS_SENDER", "FIXSRV"),
		},
		Recon: ReconConfig{
			Interval:  time.Duration(envInt("RECON_INTERVAL_SEC", 60)) * time.Second,
			BatchSize: envInt("RECON_BATCH_SIZE", 50),
		},
	}
}

// GatewayMode returns the configured mode, falling back to the key prefix.
func (c *RazorpayConfig) GatewayMode() string {
	if c.Mode != "" {
		return c.Mode
	}
	if strings.HasPrefix(c.KeyID, "rzp_live_") {
		return "live"
	}
	return "test"
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
