package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config captures runtime configuration for the storefront API.
type Config struct {
	AppEnv string
	Port   int

	DataDir   string
	UploadDir string

	RedisURL string

	CartTTL           time.Duration
	SessionCookieName string
	SessionSecure     bool
	SessionSameSite   http.SameSite

	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	AdminTokenTTL     time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	SalesEmail   string
	EmailEnabled bool

	PayPalMode     string
	PayPalClientID string
	PayPalSecret   string
	PayPalBaseURL  string
	CheckoutReturnURL string
	CheckoutCancelURL string

	CurrencyCode string

	CORSAllowedOrigins []string

	RateLimitEnabled bool
	RateLimitWindow  time.Duration
	RateLimitMax     int

	LogFormat string
	LogLevel  string

	MetricsNamespace  string
	MetricsBucketsCSV string

	TracingEnabled  bool
	TracingEndpoint string
	TracingRatio    float64

	PendingOrderTTL time.Duration
	IdempotencyTTL  time.Duration
}

// Load reads configuration from the environment, loading a .env file first
// when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Config{
		AppEnv: valueOrDefault(k.String("APP_ENV"), "development"),
		Port:   parseInt(k.String("PORT"), 8080),

		DataDir:   valueOrDefault(k.String("DATA_DIR"), "data"),
		UploadDir: valueOrDefault(k.String("UPLOAD_DIR"), "data/uploads"),

		RedisURL: valueOrDefault(k.String("REDIS_URL"), "redis://localhost:6379/0"),

		CartTTL:           parseDuration(k.String("CART_TTL"), 7*24*time.Hour),
		SessionCookieName: valueOrDefault(k.String("SESSION_COOKIE_NAME"), "qc_session"),
		SessionSecure:     parseBool(k.String("SESSION_COOKIE_SECURE"), false),
		SessionSameSite:   parseSameSite(k.String("SESSION_COOKIE_SAMESITE"), http.SameSiteLaxMode),

		AdminUsername:     valueOrDefault(k.String("ADMIN_USERNAME"), "admin"),
		AdminPasswordHash: k.String("ADMIN_PASSWORD_HASH"),
		JWTSecret:         k.String("JWT_SECRET"),
		AdminTokenTTL:     parseDuration(k.String("ADMIN_TOKEN_TTL"), 12*time.Hour),

		SMTPHost:     k.String("SMTP_HOST"),
		SMTPPort:     parseInt(k.String("SMTP_PORT"), 587),
		SMTPUsername: k.String("SMTP_USERNAME"),
		SMTPPassword: k.String("SMTP_PASSWORD"),
		MailFrom:     valueOrDefault(k.String("MAIL_FROM"), "no-reply@qualclamps.example"),
		SalesEmail:   valueOrDefault(k.String("SALES_EMAIL"), "sales@qualclamps.example"),
		EmailEnabled: parseBool(k.String("EMAIL_ENABLED"), false),

		PayPalMode:        valueOrDefault(k.String("PAYPAL_MODE"), "sandbox"),
		PayPalClientID:    k.String("PAYPAL_CLIENT_ID"),
		PayPalSecret:      k.String("PAYPAL_SECRET"),
		PayPalBaseURL:     k.String("PAYPAL_BASE_URL"),
		CheckoutReturnURL: valueOrDefault(k.String("CHECKOUT_RETURN_URL"), "http://localhost:8080/api/v1/checkout/paypal/confirm"),
		CheckoutCancelURL: valueOrDefault(k.String("CHECKOUT_CANCEL_URL"), "http://localhost:8080/api/v1/checkout/paypal/cancel"),

		CurrencyCode: valueOrDefault(k.String("CURRENCY_CODE"), "USD"),

		CORSAllowedOrigins: splitAndTrim(valueOrDefault(k.String("CORS_ALLOWED_ORIGINS"), "*")),

		RateLimitEnabled: parseBool(k.String("RATE_LIMIT_ENABLED"), true),
		RateLimitWindow:  parseDuration(k.String("RATE_LIMIT_WINDOW"), time.Minute),
		RateLimitMax:     parseInt(k.String("RATE_LIMIT_MAX"), 120),

		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),

		MetricsNamespace:  valueOrDefault(k.String("METRICS_NAMESPACE"), "storefront"),
		MetricsBucketsCSV: k.String("METRICS_BUCKETS_MS"),

		TracingEnabled:  parseBool(k.String("OBS_TRACING_ENABLED"), false),
		TracingEndpoint: k.String("OBS_TRACING_ENDPOINT"),
		TracingRatio:    parseFloat(k.String("OBS_TRACING_RATIO"), 1.0),

		PendingOrderTTL: parseDuration(k.String("PENDING_ORDER_TTL"), time.Hour),
		IdempotencyTTL:  parseDuration(k.String("IDEMPOTENCY_TTL"), 24*time.Hour),
	}
	return cfg, nil
}

// MustLoad loads configuration or exits the process.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// HTTPAddr renders the listen address for the HTTP server.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// LoadForTests loads configuration with the provided env overrides applied,
// restoring the previous environment afterwards.
func LoadForTests(t interface {
	Helper()
	Cleanup(func())
}, overrides map[string]string) (Config, error) {
	t.Helper()
	saved := map[string]*string{}
	for key, value := range overrides {
		if prev, ok := os.LookupEnv(key); ok {
			prevCopy := prev
			saved[key] = &prevCopy
		} else {
			saved[key] = nil
		}
		os.Setenv(key, value)
	}
	t.Cleanup(func() {
		for key, prev := range saved {
			if prev == nil {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, *prev)
			}
		}
	})
	return Load()
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string, fallback bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	b, err := strconv.ParseBool(trimmed)
	if err != nil {
		return fallback
	}
	return b
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fallback
	}
	return d
}

func parseSameSite(value string, fallback http.SameSite) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	case "":
		return fallback
	default:
		return fallback
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
