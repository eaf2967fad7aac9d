package landing

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultSiteURL = "https://solarly.ai"

// Config holds all configuration for the landing API.
type Config struct {
	BindAddress string
	Port        int
	LogLevel    string
	LogFormat   string

	// Site base URL used to build checkout redirect targets when the
	// request does not carry an origin of its own.
	SiteURL string

	// Signups store (Supabase PostgREST).
	SupabaseURL        string
	SupabaseServiceKey string
	SignupsTable       string

	// Transactional email (Resend). Optional — if the API key is empty,
	// notifications are logged instead of sent.
	ResendAPIKey string
	EmailFrom    string
	AlertEmail   string

	// Payments (Stripe).
	StripeAPIKey        string
	StripeWebhookSecret string
	PriceMonthlyID      string
	PriceTrialFeeID     string
}

// SignupsConfigured reports whether the signups store credentials are present.
func (c *Config) SignupsConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// CheckoutConfigured reports whether checkout session creation can work.
func (c *Config) CheckoutConfigured() bool {
	return c.StripeAPIKey != "" && c.PriceMonthlyID != "" && c.PriceTrialFeeID != ""
}

// LoadConfig loads landing API configuration from environment variables.
// A .env file is loaded if present but not required.
//
// The SaaS credential groups (Supabase, Resend, Stripe) are deliberately not
// boot-fatal: handlers that need a missing group answer 500 "server
// misconfigured" at request time, and the email path degrades to log-only.
func LoadConfig() (*Config, error) {
	// Best-effort .env loading (not required)
	_ = godotenv.Load()

	port, err := envOrDefaultInt("PORT", 8080)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BindAddress: envOrDefault("BIND_ADDRESS", "0.0.0.0"),
		Port:        port,
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "auto"),

		SiteURL: envOrDefault("SITE_URL", defaultSiteURL),

		SupabaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/"),
		SupabaseServiceKey: strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_ROLE_KEY")),
		SignupsTable:       envOrDefault("SIGNUPS_TABLE", "solarly_signups"),

		ResendAPIKey: strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		EmailFrom:    envOrDefault("EMAIL_FROM", "Solarly <no-reply@solarly.ai>"),
		AlertEmail:   strings.TrimSpace(os.Getenv("ALERT_EMAIL")),

		StripeAPIKey:        strings.TrimSpace(os.Getenv("STRIPE_API_KEY")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		PriceMonthlyID:      strings.TrimSpace(os.Getenv("STRIPE_PRICE_ADVISOR_MONTHLY")),
		PriceTrialFeeID:     strings.TrimSpace(os.Getenv("STRIPE_PRICE_ADVISOR_TRIAL_FEE")),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate landing config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	parsedSiteURL, err := url.Parse(c.SiteURL)
	if err != nil {
		return fmt.Errorf("SITE_URL must be a valid URL: %w", err)
	}
	if parsedSiteURL.Scheme != "http" && parsedSiteURL.Scheme != "https" {
		return fmt.Errorf("SITE_URL must use http or https scheme")
	}
	if parsedSiteURL.Host == "" {
		return fmt.Errorf("SITE_URL must include a host")
	}

	if c.SupabaseURL != "" {
		parsed, err := url.Parse(c.SupabaseURL)
		if err != nil {
			return fmt.Errorf("SUPABASE_URL must be a valid URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("SUPABASE_URL must use http or https scheme")
		}
	}
	return nil
}

// MissingGroups names the credential groups absent from the environment.
// Used for startup warnings only; responses never name a specific secret.
func (c *Config) MissingGroups() []string {
	var missing []string
	if !c.SignupsConfigured() {
		missing = append(missing, "supabase")
	}
	if c.ResendAPIKey == "" {
		missing = append(missing, "resend")
	}
	if !c.CheckoutConfigured() {
		missing = append(missing, "stripe-checkout")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "stripe-webhook")
	}
	return missing
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) (int, error) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
		}
		return n, nil
	}
	return fallback, nil
}
