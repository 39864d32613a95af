package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	PersistenceBackend string
	AssessmentsTable   string
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	SessionTTL         time.Duration
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	AdminJWTSecret     string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LeadEventsQueueURL  string
	ExportBucket        string

	// Sales notifications
	EmailProvider    string
	SendGridAPIKey   string
	EmailFrom        string
	EmailFromName    string
	SalesNotifyEmail string
	HotLeadMinScore  int

	// Outbox delivery
	OutboxPollInterval time.Duration
	OutboxMaxElapsed   time.Duration
	OutboxMaxAttempts  int
	OutboxRetryBase    time.Duration
	OutboxRetryMax     time.Duration

	// Voice agent widget embed
	WidgetAgentID           string
	WidgetContainerSelector string
	WidgetPollInterval      time.Duration
	WidgetSidecarURL        string
	WidgetPageURL           string

	SiteContentPath string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		PersistenceBackend: strings.ToLower(strings.TrimSpace(getEnv("PERSISTENCE_BACKEND", "postgres"))),
		AssessmentsTable:   getEnv("ASSESSMENTS_TABLE", "nova_assessments"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		SessionTTL:         getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LeadEventsQueueURL:  getEnv("LEAD_EVENTS_QUEUE_URL", ""),
		ExportBucket:        getEnv("EXPORT_BUCKET", ""),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:        getEnv("EMAIL_FROM", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Nova AI Voice"),
		SalesNotifyEmail: getEnv("SALES_NOTIFY_EMAIL", ""),
		HotLeadMinScore:  getEnvAsInt("HOT_LEAD_MIN_SCORE", 60),

		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		OutboxMaxElapsed:   getEnvAsDuration("OUTBOX_MAX_ELAPSED", 5*time.Second),
		OutboxMaxAttempts:  getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 8),
		OutboxRetryBase:    getEnvAsDuration("OUTBOX_RETRY_BASE", 30*time.Second),
		OutboxRetryMax:     getEnvAsDuration("OUTBOX_RETRY_MAX", time.Hour),

		WidgetAgentID:           getEnv("WIDGET_AGENT_ID", ""),
		WidgetContainerSelector: getEnv("WIDGET_CONTAINER_SELECTOR", "#nova-voice-agent"),
		WidgetPollInterval:      getEnvAsDuration("WIDGET_POLL_INTERVAL", time.Second),
		WidgetSidecarURL:        getEnv("WIDGET_SIDECAR_URL", ""),
		WidgetPageURL:           getEnv("WIDGET_PAGE_URL", ""),

		SiteContentPath: getEnv("SITE_CONTENT_PATH", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
