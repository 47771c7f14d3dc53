package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                   string
	Environment            string
	CORSOrigins            []string
	DBDriver               string
	SupabaseURL            string
	SupabaseServiceRoleKey string
	ClerkSecretKey         string
	AppURL                 string
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	Email                  EmailConfig
	AI                     AIConfig
}

// EmailConfig selects and configures the outbound mail transport.
type EmailConfig struct {
	FromEmail    string
	ResendAPIKey string
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
}

// AIConfig points at an OpenAI-compatible local inference server.
type AIConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

func Load() *Config {
	return &Config{
		Port:                   getEnv("PORT", "8080"),
		Environment:            getEnv("NODE_ENV", "development"),
		CORSOrigins:            splitList(getEnv("CORS_ORIGIN", "*")),
		DBDriver:               getEnv("DB_DRIVER", "postgres"),
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		ClerkSecretKey:         getEnv("CLERK_SECRET_KEY", ""),
		AppURL:                 getEnv("APP_URL", "http://localhost:5173"),
		ReadTimeout:            getSeconds("READ_TIMEOUT_SECONDS", 15),
		WriteTimeout:           getSeconds("WRITE_TIMEOUT_SECONDS", 30),
		Email: EmailConfig{
			FromEmail:    getEnv("MAIL_FROM", "Projects <projects@resend.dev>"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			SMTPEnabled:  strings.EqualFold(getEnv("SMTP_ENABLED", "false"), "true"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPass:     getEnv("SMTP_PASS", ""),
		},
		AI: AIConfig{
			BaseURL: getEnv("AI_BASE_URL", ""),
			Model:   getEnv("AI_MODEL", "llama3.2"),
			APIKey:  getEnv("AI_API_KEY", ""),
		},
	}
}

// Validate reports every missing required option at once.
func (c *Config) Validate() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseServiceRoleKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if c.ClerkSecretKey == "" {
		missing = append(missing, "CLERK_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// GinMode maps the deployment environment onto gin's run modes.
func (c *Config) GinMode() string {
	switch {
	case c.IsProduction():
		return "release"
	case strings.EqualFold(c.Environment, "test"):
		return "test"
	default:
		return "debug"
	}
}

// DatabaseDSN returns the connection string for the configured driver. For
// postgres URLs without a password, the service role key is used.
func (c *Config) DatabaseDSN() string {
	if c.DBDriver != "postgres" {
		return c.SupabaseURL
	}

	u, err := url.Parse(c.SupabaseURL)
	if err != nil || u.User == nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return c.SupabaseURL
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		u.User = url.UserPassword(u.User.Username(), c.SupabaseServiceRoleKey)
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getSeconds(key string, defaultSeconds int) time.Duration {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		n = defaultSeconds
	}
	return time.Duration(n) * time.Second
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
