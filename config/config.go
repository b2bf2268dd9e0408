package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"guestcheckin/internal/ethsig"
)

// DefaultFactoryAddress identifies the factory when FACTORY_ADDRESS is unset.
// Registry addresses are derived from it, so changing it on a populated
// journal moves every registry.
const DefaultFactoryAddress = "0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0"

// MailConfig holds the operator alert mailer settings.
type MailConfig struct {
	Provider              string
	FromAddress           string
	FromName              string
	AlertEmail            string
	SESRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	SESInsecureSkipVerify bool
}

// Config holds all configuration for the application
type Config struct {
	Environment        string
	Port               string
	DBUrl              string
	JWTSecret          string
	JWTExpiry          time.Duration
	ChallengeTTL       time.Duration
	RequestTimeout     time.Duration
	FactoryAddress     ethsig.Address
	CORSAllowedOrigins []string
	Mail               MailConfig
}

// Load loads configuration from environment variables.
// Outside production it first loads a .env file if one exists.
func Load(logger *slog.Logger) (*Config, error) {
	env := getEnv("GO_ENV", "development")

	if env != "production" {
		if err := godotenv.Load(); err != nil {
			logger.Debug(".env file not loaded", "err", err)
		}
	}

	cfg := &Config{
		Environment: env,
		Port:        getEnv("PORT", "8080"),
		// Empty selects the in-memory journal.
		DBUrl:              os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Mail: MailConfig{
			Provider:           getEnv("MAIL_PROVIDER", "noop"),
			FromAddress:        os.Getenv("MAIL_FROM_ADDRESS"),
			FromName:           getEnv("MAIL_FROM_NAME", "Guest Check-in"),
			AlertEmail:         os.Getenv("ALERT_EMAIL"),
			SESRegion:          getEnv("AWS_SES_REGION", "us-east-1"),
			AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ChallengeTTL, err = getDuration("CHALLENGE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Mail.SESInsecureSkipVerify, err = getBool("AWS_SES_INSECURE_SKIP_VERIFY", false); err != nil {
		return nil, err
	}
	if cfg.FactoryAddress, err = ethsig.ParseAddress(getEnv("FACTORY_ADDRESS", DefaultFactoryAddress)); err != nil {
		return nil, fmt.Errorf("FACTORY_ADDRESS: %w", err)
	}

	if cfg.JWTSecret == "" {
		if env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
		logger.Warn("JWT_SECRET not set, using development secret")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, s)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, s)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
