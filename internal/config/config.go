/*
Package config reads server settings from flags, falling back to the
environment. Load also reads a .env file when one exists.

Flags take precedence over environment variables:

	-port              PORT                 (default 8080)
	-database-url      DATABASE_URL, or POSTGRES_HOST/PORT/USER/PASSWORD/DB
	-jwt-secret        JWT_SECRET           (required)
	-google-client-id  GOOGLE_CLIENT_ID
	-domain            ALLOWED_EMAIL_DOMAIN (required)
	-admins            ADMIN_EMAILS         (comma separated)
	-redirect-url      REDIRECT_URL         (default "/")
	-cookie-domain     COOKIE_DOMAIN
	-cookie-samesite   COOKIE_SAMESITE      (lax, strict or none)
	-origins           ALLOWED_ORIGINS      (comma separated)
	-kafka-brokers     KAFKA_BROKERS        (comma separated; empty disables events)
	-kafka-topic       KAFKA_TOPIC          (default "potw.events")
	-db-retries        DB_RETRY_ATTEMPTS    (default 3)
	-db-cooldown       DB_BREAKER_COOLDOWN  (default 10s)
	-log-level         LOG_LEVEL            (debug, info, warn, error)
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               int
	DatabaseURL        string
	JWTSecret          string
	GoogleClientID     string
	AllowedEmailDomain string
	AdminEmails        []string
	RedirectURL        string
	CookieDomain       string
	CookieSameSite     http.SameSite
	AllowedOrigins     []string
	KafkaBrokers       []string
	KafkaTopic         string
	DBRetryAttempts    uint64
	DBBreakerCooldown  time.Duration
	LogLevel           slog.Level
}

// Load reads .env, if present, and then parses args.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(args)
}

func Parse(args []string) (Config, error) {
	var (
		cfg                                        Config
		admins, origins, brokers, sameSite, level string
		retries                                    int
		cooldown                                   time.Duration
	)

	fs := flag.NewFlagSet("potw", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection string")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Access token signing secret (prefer env)")
	fs.StringVar(&cfg.GoogleClientID, "google-client-id", "", "Google OAuth client id")
	fs.StringVar(&cfg.AllowedEmailDomain, "domain", "", "Email domain allowed to sign in")
	fs.StringVar(&admins, "admins", "", "Comma separated admin emails")
	fs.StringVar(&cfg.RedirectURL, "redirect-url", "", "Where to send the browser after sign-in")
	fs.StringVar(&cfg.CookieDomain, "cookie-domain", "", "Domain attribute of session cookies")
	fs.StringVar(&sameSite, "cookie-samesite", "", "SameSite attribute of session cookies")
	fs.StringVar(&origins, "origins", "", "Comma separated CORS origins")
	fs.StringVar(&brokers, "kafka-brokers", "", "Comma separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for domain events")
	fs.IntVar(&retries, "db-retries", -1, "Retries for transient database errors")
	fs.DurationVar(&cooldown, "db-cooldown", 0, "Fail-fast window after retries are exhausted")
	fs.StringVar(&level, "log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080
		}
	}

	cfg.DatabaseURL = orEnv(cfg.DatabaseURL, "DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURLFromEnv()
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -database-url, DATABASE_URL or POSTGRES_* env)")
	}

	cfg.JWTSecret = orEnv(cfg.JWTSecret, "JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	cfg.AllowedEmailDomain = orEnv(cfg.AllowedEmailDomain, "ALLOWED_EMAIL_DOMAIN")
	if cfg.AllowedEmailDomain == "" {
		return Config{}, errors.New("ALLOWED_EMAIL_DOMAIN required")
	}

	cfg.GoogleClientID = orEnv(cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	cfg.AdminEmails = splitList(orEnv(admins, "ADMIN_EMAILS"))
	cfg.RedirectURL = orDefault(orEnv(cfg.RedirectURL, "REDIRECT_URL"), "/")
	cfg.CookieDomain = orEnv(cfg.CookieDomain, "COOKIE_DOMAIN")
	cfg.AllowedOrigins = splitList(orEnv(origins, "ALLOWED_ORIGINS"))
	cfg.KafkaBrokers = splitList(orEnv(brokers, "KAFKA_BROKERS"))
	cfg.KafkaTopic = orDefault(orEnv(cfg.KafkaTopic, "KAFKA_TOPIC"), "potw.events")

	var err error
	if cfg.CookieSameSite, err = parseSameSite(orEnv(sameSite, "COOKIE_SAMESITE")); err != nil {
		return Config{}, err
	}

	if retries < 0 {
		retries = 3
		if s := os.Getenv("DB_RETRY_ATTEMPTS"); s != "" {
			if retries, err = strconv.Atoi(s); err != nil || retries < 0 {
				return Config{}, errors.New("invalid DB_RETRY_ATTEMPTS env variable")
			}
		}
	}
	cfg.DBRetryAttempts = uint64(retries)

	if cooldown == 0 {
		cooldown = 10 * time.Second
		if s := os.Getenv("DB_BREAKER_COOLDOWN"); s != "" {
			if cooldown, err = time.ParseDuration(s); err != nil || cooldown <= 0 {
				return Config{}, errors.New("invalid DB_BREAKER_COOLDOWN env variable")
			}
		}
	}
	cfg.DBBreakerCooldown = cooldown

	if level = orEnv(level, "LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Config{}, fmt.Errorf("invalid log level %q", level)
		}
	}

	return cfg, nil
}

func orEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
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

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("invalid COOKIE_SAMESITE %q", s)
	}
}

// postgresURLFromEnv builds a connection string from the POSTGRES_* variables.
func postgresURLFromEnv() string {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	port := orDefault(os.Getenv("POSTGRES_PORT"), "5432")
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     host + ":" + port,
		Path:     "/" + os.Getenv("POSTGRES_DB"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
