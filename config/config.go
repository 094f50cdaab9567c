package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Annany2002/nebula-admin/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Config holds application configuration values
type Config struct {
	ServerPort      string
	JWTSecret       string
	JWTExpiration   time.Duration
	DbDir           string
	DbFile          string
	AdminPrefix     string
	AdminTitle      string
	DefaultLanguage string
	AllowCORS       bool
	CORSOrigins     []string
	LoginRateLimit  int

	// Optional bootstrap admin account, created on startup when both are set.
	SeedAdminUsername string
	SeedAdminPassword string
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("SERVER_PORT", "8080")
	jwtSecret := os.Getenv("JWT_SECRET")
	jwtExpHoursStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	rateLimitStr := getEnv("LOGIN_RATE_LIMIT", "5")

	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}
	if jwtSecret == "!!replace_this_with_a_real_secret_key!!" {
		customLog.Warnln("WARNING: JWT_SECRET is set to the default placeholder!")
	}

	jwtExpHours, err := strconv.Atoi(jwtExpHoursStr)
	if err != nil || jwtExpHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS '%s'. Using default 24h. Error: %v", jwtExpHoursStr, err)
		jwtExpHours = 24
	}

	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil || rateLimit <= 0 {
		customLog.Warnf("Invalid LOGIN_RATE_LIMIT '%s'. Using default 5. Error: %v", rateLimitStr, err)
		rateLimit = 5
	}

	cfg := &Config{
		ServerPort:        strings.TrimPrefix(port, ":"),
		JWTSecret:         jwtSecret,
		JWTExpiration:     time.Hour * time.Duration(jwtExpHours),
		DbDir:             getEnv("DB_DIR", "data"),
		DbFile:            getEnv("DB_FILE", "admin.db"),
		AdminPrefix:       getEnv("ADMIN_PREFIX", "/admin/api"),
		AdminTitle:        getEnv("ADMIN_TITLE", "Admin"),
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "en"),
		AllowCORS:         parseBool(getEnv("ALLOW_CORS", "false")),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		LoginRateLimit:    rateLimit,
		SeedAdminUsername: os.Getenv("SEED_ADMIN_USERNAME"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Prefix: %s, JWT Exp: %v", cfg.ServerPort, cfg.AdminPrefix, cfg.JWTExpiration)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
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
