package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port                 string
	Environment          string
	LogLevel             string
	AllowedOrigins       []string
	FrontendURL          string
	DatabaseDriver       string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	RedisDB              int
	JWTSecret            string
	TableTokenTTL        time.Duration
	TableIdleTimeout     time.Duration
	CleanupInterval      time.Duration
	ResultsCacheTTL      time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")
	environment := GetEnv("ENVIRONMENT", "development")
	logLevel := GetEnv("LOG_LEVEL", "info")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{
		frontendURL,
		"http://localhost:5173", // Local development
	}
	if extras := GetEnv("ALLOWED_ORIGINS", ""); extras != "" {
		for _, origin := range strings.Split(extras, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	// Results archive; an empty URL disables it
	dbDriver := GetEnv("DB_DRIVER", "pgx")
	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	if dbURL != "" && dbDriver == "pgx" {
		dbURL = withSimpleProtocol(dbURL)
	}

	AppConfig = &Config{
		Port:                 port,
		Environment:          environment,
		LogLevel:             logLevel,
		AllowedOrigins:       allowedOrigins,
		FrontendURL:          frontendURL,
		DatabaseDriver:       dbDriver,
		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:             GetEnv("REDIS_URL", ""),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		RedisDB:              GetEnvAsInt("REDIS_DB", 0),
		JWTSecret:            GetEnv("JWT_SECRET", "change-this-secret-in-production"),
		TableTokenTTL:        GetEnvAsDuration("TABLE_TOKEN_TTL", 12*time.Hour),
		TableIdleTimeout:     GetEnvAsDuration("TABLE_IDLE_TIMEOUT", time.Hour),
		CleanupInterval:      GetEnvAsDuration("CLEANUP_INTERVAL", 10*time.Minute),
		ResultsCacheTTL:      GetEnvAsDuration("RESULTS_CACHE_TTL", 30*time.Second),
	}

	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Append simple_protocol for PgBouncer compatibility (pgx driver)
func withSimpleProtocol(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	q := u.Query()
	if q.Get("default_query_exec_mode") == "" {
		q.Set("default_query_exec_mode", "simple_protocol")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warnf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration accepts Go duration strings ("90s", "2h") or a bare number of seconds.
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if seconds, convErr := strconv.Atoi(valueStr); convErr == nil {
		value, err = time.Duration(seconds)*time.Second, nil
	}
	if err != nil || value <= 0 {
		log.Warnf("Invalid duration value for %s: %s, using default: %s", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
