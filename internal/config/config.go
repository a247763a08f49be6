package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultJWTSecret is the signing secret used when JWT_SECRET is unset. It is
// only fit for local development.
const DefaultJWTSecret = "change-me"

var defaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBDriver      string
	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	// DatabaseDSN is used as-is for postgres and sqlite, and overrides the
	// MYSQL_* parts when set for mysql.
	DatabaseDSN string
	ResetDB     bool

	CORSOrigins []string

	JWTSecret            string
	DefaultAdminPassword string

	RedisAddr string
	RedisDB   int
	RedisPass string

	SwaggerHost string

	LogJSON  bool
	LogDebug bool
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first; variables already set in the process
// environment take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8000"),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		MySQLHost:            getEnv("MYSQL_HOST", "localhost"),
		MySQLPort:            getEnv("MYSQL_PORT", "3306"),
		MySQLUser:            getEnv("MYSQL_USER", "root"),
		MySQLPassword:        os.Getenv("MYSQL_PASSWORD"),
		MySQLDatabase:        getEnv("MYSQL_DATABASE", "gate_pass_db"),
		DatabaseDSN:          os.Getenv("DATABASE_DSN"),
		ResetDB:              getEnvBool("RESET_DB", false),
		CORSOrigins:          parseOrigins(os.Getenv("BACKEND_CORS_ORIGINS")),
		JWTSecret:            getEnv("JWT_SECRET", DefaultJWTSecret),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		SwaggerHost:          os.Getenv("SWAGGER_HOST"),
		LogJSON:              getEnvBool("LOG_JSON", false),
		LogDebug:             getEnvBool("LOG_DEBUG", false),
	}
}

// UsesDefaultJWTSecret reports whether tokens are signed with the built-in
// development secret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// parseOrigins splits a comma separated origin list, falling back to the
// local frontend dev server when nothing usable is given.
func parseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return append([]string(nil), defaultCORSOrigins...)
	}
	return origins
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
