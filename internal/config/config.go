// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DatabasePath  string
	JWTSecretKey  string
	Environment   string
	AdminPhone    string
	// WSAuthTimeout bounds how long an unauthenticated websocket may sit idle
	// before the server closes it.
	WSAuthTimeout time.Duration
	// WSReadTimeout is the read deadline for authenticated connections,
	// refreshed on every pong.
	WSReadTimeout time.Duration
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "bazarino.db"),
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", ""),
		Environment:   env,
		AdminPhone:    getEnv("ADMIN_PHONE_NUMBER", ""),
		WSAuthTimeout: time.Duration(getEnvAsInt("WS_AUTH_TIMEOUT_SECONDS", 30)) * time.Second,
		WSReadTimeout: time.Duration(getEnvAsInt("WS_READ_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
