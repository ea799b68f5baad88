// internal/config/config.go
//
// Environment-driven configuration.
// main loads .env (godotenv) first, then calls Load. Every value has a
// development default so the server runs with an empty environment.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment.
type Config struct {
	Port         string
	LogLevel     string
	LogPretty    bool
	ClientOrigin string

	JWTSecret string
	TokenTTL  time.Duration

	WordsFile  string // empty: embedded word list
	GridRows   int
	GridCols   int
	TotalWords int
	DailySalt  string

	SessionIdle time.Duration
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    envBool("LOG_PRETTY", false),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:     time.Duration(envInt("TOKEN_TTL_HOURS", 12)) * time.Hour,
		WordsFile:    os.Getenv("WORDS_FILE"),
		GridRows:     envInt("GRID_ROWS", 7),
		GridCols:     envInt("GRID_COLS", 6),
		TotalWords:   envInt("TOTAL_WORDS", 10),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		SessionIdle:  time.Duration(envInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses a positive integer; anything else yields def.
func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
