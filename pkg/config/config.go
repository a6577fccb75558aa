package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	LogLevel   string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Worker pool size. Deliberately low: profile discovery is
	// detection-sensitive and high concurrency increases block rate.
	Concurrency int
	// Total processing budget per domain (site fetch + discovery).
	DomainBudget time.Duration
	// Single page-load budget inside the browser.
	PageLoadTimeout time.Duration
	// Minimum interval between task dispatches.
	DispatchInterval time.Duration
	// Randomized human-like delay bounds between search queries.
	SearchDelayMin time.Duration
	SearchDelayMax time.Duration
	// How long to wait for an operator to resolve an anti-bot challenge
	// before aborting that platform's discovery.
	AntiBotWindow time.Duration
	// Run search sessions headless. Disabling surfaces the browser window so
	// captchas can be solved manually.
	SearchHeadless bool
	// Directory for rolling per-session CSV exports.
	ExportDir string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:       getEnv("POSTGRES_DB", "contact_finder"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		Concurrency:      getEnvAsInt("CONCURRENCY", 3),
		DomainBudget:     getEnvAsSeconds("DOMAIN_BUDGET_SECONDS", 180),
		PageLoadTimeout:  getEnvAsSeconds("PAGE_LOAD_TIMEOUT_SECONDS", 30),
		DispatchInterval: getEnvAsSeconds("DISPATCH_INTERVAL_SECONDS", 2),
		SearchDelayMin:   getEnvAsSeconds("SEARCH_DELAY_MIN_SECONDS", 3),
		SearchDelayMax:   getEnvAsSeconds("SEARCH_DELAY_MAX_SECONDS", 8),
		AntiBotWindow:    getEnvAsSeconds("ANTIBOT_WINDOW_SECONDS", 120),
		SearchHeadless:   getEnvAsBool("SEARCH_HEADLESS", true),
		ExportDir:        getEnv("EXPORT_DIR", "exports"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}
