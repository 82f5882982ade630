package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort              = "8080"
	DefaultSimulatorInterval = 30 * time.Second
	DefaultSeedDaysAhead     = 7
	DefaultTaskQueue         = "flight-pricing-queue"
)

// Config holds runtime settings. Empty connection strings disable the
// corresponding integration.
type Config struct {
	APIPort string

	SimulatorEnabled  bool
	SimulatorInterval time.Duration

	SeedDaysAhead int
	// SeedRandom seeds schedule generation; 0 picks a time-based seed
	SeedRandom int64

	TemporalHost      string
	TemporalTaskQueue string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool

	RabbitMQURL string

	CORSOrigins []string
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		APIPort:           getEnv("API_PORT", DefaultPort),
		SimulatorEnabled:  getEnvBool("SIMULATOR_ENABLED", true, &errs),
		SimulatorInterval: getEnvDuration("SIMULATOR_INTERVAL", DefaultSimulatorInterval, &errs),
		SeedDaysAhead:     getEnvInt("SEED_DAYS_AHEAD", DefaultSeedDaysAhead, &errs),
		SeedRandom:        int64(getEnvInt("SEED_RANDOM", 0, &errs)),
		TemporalHost:      getEnv("TEMPORAL_HOST", ""),
		TemporalTaskQueue: getEnv("TEMPORAL_TASK_QUEUE", DefaultTaskQueue),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisAddr:         redisAddr(),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0, &errs),
		RedisTLS:          getEnvBool("REDIS_TLS", false, &errs),
		RabbitMQURL:       getEnv("RABBITMQ_URL", getEnv("AMQP_URL", "")),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if cfg.SimulatorInterval <= 0 {
		errs = append(errs, fmt.Errorf("SIMULATOR_INTERVAL must be positive, got %s", cfg.SimulatorInterval))
	}
	if cfg.SeedDaysAhead < 1 {
		errs = append(errs, fmt.Errorf("SEED_DAYS_AHEAD must be at least 1, got %d", cfg.SeedDaysAhead))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// redisAddr prefers REDIS_HOST and REDIS_PORT over REDIS_ADDR
func redisAddr() string {
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		return host + ":" + port
	}
	return os.Getenv("REDIS_ADDR")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a boolean: %w", key, err))
		return defaultValue
	}
	return b
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
