package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/upsimu/internal/logger"
)

type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	ScenarioDir          string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	AttemptTTLMinutes    int
	MaxTurns             int
	FollowUpDelayMS      int
	OffTopicDelayMS      int
	ArchiveWorkerCount   int
	ArchiveQueueSize     int
	SweepIntervalSeconds int
	BonusWeight          float64
	CORSOrigins          []string
	PhraseSeed           int64
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:upsimu.db"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		ScenarioDir:          envOr("SCENARIO_DIR", ""),
		RedisAddr:            envOr("REDIS_ADDR", ""),
		RedisPassword:        envOr("REDIS_PASSWORD", ""),
		RedisDB:              envIntOr("REDIS_DB", 0),
		AttemptTTLMinutes:    envIntOr("ATTEMPT_TTL_MINUTES", 60),
		MaxTurns:             envIntOr("MAX_TURNS", 6),
		FollowUpDelayMS:      envIntOr("FOLLOW_UP_DELAY_MS", 1500),
		OffTopicDelayMS:      envIntOr("OFF_TOPIC_DELAY_MS", 2500),
		ArchiveWorkerCount:   envIntOr("ARCHIVE_WORKER_COUNT", 1),
		ArchiveQueueSize:     envIntOr("ARCHIVE_QUEUE_SIZE", 64),
		SweepIntervalSeconds: envIntOr("SWEEP_INTERVAL_SECONDS", 60),
		BonusWeight:          envFloatOr("BONUS_WEIGHT", 0.5),
		CORSOrigins:          envListOr("CORS_ORIGINS", []string{"*"}),
		PhraseSeed:           int64(envIntOr("PHRASE_SEED", 0)),
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if !logger.ValidLevel(c.LogLevel) {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q must be one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.ScenarioDir != "" {
		if info, err := os.Stat(c.ScenarioDir); err != nil || !info.IsDir() {
			problems = append(problems, fmt.Sprintf("SCENARIO_DIR %q is not a directory", c.ScenarioDir))
		}
	}
	if c.RedisDB < 0 {
		problems = append(problems, "REDIS_DB cannot be negative")
	}
	if c.AttemptTTLMinutes <= 0 {
		problems = append(problems, "ATTEMPT_TTL_MINUTES must be positive")
	}
	if c.MaxTurns < 2 || c.MaxTurns > 20 {
		problems = append(problems, "MAX_TURNS must be between 2 and 20")
	}
	if c.FollowUpDelayMS < 0 {
		problems = append(problems, "FOLLOW_UP_DELAY_MS cannot be negative")
	}
	if c.OffTopicDelayMS < 0 {
		problems = append(problems, "OFF_TOPIC_DELAY_MS cannot be negative")
	}
	if c.ArchiveWorkerCount <= 0 {
		problems = append(problems, "ARCHIVE_WORKER_COUNT must be positive")
	}
	if c.ArchiveQueueSize <= 0 {
		problems = append(problems, "ARCHIVE_QUEUE_SIZE must be positive")
	}
	if c.SweepIntervalSeconds <= 0 {
		problems = append(problems, "SWEEP_INTERVAL_SECONDS must be positive")
	}
	if c.BonusWeight < 0 || c.BonusWeight > 1 {
		problems = append(problems, "BONUS_WEIGHT must be between 0 and 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AttemptTTL is how long an untouched attempt survives before it is discarded.
func (c Config) AttemptTTL() time.Duration {
	return time.Duration(c.AttemptTTLMinutes) * time.Minute
}

func (c Config) FollowUpDelay() time.Duration {
	return time.Duration(c.FollowUpDelayMS) * time.Millisecond
}

func (c Config) OffTopicDelay() time.Duration {
	return time.Duration(c.OffTopicDelayMS) * time.Millisecond
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
