package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chepyr/task-dashboard/internal/models"
	"github.com/chepyr/task-dashboard/internal/storage"
)

func (c *Config) applyEnv() error {
	if v, ok := lookup("DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %w", err)
		}
		c.Debug = b
	}

	if v, ok := lookup("SERVER_PORT"); ok {
		c.Server.Port = v
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("RATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = n
	}
	if v, ok := lookup("RATE_WINDOW"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_WINDOW: %w", err)
		}
		c.Server.RateWindow = d
	}

	if v, ok := lookup("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := lookup("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := lookup("DATA_DIR"); ok {
		c.Storage.DataDir = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		c.Storage.RedisURL = v
	}
	if v, ok := lookup("REDIS_PREFIX"); ok {
		c.Storage.RedisPrefix = v
	}
	if v, ok := lookup("TASKS_KEY"); ok {
		c.Storage.TasksKey = v
	}
	if v, ok := lookup("THEME_KEY"); ok {
		c.Storage.ThemeKey = v
	}
	if c.Storage.Driver == storage.DriverPostgres && c.Storage.DSN == "" {
		dsn, err := postgresDSNFromEnv()
		if err != nil {
			return err
		}
		c.Storage.DSN = dsn
	}

	if v, ok := lookup("DEFAULT_PRIORITY"); ok {
		c.Tasks.DefaultPriority = models.Priority(strings.ToLower(v))
	}
	if v, ok := lookup("SEARCH_DESCRIPTIONS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEARCH_DESCRIPTIONS: %w", err)
		}
		c.Tasks.SearchDescriptions = b
	}
	return nil
}

// postgresDSNFromEnv builds a DSN from the POSTGRES_* variables when no
// STORAGE_DSN is given.
func postgresDSNFromEnv() (string, error) {
	requiredEnvVars := []string{
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"POSTGRES_HOST", "POSTGRES_PORT",
	}
	for _, env := range requiredEnvVars {
		if os.Getenv(env) == "" {
			return "", fmt.Errorf("environment variable %s must be set", env)
		}
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"), os.Getenv("POSTGRES_DB"),
		os.Getenv("POSTGRES_PORT")), nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
