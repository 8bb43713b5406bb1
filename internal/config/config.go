package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chepyr/task-dashboard/internal/models"
	"github.com/chepyr/task-dashboard/internal/storage"
)

// Config spells out every recognised setting; Default holds the value used
// when neither the YAML file nor the environment sets it.
type Config struct {
	Debug   bool    `yaml:"debug"`
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Tasks   Tasks   `yaml:"tasks"`
}

type Server struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
}

type Storage struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	DataDir     string `yaml:"data_dir"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
	TasksKey    string `yaml:"tasks_key"`
	ThemeKey    string `yaml:"theme_key"`
}

type Tasks struct {
	DefaultPriority    models.Priority `yaml:"default_priority"`
	SearchDescriptions bool            `yaml:"search_descriptions"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			RateLimit:  30,
			RateWindow: time.Second,
		},
		Storage: Storage{
			Driver:      storage.DriverFile,
			DataDir:     "data",
			RedisPrefix: "dashboard:",
			TasksKey:    "tasks",
			ThemeKey:    "theme",
		},
		Tasks: Tasks{
			DefaultPriority: models.DefaultPriority,
		},
	}
}

// Load starts from Default, overlays the YAML file at path (if path is not
// empty) and then the environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port must be set"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		errs = append(errs, errors.New("rate window must be positive"))
	}
	if c.Storage.TasksKey == "" || c.Storage.ThemeKey == "" {
		errs = append(errs, errors.New("tasks and theme keys must be set"))
	}
	if c.Storage.TasksKey == c.Storage.ThemeKey {
		errs = append(errs, errors.New("tasks and theme keys must differ"))
	}
	if !c.Tasks.DefaultPriority.Valid() {
		errs = append(errs, fmt.Errorf("invalid default priority %q", c.Tasks.DefaultPriority))
	}

	switch c.Storage.Driver {
	case storage.DriverMemory:
	case storage.DriverFile:
		if c.Storage.DataDir == "" {
			errs = append(errs, errors.New("file storage needs a data dir"))
		}
	case storage.DriverSQLite, storage.DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("%s storage needs a dsn", c.Storage.Driver))
		}
	case storage.DriverRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("redis storage needs a url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:      c.Storage.Driver,
		DSN:         c.Storage.DSN,
		DataDir:     c.Storage.DataDir,
		RedisURL:    c.Storage.RedisURL,
		RedisPrefix: c.Storage.RedisPrefix,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
