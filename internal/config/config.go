package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"pensionado/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig          `yaml:"app"`
	Logging      LoggingConfig      `yaml:"logging"`
	Storage      StorageConfig      `yaml:"storage"`
	Redis        RedisConfig        `yaml:"redis"`
	Reservations ReservationsConfig `yaml:"reservations"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Backup       BackupConfig       `yaml:"backup"`
	Users        []models.User      `yaml:"users"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// StorageConfig selects the key-value backend holding the reservation table.
type StorageConfig struct {
	Backend  string      `yaml:"backend"` // memory, file, sqlite, postgres, redis
	Key      string      `yaml:"key"`
	Path     string      `yaml:"path"`
	DSN      string      `yaml:"dsn"`
	Failover bool        `yaml:"failover"`
	Retry    RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type ReservationsConfig struct {
	LeadTimeHours int      `yaml:"lead_time_hours"`
	TableCount    int      `yaml:"table_count"`
	SeedDemo      bool     `yaml:"seed_demo"`
	Slots         []string `yaml:"slots"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	TextfilePath      string `yaml:"textfile_path"`
}

type BackupConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Load reads the YAML file at configPath. A .env file in the working
// directory is applied first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for backend %q", c.Storage.Backend)
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for backend postgres")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.Backend == BackendRedis && c.Redis.Address == "" {
		return errors.New("redis.address is required for backend redis")
	}

	if c.Reservations.LeadTimeHours < 0 {
		return errors.New("reservations.lead_time_hours must not be negative")
	}

	for _, slot := range c.Reservations.Slots {
		if _, err := time.Parse("15:04", slot); err != nil {
			return fmt.Errorf("invalid slot %q: expected HH:MM", slot)
		}
	}

	return ValidateUsers(c.Users)
}

func ValidateUsers(users []models.User) error {
	ids := make(map[string]bool)
	for _, user := range users {
		if strings.TrimSpace(user.ID) == "" {
			return fmt.Errorf("user '%s' has empty ID", user.Name)
		}
		if ids[user.ID] {
			return fmt.Errorf("duplicate user ID found: %s", user.ID)
		}
		ids[user.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "pensionado"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Key == "" {
		c.Storage.Key = models.DefaultStorageKey
	}
	if c.Storage.Backend == BackendFile && c.Storage.Path == "" {
		c.Storage.Path = "data/storage"
	}
	if c.Storage.Retry.InitialDelay == 0 {
		c.Storage.Retry.InitialDelay = 100 * time.Millisecond
	}
	if c.Storage.Retry.MaxDelay == 0 {
		c.Storage.Retry.MaxDelay = 2 * time.Second
	}

	if c.Reservations.LeadTimeHours == 0 {
		c.Reservations.LeadTimeHours = models.SameDayLeadHours
	}
	if c.Reservations.TableCount == 0 {
		c.Reservations.TableCount = models.DefaultTableCount
	}
	if len(c.Reservations.Slots) == 0 {
		c.Reservations.Slots = append([]string(nil), models.TimeSlots...)
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.TextfilePath == "" {
		c.Monitoring.TextfilePath = "data/pensionado.prom"
	}

	if c.Backup.Dir == "" {
		c.Backup.Dir = "data/backups"
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 30
	}
}
