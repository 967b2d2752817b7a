package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"carbon-scribe/farm-emissions/internal/defaults"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Calculation CalculationConfig `json:"calculation"`
	Defaults    DefaultsConfig    `json:"defaults"`
	Worker      WorkerConfig      `json:"worker"`
	Logging     LoggingConfig     `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// CalculationConfig controls the emissions service
type CalculationConfig struct {
	CountryVersion          defaults.CountryVersion `json:"country_version"`
	MaxConcurrentFarms      int                     `json:"max_concurrent_farms"`
	MaxConcurrentComponents int                     `json:"max_concurrent_components"`
	CropEconomicDataApplied bool                    `json:"crop_economic_data_applied"`
}

// DefaultsConfig locates an optional default-table override file
type DefaultsConfig struct {
	TablesPath string `json:"tables_path"`
}

// WorkerConfig controls the scheduled recalculation worker
type WorkerConfig struct {
	Schedule  string `json:"schedule"`
	BatchSize int    `json:"batch_size"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
	Mode  string `json:"mode"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "farm_emissions",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    30 * time.Minute,
		},
		Calculation: CalculationConfig{
			CountryVersion:          defaults.Canada,
			MaxConcurrentFarms:      4,
			MaxConcurrentComponents: 8,
		},
		Worker: WorkerConfig{
			Schedule:  "*/5 * * * *",
			BatchSize: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
			Mode:  "development",
		},
	}
}

// LoadConfig loads configuration from file, a .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// Load from file if exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// .env is optional; variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if err := intFromEnv("SERVER_PORT", &config.Server.Port); err != nil {
		return err
	}

	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if err := intFromEnv("DATABASE_PORT", &config.Database.Port); err != nil {
		return err
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		config.Database.SSLMode = sslMode
	}

	if version := os.Getenv("CALCULATION_COUNTRY_VERSION"); version != "" {
		config.Calculation.CountryVersion = defaults.CountryVersion(version)
	}
	if err := intFromEnv("CALCULATION_MAX_CONCURRENT_FARMS", &config.Calculation.MaxConcurrentFarms); err != nil {
		return err
	}
	if err := intFromEnv("CALCULATION_MAX_CONCURRENT_COMPONENTS", &config.Calculation.MaxConcurrentComponents); err != nil {
		return err
	}
	if applied := os.Getenv("CALCULATION_CROP_ECONOMIC_DATA_APPLIED"); applied != "" {
		b, err := strconv.ParseBool(applied)
		if err != nil {
			return fmt.Errorf("invalid CALCULATION_CROP_ECONOMIC_DATA_APPLIED: %w", err)
		}
		config.Calculation.CropEconomicDataApplied = b
	}

	if path := os.Getenv("DEFAULTS_TABLES_PATH"); path != "" {
		config.Defaults.TablesPath = path
	}
	if schedule := os.Getenv("WORKER_SCHEDULE"); schedule != "" {
		config.Worker.Schedule = schedule
	}
	if err := intFromEnv("WORKER_BATCH_SIZE", &config.Worker.BatchSize); err != nil {
		return err
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if mode := os.Getenv("LOG_MODE"); mode != "" {
		config.Logging.Mode = mode
	}
	return nil
}

func intFromEnv(key string, dst *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	switch c.Calculation.CountryVersion {
	case defaults.Canada, defaults.Ireland:
	default:
		return fmt.Errorf("unsupported country version %q", c.Calculation.CountryVersion)
	}
	if c.Calculation.MaxConcurrentFarms < 1 {
		return errors.New("calculation.max_concurrent_farms must be at least 1")
	}
	if c.Calculation.MaxConcurrentComponents < 1 {
		return errors.New("calculation.max_concurrent_components must be at least 1")
	}
	if c.Worker.BatchSize < 1 {
		return errors.New("worker.batch_size must be at least 1")
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
