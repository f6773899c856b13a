package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/testing-service/internal/events"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	Database DatabaseConfig
	RedisURL string
	Casdoor  CasdoorConfig
	Events   EventsConfig

	EnforceSubmitAccess bool
	DashboardTTL        time.Duration
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type EventsConfig struct {
	Driver        string
	KafkaBrokers  []string
	ConsumerGroup string
}

// fileConfig is the optional YAML overlay. Empty values leave the
// environment setting in place.
type fileConfig struct {
	Server struct {
		Port        string `yaml:"port"`
		Environment string `yaml:"environment"`
		LogLevel    string `yaml:"log_level"`
	} `yaml:"server"`
	Postgres struct {
		URL          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"postgres"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Casdoor struct {
		Endpoint     string `yaml:"endpoint"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		Cert         string `yaml:"cert"`
		Organization string `yaml:"organization"`
		Application  string `yaml:"application"`
	} `yaml:"casdoor"`
	Events struct {
		Driver        string   `yaml:"driver"`
		KafkaBrokers  []string `yaml:"kafka_brokers"`
		ConsumerGroup string   `yaml:"consumer_group"`
	} `yaml:"events"`
	Attempt struct {
		EnforceSubmitAccess *bool `yaml:"enforce_submit_access"`
	} `yaml:"attempt"`
	Cache struct {
		DashboardTTL string `yaml:"dashboard_ttl"`
	} `yaml:"cache"`
}

// LoadConfig reads .env (if present), then the environment, then the YAML
// file named by CONFIG_PATH (if set)
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_PATH"))
}

// Load is LoadConfig with an explicit overlay path; an empty path skips
// the overlay
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         getEnv("DB_NAME", "testing_service"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		RedisURL: os.Getenv("REDIS_URL"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
		Events: EventsConfig{
			Driver:        getEnv("EVENTS_DRIVER", events.DriverGoChannel),
			KafkaBrokers:  splitList(os.Getenv("EVENTS_KAFKA_BROKERS")),
			ConsumerGroup: getEnv("EVENTS_CONSUMER_GROUP", "testing-service"),
		},
		EnforceSubmitAccess: getEnvBool("ATTEMPT_ENFORCE_SUBMIT_ACCESS", true),
		DashboardTTL:        TTLDuration(os.Getenv("CACHE_DASHBOARD_TTL"), time.Minute),
	}

	if path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ApplyFile overlays the YAML file at path onto cfg
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Port, file.Server.Port)
	setString(&c.Environment, file.Server.Environment)
	if file.Server.LogLevel != "" {
		c.LogLevel = parseLogLevel(file.Server.LogLevel)
	}

	setString(&c.Database.URL, file.Postgres.URL)
	if file.Postgres.MaxOpenConns > 0 {
		c.Database.MaxOpenConns = file.Postgres.MaxOpenConns
	}
	if file.Postgres.MaxIdleConns > 0 {
		c.Database.MaxIdleConns = file.Postgres.MaxIdleConns
	}

	setString(&c.RedisURL, file.Redis.URL)

	setString(&c.Casdoor.Endpoint, file.Casdoor.Endpoint)
	setString(&c.Casdoor.ClientID, file.Casdoor.ClientID)
	setString(&c.Casdoor.ClientSecret, file.Casdoor.ClientSecret)
	setString(&c.Casdoor.Cert, file.Casdoor.Cert)
	setString(&c.Casdoor.Organization, file.Casdoor.Organization)
	setString(&c.Casdoor.Application, file.Casdoor.Application)

	setString(&c.Events.Driver, file.Events.Driver)
	setString(&c.Events.ConsumerGroup, file.Events.ConsumerGroup)
	if len(file.Events.KafkaBrokers) > 0 {
		c.Events.KafkaBrokers = file.Events.KafkaBrokers
	}

	if file.Attempt.EnforceSubmitAccess != nil {
		c.EnforceSubmitAccess = *file.Attempt.EnforceSubmitAccess
	}
	c.DashboardTTL = TTLDuration(file.Cache.DashboardTTL, c.DashboardTTL)

	return nil
}

// DatabaseDSN returns DATABASE_URL when set, otherwise a DSN built from the
// individual fields
func (c *Config) DatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	d := c.Database
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// EventBus converts the settings into the events package configuration
func (c *Config) EventBus() events.Config {
	return events.Config{
		Driver:        c.Events.Driver,
		KafkaBrokers:  c.Events.KafkaBrokers,
		ConsumerGroup: c.Events.ConsumerGroup,
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseLogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}
