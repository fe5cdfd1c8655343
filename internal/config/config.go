package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	AWS       AWSConfig       `yaml:"aws"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	APNs      APNsConfig      `yaml:"apns"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres or memory
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds the S3 asset store configuration
type AWSConfig struct {
	Region        string `yaml:"region"`
	S3Bucket      string `yaml:"s3_bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Endpoint      string `yaml:"endpoint"` // S3-compatible storage, path-style addressing
	PublicBaseURL string `yaml:"public_base_url"`
}

// RedisConfig holds the statistics cache configuration. An empty address disables the cache.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// SchedulerConfig holds alarm firing configuration
type SchedulerConfig struct {
	Enabled       bool `yaml:"enabled"`
	SnoozeMinutes int  `yaml:"snooze_minutes"`
}

// APNsConfig holds Apple push configuration. An empty key path disables push.
type APNsConfig struct {
	KeyPath    string `yaml:"key_path"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, then applies .env and ALARM_* overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used for keys missing from the file
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		AWS:       AWSConfig{Region: "us-east-1"},
		Redis:     RedisConfig{TTLSeconds: 300},
		Scheduler: SchedulerConfig{Enabled: true, SnoozeMinutes: 5},
		Log:       LogConfig{Level: "info"},
	}
}

func (c *Config) applyEnv() {
	setString(&c.Database.Driver, "ALARM_DB_DRIVER")
	setString(&c.Database.Host, "ALARM_DB_HOST")
	setInt(&c.Database.Port, "ALARM_DB_PORT")
	setString(&c.Database.User, "ALARM_DB_USER")
	setString(&c.Database.Password, "ALARM_DB_PASSWORD")
	setString(&c.Database.DBName, "ALARM_DB_NAME")
	setString(&c.AWS.AccessKey, "ALARM_AWS_ACCESS_KEY")
	setString(&c.AWS.SecretKey, "ALARM_AWS_SECRET_KEY")
	setString(&c.AWS.S3Bucket, "ALARM_S3_BUCKET")
	setString(&c.AWS.Endpoint, "ALARM_S3_ENDPOINT")
	setString(&c.Redis.Addr, "ALARM_REDIS_ADDR")
	setString(&c.Redis.Password, "ALARM_REDIS_PASSWORD")
	setString(&c.JWT.Secret, "ALARM_JWT_SECRET")
	setInt(&c.Server.Port, "ALARM_PORT")
	setString(&c.Log.Level, "ALARM_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.DBName == "" {
			return errors.New("database.dbname is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Scheduler.SnoozeMinutes <= 0 {
		return errors.New("scheduler.snooze_minutes must be positive")
	}
	if c.APNs.KeyPath != "" && (c.APNs.KeyID == "" || c.APNs.TeamID == "" || c.APNs.Topic == "") {
		return errors.New("apns.key_id, apns.team_id and apns.topic are required with apns.key_path")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
