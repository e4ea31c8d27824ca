package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	AdminRole string `mapstructure:"admin_role"`
}

// RedisConfig enables the list cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// KafkaConfig enables mutation events when Brokers is set.
type KafkaConfig struct {
	Brokers     string `mapstructure:"brokers"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// BrokerList splits the comma separated broker addresses.
func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var defaults = map[string]any{
	"server.addr":                 ":8080",
	"server.shutdown_timeout":     "15s",
	"server.max_upload_bytes":     10 << 20,
	"database.url":                "",
	"database.max_open_conns":     10,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "30m",
	"database.conn_max_idle_time": "5m",
	"database.slow_threshold":     "500ms",
	"cloudinary.cloud_name":       "",
	"cloudinary.api_key":          "",
	"cloudinary.api_secret":       "",
	"cloudinary.folder":           "admin-dashboard",
	"auth.jwt_secret":             "",
	"auth.issuer":                 "",
	"auth.admin_role":             "admin",
	"redis.addr":                  "",
	"redis.password":              "",
	"redis.db":                    0,
	"redis.ttl":                   "5m",
	"redis.prefix":                "admin:",
	"kafka.brokers":               "",
	"kafka.client_id":             "storefront-admin",
	"kafka.topic_prefix":          "",
	"log.level":                   "info",
	"log.development":             false,
}

// Load reads .env (when present), then the optional YAML file at path, then
// the environment. database.url is read from DATABASE_URL and so on.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the settings serve cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url (DATABASE_URL) is required"))
	}
	if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
		errs = append(errs, errors.New("cloudinary.cloud_name, cloudinary.api_key and cloudinary.api_secret are required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret (AUTH_JWT_SECRET) is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes))
	}
	return errors.Join(errs...)
}
