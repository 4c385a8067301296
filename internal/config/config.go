package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Meta     MetaConfig     `yaml:"meta"`
	Sync     SyncConfig     `yaml:"sync"`
	Stores   StoresConfig   `yaml:"stores"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	DevUser  DevUserConfig  `yaml:"dev_user"`
	LogLevel string         `yaml:"log_level"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL          string `yaml:"url"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	SSLMode      string `yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// DSN prefers an explicit connection URL (DATABASE_URL style) over the discrete fields.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type ShopifyConfig struct {
	APIVersion    string        `yaml:"api_version"`
	Domain        string        `yaml:"domain"`
	AccessToken   string        `yaml:"access_token"`
	WebhookSecret string        `yaml:"webhook_secret"`
	Timeout       time.Duration `yaml:"timeout"`
}

type MetaConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIVersion  string        `yaml:"api_version"`
	AccessToken string        `yaml:"access_token"`
	AdAccountID string        `yaml:"ad_account_id"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SyncConfig struct {
	PageSize int `yaml:"page_size"`
	MaxPages int `yaml:"max_pages"`
}

type StoresConfig struct {
	Active string        `yaml:"active"`
	Known  []StoreConfig `yaml:"known"`
}

// StoreConfig is one named tenant. Credential fields are usually ${VAR}
// references and may be empty; emptiness is reported when the store is resolved.
type StoreConfig struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	ShopifyDomain   string `yaml:"shopify_domain"`
	ShopifyToken    string `yaml:"shopify_token"`
	MetaAdAccountID string `yaml:"meta_ad_account_id"`
	MetaAccessToken string `yaml:"meta_access_token"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// Enabled reports whether the change feed should be started.
func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

type DevUserConfig struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references against the process environment and decodes the YAML.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 2 * time.Minute
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Shopify.APIVersion == "" {
		c.Shopify.APIVersion = "2025-01"
	}
	if c.Shopify.Timeout == 0 {
		c.Shopify.Timeout = 30 * time.Second
	}
	if c.Meta.BaseURL == "" {
		c.Meta.BaseURL = "https://graph.facebook.com"
	}
	if c.Meta.APIVersion == "" {
		c.Meta.APIVersion = "v19.0"
	}
	if c.Meta.Timeout == 0 {
		c.Meta.Timeout = 30 * time.Second
	}
	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = 250
	}
	if c.Sync.MaxPages == 0 {
		c.Sync.MaxPages = 10
	}
	if c.Stores.Active == "" {
		c.Stores.Active = "slimnfit"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "mers"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "records"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "mers_record_changes"
	}
	if c.DevUser.Email == "" {
		c.DevUser.Email = "dev@mers.app"
	}
	if c.DevUser.Name == "" {
		c.DevUser.Name = "Dev User"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
