package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Sheets      SheetsConfig      `yaml:"sheets"`
	Sync        SyncConfig        `yaml:"sync"`
	Files       FilesConfig       `yaml:"files"`
	LogLevel    string            `yaml:"log_level"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MarketplaceConfig holds Mercado Livre API and OAuth application settings.
type MarketplaceConfig struct {
	AppID       string        `yaml:"app_id"`
	SecretKey   string        `yaml:"secret_key"`
	RedirectURI string        `yaml:"redirect_uri"`
	APIBaseURL  string        `yaml:"api_base_url"`
	AuthBaseURL string        `yaml:"auth_base_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SheetsConfig holds Google Sheets values-API access settings for the stock ledger.
type SheetsConfig struct {
	BaseURL       string        `yaml:"base_url"`
	SpreadsheetID string        `yaml:"spreadsheet_id"`
	SheetName     string        `yaml:"sheet_name"`
	AccessToken   string        `yaml:"access_token"`
	Timeout       time.Duration `yaml:"timeout"`
}

type SyncConfig struct {
	Interval    time.Duration `yaml:"interval"`
	PacingDelay time.Duration `yaml:"pacing_delay"`
}

// FilesConfig holds paths of the locally persisted credential and watermark.
type FilesConfig struct {
	TokenFile   string `yaml:"token_file"`
	LastRunFile string `yaml:"last_run_file"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "hub_vendas"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "stock_events"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "hub_stock_events"
	}
	if c.Marketplace.APIBaseURL == "" {
		c.Marketplace.APIBaseURL = "https://api.mercadolibre.com"
	}
	if c.Marketplace.AuthBaseURL == "" {
		c.Marketplace.AuthBaseURL = "https://auth.mercadolibre.com.br"
	}
	if c.Marketplace.RedirectURI == "" {
		c.Marketplace.RedirectURI = "https://www.google.com"
	}
	if c.Marketplace.Timeout == 0 {
		c.Marketplace.Timeout = 30 * time.Second
	}
	if c.Sheets.BaseURL == "" {
		c.Sheets.BaseURL = "https://sheets.googleapis.com/v4"
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = "Estoque"
	}
	if c.Sheets.Timeout == 0 {
		c.Sheets.Timeout = 30 * time.Second
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 30 * time.Minute
	}
	if c.Sync.PacingDelay == 0 {
		c.Sync.PacingDelay = 500 * time.Millisecond
	}
	if c.Files.TokenFile == "" {
		c.Files.TokenFile = "data/tokens.json"
	}
	if c.Files.LastRunFile == "" {
		c.Files.LastRunFile = "data/last_run.json"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
