package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration. It is loaded once
// and handed to each service explicitly; there is no process-wide mutable
// configuration state.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Loans   LoansConfig   `yaml:"loans"`
	Auth    AuthConfig    `yaml:"auth"`
	QR      QRConfig      `yaml:"qr"`
	Export  ExportConfig  `yaml:"export"`
	Refresh RefreshConfig `yaml:"refresh"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// StorageConfig holds the location of the table files.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// LoansConfig holds the loan business rules.
type LoansConfig struct {
	MaxPerSupervisor int    `yaml:"max_per_supervisor"`
	AlertDays        int    `yaml:"alert_days"`
	ReturnLocation   string `yaml:"return_location"`
}

// AuthConfig holds the session signing key and the bootstrap admin account.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTLMinutes int           `yaml:"token_ttl_minutes"`
	TokenTTL        time.Duration `yaml:"-"`
	AdminUsername   string        `yaml:"admin_username"`
	AdminPassword   string        `yaml:"admin_password"`
}

// QRConfig holds the QR image output settings and worker pool size.
type QRConfig struct {
	OutputDir  string `yaml:"output_dir"`
	Size       int    `yaml:"size"`
	WorkerPool int    `yaml:"worker_pool"`
}

// ExportConfig holds the spreadsheet export output directory.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// RefreshConfig holds the dashboard snapshot refresher settings.
type RefreshConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path and applies defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for tests and
// for running without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Loans.MaxPerSupervisor <= 0 {
		cfg.Loans.MaxPerSupervisor = 10
	}
	if cfg.Loans.AlertDays <= 0 {
		cfg.Loans.AlertDays = 30
	}
	if cfg.Loans.ReturnLocation == "" {
		cfg.Loans.ReturnLocation = "Warehouse"
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 30
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	if cfg.Auth.AdminUsername == "" {
		cfg.Auth.AdminUsername = "admin"
	}
	if cfg.QR.OutputDir == "" {
		cfg.QR.OutputDir = "./qr_codes"
	}
	if cfg.QR.Size <= 0 {
		cfg.QR.Size = 256
	}
	if cfg.QR.WorkerPool <= 0 {
		cfg.QR.WorkerPool = 1
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = "./reports"
	}
	if cfg.Refresh.IntervalSeconds <= 0 {
		cfg.Refresh.IntervalSeconds = 10
	}
	cfg.Refresh.Interval = time.Duration(cfg.Refresh.IntervalSeconds) * time.Second
}
