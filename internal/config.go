package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Merchant      MerchantConfig      `mapstructure:"merchant"`
	Settlement    SettlementConfig    `mapstructure:"settlement"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// MerchantConfig is the payee identity embedded in generated UPI
// instructions. Injected per deployment, never hardwired.
type MerchantConfig struct {
	UPIID    string `mapstructure:"upi_id" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	Currency string `mapstructure:"currency"`
}

// SettlementConfig drives the aging-based settlement oracle and the
// background reconciler that sweeps aged PROCESSING payments.
type SettlementConfig struct {
	AgingThreshold    time.Duration `mapstructure:"aging_threshold"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	ReconcileBatch    int           `mapstructure:"reconcile_batch"`
	ReconcileWorkers  int           `mapstructure:"reconcile_workers"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a Config purely from environment variables, for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_SERVER_PORT", 8080),
			BaseURL:           getEnv("HTTP_SERVER_BASE_URL", "https://aarogyaai.com"),
			AllowedOrigins:    getEnv("HTTP_SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_SERVER_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DATABASE_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          os.Getenv("DATABASE_SOURCE"),
		},
		Merchant: MerchantConfig{
			UPIID:    getEnv("MERCHANT_UPI_ID", "saswatsusmoy@upi"),
			Name:     getEnv("MERCHANT_NAME", "AarogyaAI"),
			Currency: getEnv("MERCHANT_CURRENCY", "INR"),
		},
		Settlement: SettlementConfig{
			AgingThreshold:    getEnvAsDuration("SETTLEMENT_AGING_THRESHOLD", 5*time.Second),
			ReconcileInterval: getEnvAsDuration("SETTLEMENT_RECONCILE_INTERVAL", 30*time.Second),
			ReconcileBatch:    getEnvAsInt("SETTLEMENT_RECONCILE_BATCH", 100),
			ReconcileWorkers:  getEnvAsInt("SETTLEMENT_RECONCILE_WORKERS", 4),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOGGING_LEVEL", "info"),
				Format: getEnv("LOGGING_FORMAT", "json"),
			},
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Merchant.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("merchant config: %v", err))
	}

	if err := c.Settlement.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("settlement config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

// IsConfigured reports whether a durable store was provided at all. An
// unconfigured store is surfaced as an explicit error, never as silently
// empty results.
func (c *DatabaseConfig) IsConfigured() bool {
	return strings.TrimSpace(c.Source) != ""
}

func (c *MerchantConfig) Validate() error {
	if c.UPIID == "" {
		return errors.New("upi_id is required")
	}
	if !strings.Contains(c.UPIID, "@") {
		return fmt.Errorf("upi_id %q is not a valid virtual payment address", c.UPIID)
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Currency != "" && c.Currency != "INR" {
		return fmt.Errorf("unsupported currency %q: only INR is supported", c.Currency)
	}
	return nil
}

func (c *SettlementConfig) Validate() error {
	if c.AgingThreshold <= 0 {
		return errors.New("aging_threshold must be positive")
	}
	if c.ReconcileInterval < 0 {
		return errors.New("reconcile_interval cannot be negative")
	}
	return nil
}
