package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverFabric   = "fabric"
)

type Config struct {
	App struct {
		Name  string `envconfig:"APP_NAME" default:"titledeed"`
		Port  int    `envconfig:"PORT" default:"8080"`
		Debug bool   `envconfig:"DEBUG" default:"false"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"titledeed"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
		Issuer    string `envconfig:"JWT_ISSUER" default:"titledeed"`
	}

	Store struct {
		Driver  string `envconfig:"STORE_DRIVER" default:"postgres"`
		Migrate bool   `envconfig:"STORE_MIGRATE" default:"true"`
	}

	Ledger struct {
		Driver        string        `envconfig:"LEDGER_DRIVER" default:"fabric"`
		SubmitTimeout time.Duration `envconfig:"LEDGER_SUBMIT_TIMEOUT" default:"30s"`
		CommitRetries uint64        `envconfig:"LEDGER_COMMIT_RETRIES" default:"3"`
		ConfigPath    string        `envconfig:"FABRIC_CONFIG_PATH"`
		Channel       string        `envconfig:"FABRIC_CHANNEL" default:"landregistry"`
		Contract      string        `envconfig:"FABRIC_CONTRACT" default:"titledeed"`
		MSPID         string        `envconfig:"FABRIC_MSP_ID" default:"Org1MSP"`
		CertPath      string        `envconfig:"FABRIC_CERT_PATH"`
		KeyPath       string        `envconfig:"FABRIC_KEY_PATH"`
		WalletPath    string        `envconfig:"FABRIC_WALLET_PATH" default:"wallet"`
		IdentityName  string        `envconfig:"FABRIC_IDENTITY" default:"appUser"`
	}

	Breaker struct {
		MaxRequests         uint32        `envconfig:"BREAKER_MAX_REQUESTS" default:"1"`
		Interval            time.Duration `envconfig:"BREAKER_INTERVAL" default:"60s"`
		Timeout             time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`
		ConsecutiveFailures uint32        `envconfig:"BREAKER_CONSECUTIVE_FAILURES" default:"5"`
	}

	// Redis is optional; without an address submits are de-duplicated
	// in-process only.
	Redis struct {
		Addr       string        `envconfig:"REDIS_ADDR"`
		Password   string        `envconfig:"REDIS_PASSWORD"`
		DB         int           `envconfig:"REDIS_DB" default:"0"`
		LockExpiry time.Duration `envconfig:"REDIS_LOCK_EXPIRY" default:"2m"`
	}

	Reconcile struct {
		Interval    time.Duration `envconfig:"RECONCILE_INTERVAL" default:"30s"`
		Batch       int           `envconfig:"RECONCILE_BATCH" default:"50"`
		MaxAttempts int           `envconfig:"RECONCILE_MAX_ATTEMPTS" default:"10"`
	}

	Telemetry struct {
		Enabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
		Stdout   bool   `envconfig:"OTEL_STDOUT" default:"false"`
		Endpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	}

	// Console identifies the official operating the review console.
	Console struct {
		OfficialID     string `envconfig:"OFFICIAL_ID"`
		OfficialWallet string `envconfig:"OFFICIAL_WALLET"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Ledger.Driver {
	case DriverFabric:
		if c.Ledger.ConfigPath == "" {
			return fmt.Errorf("FABRIC_CONFIG_PATH is required for the fabric ledger")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown ledger driver %q", c.Ledger.Driver)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
