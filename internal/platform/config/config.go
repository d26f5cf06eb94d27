// Package config loads the storefront configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the root configuration of the storefront process.
type Config struct {
	// Port is the HTTP listen port.
	Port string `env:"PORT" envDefault:"3000"`

	// BaseURL is the externally reachable origin used in emailed links.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// PageSize is the number of products per listing page.
	PageSize int `env:"PAGE_SIZE" envDefault:"3"`

	DB        DBConfig      `envPrefix:"DB_"`
	Redis     RedisConfig   `envPrefix:"REDIS_"`
	Session   SessionConfig `envPrefix:"SESSION_"`
	SMTP      SMTPConfig    `envPrefix:"SMTP_"`
	Stripe    StripeConfig  `envPrefix:"STRIPE_"`
	Storage   StorageConfig
	Log       LogConfig       `envPrefix:"LOG_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

// DBConfig describes the relational database connection.
type DBConfig struct {
	Driver         string        `env:"DRIVER" envDefault:"postgres"`
	URL            string        `env:"URL"`
	Host           string        `env:"HOST" envDefault:"localhost"`
	Port           string        `env:"PORT" envDefault:"5432"`
	User           string        `env:"USER"`
	Password       string        `env:"PASSWORD"`
	Name           string        `env:"NAME" envDefault:"storefront"`
	SSLMode        string        `env:"SSLMODE" envDefault:"disable"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"storefront.db"`
	RunMigrations  bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"60s"`
}

// RedisConfig describes the optional Redis instance. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// SessionConfig controls login sessions and the cookies that carry them.
type SessionConfig struct {
	Secret       string        `env:"SECRET,required,notEmpty"`
	TTL          time.Duration `env:"TTL" envDefault:"168h"`
	CookieName   string        `env:"COOKIE_NAME" envDefault:"storefront_session"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	MaxPerUser   int           `env:"MAX_PER_USER" envDefault:"5"`
}

// SMTPConfig holds mail transport credentials. An empty Host logs mail instead of sending it.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"\"Storefront\" <no-reply@storefront.local>"`
	Workers  int    `env:"WORKERS" envDefault:"4"`
}

// StripeConfig holds payment processor settings.
type StripeConfig struct {
	SecretKey string        `env:"SECRET_KEY"`
	Currency  string        `env:"CURRENCY" envDefault:"inr"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// StorageConfig holds filesystem locations for uploads and generated invoices.
type StorageConfig struct {
	ImageDir   string `env:"IMAGE_DIR" envDefault:"images"`
	InvoiceDir string `env:"INVOICE_DIR" envDefault:"data/invoices"`
}

// RateLimitConfig bounds login, signup and reset form posts per client IP.
type RateLimitConfig struct {
	Attempts int           `env:"ATTEMPTS" envDefault:"10"`
	Window   time.Duration `env:"WINDOW" envDefault:"15m"`
}

// LogConfig selects the zap preset and an optional rotated log file.
type LogConfig struct {
	Mode string `env:"MODE" envDefault:"development"`
	File string `env:"FILE"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.RateLimit.Attempts <= 0 {
		return fmt.Errorf("RATE_LIMIT_ATTEMPTS must be positive, got %d", c.RateLimit.Attempts)
	}
	if c.Session.MaxPerUser <= 0 {
		return fmt.Errorf("SESSION_MAX_PER_USER must be positive, got %d", c.Session.MaxPerUser)
	}
	return nil
}
