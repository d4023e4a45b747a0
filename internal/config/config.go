package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DefaultFile is read when CONFIG_FILE is not set. A missing file is not an error.
const DefaultFile = "config/config.env"

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config holds every runtime setting of the marketplace server
type Config struct {
	Port     string `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	Store         string `env:"STORE,default=memory"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE,default=auction_marketplace"`

	JWTSecret        string        `env:"JWT_SECRET"`
	JWTExpire        time.Duration `env:"JWT_EXPIRE,default=168h"`
	CookieExpireDays int           `env:"COOKIE_EXPIRE_DAYS,default=7"`

	CommissionRate string `env:"COMMISSION_RATE,default=0.05"`
	SweepSchedule  string `env:"SWEEP_SCHEDULE,default=@every 1m"`

	CloudinaryURL string `env:"CLOUDINARY_URL"`
	AMQPURL       string `env:"AMQP_URL"`

	BidRatePerSecond float64 `env:"BID_RATE_PER_SECOND,default=5"`
	BidRateBurst     int     `env:"BID_RATE_BURST,default=10"`

	// SuperAdminEmail and SuperAdminPassword seed the only super admin account
	SuperAdminName     string `env:"SUPERADMIN_NAME,default=Super Admin"`
	SuperAdminEmail    string `env:"SUPERADMIN_EMAIL"`
	SuperAdminPassword string `env:"SUPERADMIN_PASSWORD"`
}

// Load reads the optional env file and decodes the environment into a Config
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that defaults cannot make safe
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.Store {
	case StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGO_URI is required when STORE=mongo")
		}
	default:
		return fmt.Errorf("config: unknown STORE %q", c.Store)
	}
	rate, err := c.Commission()
	if err != nil {
		return err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("config: COMMISSION_RATE %s must be between 0 and 1", rate)
	}
	if c.BidRatePerSecond <= 0 || c.BidRateBurst <= 0 {
		return errors.New("config: bid rate limits must be positive")
	}
	if (c.SuperAdminEmail == "") != (c.SuperAdminPassword == "") {
		return errors.New("config: SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set together")
	}
	return nil
}

// Commission parses the configured commission rate
func (c *Config) Commission() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.CommissionRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: COMMISSION_RATE %q: %w", c.CommissionRate, err)
	}
	return rate, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// CookieTTL is how long the session cookie lives
func (c *Config) CookieTTL() time.Duration {
	return time.Duration(c.CookieExpireDays) * 24 * time.Hour
}
