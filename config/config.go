package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // NOTE_TIME_ZONE must resolve in minimal containers

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported values for STORE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config holds all application configuration
type Config struct {
	GoEnv string `envconfig:"GO_ENV" default:"development"`
	Port  string `envconfig:"PORT" default:"8080"`

	StoreDriver   string        `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	MongoURI      string        `envconfig:"MONGO_URI"`
	MongoDatabase string        `envconfig:"MONGO_DATABASE" default:"an_furnish"`
	StoreTimeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	RedisURL          string        `envconfig:"REDIS_URL"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitOrders   int           `envconfig:"RATE_LIMIT_ORDERS" default:"10"`
	RateLimitTracking int           `envconfig:"RATE_LIMIT_TRACKING" default:"60"`
	RateLimitLogin    int           `envconfig:"RATE_LIMIT_LOGIN" default:"5"`

	OrderCodeMaxAttempts int    `envconfig:"ORDER_CODE_MAX_ATTEMPTS" default:"5"`
	OrderNoteMaxRetries  int    `envconfig:"ORDER_NOTE_MAX_RETRIES" default:"10"`
	NoteTimeZone         string `envconfig:"NOTE_TIME_ZONE" default:"UTC"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"an-furnish"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	Auth0Domain   string `envconfig:"AUTH0_DOMAIN"`
	Auth0Audience string `envconfig:"AUTH0_AUDIENCE"`
	// Auth0AdminScope, when set, must be granted to tokens calling admin routes
	Auth0AdminScope string `envconfig:"AUTH0_ADMIN_SCOPE"`

	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSS3Bucket        string `envconfig:"AWS_S3_BUCKET"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV.
// envFile names the file that was read, empty when only the process
// environment was used.
func Load() (cfg *Config, envFile string, err error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile = fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		envFile = ".env"
		if err := godotenv.Load(envFile); err != nil {
			// Deployed environments set variables directly
			envFile = ""
		}
	}

	cfg, err = FromEnv()
	return cfg, envFile, err
}

// FromEnv parses and validates the current process environment without touching .env files
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", c.StoreDriver)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.UsesAuth0() {
		if c.Auth0Audience == "" {
			return fmt.Errorf("AUTH0_AUDIENCE is required when AUTH0_DOMAIN is set")
		}
	} else if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH0_DOMAIN is not set")
	}

	if c.OrderCodeMaxAttempts < 1 {
		return fmt.Errorf("ORDER_CODE_MAX_ATTEMPTS must be at least 1")
	}
	if c.OrderNoteMaxRetries < 1 {
		return fmt.Errorf("ORDER_NOTE_MAX_RETRIES must be at least 1")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if _, err := c.NoteLocation(); err != nil {
		return err
	}
	return nil
}

// NoteLocation resolves NOTE_TIME_ZONE
func (c *Config) NoteLocation() (*time.Location, error) {
	name := c.NoteTimeZone
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTE_TIME_ZONE %q: %w", c.NoteTimeZone, err)
	}
	return loc, nil
}

// UsesAuth0 reports whether bearer tokens are validated against an Auth0 tenant
func (c *Config) UsesAuth0() bool {
	return c.Auth0Domain != ""
}

// S3Enabled reports whether attachment uploads can be served
func (c *Config) S3Enabled() bool {
	return c.AWSS3Bucket != ""
}

// RateLimitEnabled reports whether a redis instance backs the public rate limits
func (c *Config) RateLimitEnabled() bool {
	return c.RedisURL != ""
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the process-wide configuration set by SetConfig
func GetConfig() *Config {
	return appConfig
}

// SetConfig installs the process-wide configuration
func SetConfig(cfg *Config) {
	appConfig = cfg
}
