package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Storage drivers selectable via FG_STORAGE_DRIVER
const (
	StorageDriverCookie   = "cookie"
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

var (
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
	ErrMissingPostgresDSN   = errors.New("the postgres storage driver requires a DSN")
	ErrInvalidAPITarget     = errors.New("invalid API proxy target")
	ErrInvalidAPIPrefix     = errors.New("the API proxy prefix must be a path below '/'")
)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"development"`

	Host         string        `default:"localhost"`
	Port         int           `default:"3000"`
	Open         bool          `default:"true"`
	StaticDir    string        `split_words:"true"`
	RoutesFile   string        `split_words:"true"`
	CookieSecure bool          `split_words:"true" default:"false"`
	CookieMaxAge time.Duration `split_words:"true" default:"720h"`

	AllowedOrigins []string `split_words:"true"`

	APIPrefix        string `envconfig:"API_PREFIX" default:"/api"`
	APITarget        string `envconfig:"API_TARGET" default:"http://localhost:5005"`
	APIChangeOrigin  bool   `envconfig:"API_CHANGE_ORIGIN" default:"true"`
	APICapturePrefix string `envconfig:"API_CAPTURE_PREFIX" default:"/api/auth/"`
	APILogoutPath    string `envconfig:"API_LOGOUT_PATH" default:"/api/auth/logout"`

	StorageDriver string        `split_words:"true" default:"cookie"`
	PostgresDSN   string        `envconfig:"POSTGRES_DSN"`
	SweepInterval time.Duration `split_words:"true" default:"1m"`
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("fg", config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values that cannot work
func (config *Config) Validate() error {
	switch config.StorageDriver {
	case StorageDriverCookie, StorageDriverMemory:
	case StorageDriverPostgres:
		if config.PostgresDSN == "" {
			return ErrMissingPostgresDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, config.StorageDriver)
	}

	if !strings.HasPrefix(config.APIPrefix, "/") || strings.Trim(config.APIPrefix, "/") == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAPIPrefix, config.APIPrefix)
	}
	if _, err := config.APITargetURL(); err != nil {
		return err
	}
	return nil
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.EqualFold(config.Environment, "production")
}

// ListenAddress returns the host:port pair the front server listens on
func (config *Config) ListenAddress() string {
	return net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
}

// BaseURL returns the URL the front server is reachable at locally
func (config *Config) BaseURL() string {
	return "http://" + config.ListenAddress()
}

// APITargetURL parses the backend origin the API proxy forwards to
func (config *Config) APITargetURL() (*url.URL, error) {
	target, err := url.Parse(config.APITarget)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAPITarget, err)
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAPITarget, config.APITarget)
	}
	return target, nil
}

// UsesServerSideStorage returns whether client records are kept by a storage driver rather than in cookies
func (config *Config) UsesServerSideStorage() bool {
	return config.StorageDriver != StorageDriverCookie
}
