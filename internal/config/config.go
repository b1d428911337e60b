package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Google    GoogleConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Host           string        `envconfig:"APP_HOST" default:"0.0.0.0:8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	PublicURL      string        `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

type StoreConfig struct {
	Driver        string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	MongoURI      string `envconfig:"MONGODB_URI"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"itinventory"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`
}

type JWTConfig struct {
	Secret           string        `envconfig:"JWT_SECRET" required:"true"`
	TTL              time.Duration `envconfig:"JWT_TTL" default:"12h"`
	PasswordResetTTL time.Duration `envconfig:"PASSWORD_RESET_TTL" default:"30m"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

type GoogleConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL"`
}

func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type RateLimitConfig struct {
	Attempts int           `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	Window   time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"5m"`
}

// Load reads .env when present and then the process environment. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.RateLimit.Attempts <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	return nil
}
