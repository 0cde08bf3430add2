package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Supported DATABASE_URL schemes.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	APIPort string `env:"PORT" envDefault:"3003"`

	DatabaseURL         string `env:"DATABASE_URL,required,notEmpty"`
	DBName              string `env:"DB_NAME,required,notEmpty"`
	UsersCollectionName string `env:"USERS_COLLECTION_NAME,required,notEmpty"`
	TodosCollectionName string `env:"TODOS_COLLECTION_NAME,required,notEmpty"`

	JWTSecret              string        `env:"JWT_SECRET"`
	AllowInsecureJWTSecret bool          `env:"ALLOW_INSECURE_JWT_SECRET" envDefault:"false"`
	AccessTokenTTL         time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL        time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	TodoCacheTTL  time.Duration `env:"TODO_CACHE_TTL" envDefault:"60s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads an optional .env file, then parses and validates the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if _, err := c.StoreKind(); err != nil {
		return err
	}
	if strings.TrimSpace(c.JWTSecret) == "" && !c.AllowInsecureJWTSecret {
		return errors.New("JWT_SECRET is not set; set ALLOW_INSECURE_JWT_SECRET=true to run with the built-in fallback secret")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// StoreKind derives the backing store from the DATABASE_URL scheme.
func (c *Config) StoreKind() (string, error) {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return StoreMongo, nil
	case "postgres", "postgresql":
		return StorePostgres, nil
	case "memory":
		return StoreMemory, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
