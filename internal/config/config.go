package config

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	defaultJWTSecret  = "change-this-in-production"
	defaultSessionKey = "0000000000000000000000000000000000000000000000000000000000000000"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Security SecurityConfig
	Reviews  ReviewConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port               string   `env:"SERVER_PORT,default=8080"`
	Env                string   `env:"SERVER_ENV,default=development"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
}

// IsProduction reports whether the server runs with production settings
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `env:"DB_DRIVER,default=postgres"`
	Host        string `env:"DB_HOST,default=localhost"`
	Port        int    `env:"DB_PORT,default=5432"`
	User        string `env:"DB_USER,default=postgres"`
	Password    string `env:"DB_PASSWORD,default=postgres"`
	DBName      string `env:"DB_NAME,default=review"`
	SSLMode     string `env:"DB_SSLMODE,default=disable"`
	SQLitePath  string `env:"DB_SQLITE_PATH,default=file:review.db?cache=shared"`
	AutoMigrate bool   `env:"AUTO_MIGRATE,default=false"`
}

// URL returns the postgres connection URL
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// IsSQLite reports whether the embedded driver is selected
func (c DatabaseConfig) IsSQLite() bool {
	return c.Driver == "sqlite"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string `env:"REDIS_URL,default=redis://localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
}

// NATSConfig holds the event bus endpoint. An empty URL disables publishing.
type NATSConfig struct {
	URL string `env:"NATS_URL"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string        `env:"JWT_SECRET,default=change-this-in-production"`
	AccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY,default=15m"`
	RefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY,default=168h"`
}

// SecurityConfig holds password and session settings
type SecurityConfig struct {
	// 32-byte hex string
	SessionEncryptionKey string `env:"SESSION_ENCRYPTION_KEY,default=0000000000000000000000000000000000000000000000000000000000000000"`
	// defaults to the refresh token expiry
	SessionTTL time.Duration `env:"SESSION_TTL"`
	BcryptCost int           `env:"BCRYPT_COST,default=12"`
}

// ReviewConfig tunes review writes
type ReviewConfig struct {
	LockTTL time.Duration `env:"REVIEW_LOCK_TTL,default=5s"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}

	if cfg.Security.SessionTTL == 0 {
		cfg.Security.SessionTTL = cfg.JWT.RefreshExpiry
	}
	origins := cfg.Server.CORSAllowedOrigins[:0]
	for _, o := range cfg.Server.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.Server.CORSAllowedOrigins = origins
	return &cfg, nil
}

// Validate rejects settings that are unsafe or unusable
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, errors.New("DB_DRIVER must be postgres or sqlite"))
	}
	if c.Server.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
		if c.Security.SessionEncryptionKey == defaultSessionKey {
			errs = append(errs, errors.New("SESSION_ENCRYPTION_KEY must be set in production"))
		}
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWT.AccessExpiry <= 0 || c.JWT.RefreshExpiry <= 0 {
		errs = append(errs, errors.New("JWT expiries must be positive"))
	}
	return errors.Join(errs...)
}
