// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values.  Each leaf field maps to an
// environment variable; nested structs group the settings of one concern.
type Config struct {
	Env       string `envconfig:"APP_ENV" default:"dev"`     // application environment (e.g. "dev", "prod")
	Port      string `envconfig:"APP_PORT" default:"3000"`   // HTTP port to listen on
	BodyLimit string `envconfig:"BODY_LIMIT" default:"250K"` // max accepted request body size
	SentryDSN string `envconfig:"SENTRY_DSN"`                // optional Sentry DSN for error capture

	DB        DBConfig
	Log       LogConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	AMQP      AMQPConfig
}

// DBConfig describes the MySQL connection and its pool.
type DBConfig struct {
	User            string `envconfig:"DB_USER" required:"true"`
	Pass            string `envconfig:"DB_PASS"` // empty allowed
	Host            string `envconfig:"DB_HOST" required:"true"`
	Port            string `envconfig:"DB_PORT" default:"3306"`
	Name            string `envconfig:"DB_NAME" required:"true"`
	MaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime int    `envconfig:"DB_CONN_MAX_LIFETIME" default:"1800"` // seconds
	Migrate         bool   `envconfig:"DB_MIGRATE" default:"false"`          // create tables on startup
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info"`
	FilePath string `envconfig:"LOG_FILE_PATH"`
}

// AuthConfig enables bearer-token protection of write routes.  When
// JWTSecret is empty the API stays open.
type AuthConfig struct {
	JWTSecret         string `envconfig:"JWT_SECRET"`
	AdminUser         string `envconfig:"ADMIN_USER" default:"admin"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"` // bcrypt hash, see cmd/hashpw
	AccessTTLMin      int    `envconfig:"ACCESS_TOKEN_TTL_MIN" default:"60"`
}

// Enabled reports whether write routes require a token.
func (a AuthConfig) Enabled() bool { return a.JWTSecret != "" }

// AMQPConfig configures domain event publishing and the audit consumer.
type AMQPConfig struct {
	URL             string `envconfig:"AMQP_URL"` // publishing is disabled when empty
	Queue           string `envconfig:"AMQP_QUEUE" default:"biztime.events"`
	ConsumerEnabled bool   `envconfig:"EVENTS_CONSUMER_ENABLED" default:"false"`
	AuditLogPath    string `envconfig:"EVENTS_AUDIT_LOG" default:"logs/invoice_events.log"`
}

// Load reads an optional .env file and decodes the environment into a
// Config.  Missing required variables are reported as an error.
func Load() (Config, error) {
	_ = godotenv.Load(".env") // the file is optional

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.Cache.normalize()
	cfg.RateLimit.normalize()
	return cfg, nil
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}
