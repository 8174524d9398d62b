package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// InsecureDevSecret is the signing secret used when JWT_SECRET is unset in a
// development or test environment. It is never accepted anywhere else.
const InsecureDevSecret = "dev_secret"

// InsecureDevAdminPassword seeds the default administrator when
// ADMIN_PASSWORD is unset in a development or test environment.
const InsecureDevAdminPassword = "Admin@12345"

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// ErrMissingJWTSecret is returned by Validate when JWT_SECRET is unset outside
// a development or test environment.
var ErrMissingJWTSecret = errors.New("config: JWT_SECRET is required outside development and test")

// ErrMissingAdminPassword is returned by Validate when ADMIN_PASSWORD is unset
// outside a development or test environment.
var ErrMissingAdminPassword = errors.New("config: ADMIN_PASSWORD is required outside development and test")

type Config struct {
	Port      string `env:"PORT,      default=5001"`
	Env       string `env:"ENV,       default=production"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// TrustedProxies lists the CIDR ranges whose X-Forwarded-For header is
	// believed. Empty means the socket peer is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Uploads  UploadConfig
	Minio    MinioConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=culturecart"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	// Enabled=false disables the login throttle and the redis readiness check.
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// AdminConfig seeds the default administrator at startup.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL,    default=admin@example.com"`
	Password string `env:"ADMIN_PASSWORD"`
}

type UploadConfig struct {
	Backend  string `env:"UPLOAD_BACKEND, default=disk"`
	Dir      string `env:"UPLOAD_DIR,     default=uploads"`
	MaxMB    int    `env:"MAX_UPLOAD_MB,  default=20"`
	MaxFiles int    `env:"MAX_GALLERY_FILES, default=10"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=culturecart-uploads"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
	PublicURL string `env:"MINIO_PUBLIC_URL, default=http://localhost:9000"`
}

type ThrottleConfig struct {
	MaxFailures         int           `env:"LOGIN_MAX_FAILURES,           default=5"`
	MaxFailuresPerEmail int           `env:"LOGIN_MAX_FAILURES_PER_EMAIL, default=20"`
	Window              time.Duration `env:"LOGIN_FAILURE_WINDOW,         default=15m"`
}

type AuditConfig struct {
	Workers   int `env:"AUDIT_WORKERS,    default=2"`
	QueueSize int `env:"AUDIT_QUEUE_SIZE, default=256"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Local reports whether the process runs in an explicitly flagged local mode.
func (c *Config) Local() bool {
	switch strings.ToLower(c.Env) {
	case EnvDevelopment, EnvTest:
		return true
	}
	return false
}

// UsesInsecureAdminPassword reports whether the default administrator is
// seeded with InsecureDevAdminPassword.
func (c *Config) UsesInsecureAdminPassword() bool {
	return c.Admin.Password == InsecureDevAdminPassword
}

// UsesInsecureSecret reports whether the signing secret fell back to
// InsecureDevSecret.
func (c *Config) UsesInsecureSecret() bool {
	return c.JWTSecret == InsecureDevSecret
}

// Validate enforces cross-field rules. A missing JWT_SECRET or ADMIN_PASSWORD
// is fatal unless ENV is development or test, where the insecure defaults are
// substituted.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.Local() {
			return ErrMissingJWTSecret
		}
		c.JWTSecret = InsecureDevSecret
	}
	if c.Admin.Password == "" {
		if !c.Local() {
			return ErrMissingAdminPassword
		}
		c.Admin.Password = InsecureDevAdminPassword
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(strings.TrimSpace(cidr)); err != nil {
			return fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", cidr, err)
		}
	}

	switch c.Uploads.Backend {
	case "disk", "minio":
	default:
		return fmt.Errorf("config: unknown UPLOAD_BACKEND %q", c.Uploads.Backend)
	}
	if c.Uploads.MaxFiles <= 0 {
		return fmt.Errorf("config: MAX_GALLERY_FILES must be positive")
	}
	return nil
}
