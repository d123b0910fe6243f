package config

import (
	"errors"
	"time"
)

// Config is the application configuration root.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// TrustedProxies lists the proxies whose forwarding headers are
	// believed when resolving the client IP. Empty means no proxy is
	// trusted and the socket remote address is used as-is.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// LogConfig holds zerolog settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds authentication and rate-limiting settings.
type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	JWTIssuer          string        `mapstructure:"jwt_issuer"`
	JWTAudience        string        `mapstructure:"jwt_audience"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_token_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_token_expiry"`

	// Brute-force protection on authentication endpoints.
	MaxLoginAttempts int           `mapstructure:"max_login_attempts"`
	RateLimitWindow  time.Duration `mapstructure:"rate_limit_window"`
	LockoutDuration  time.Duration `mapstructure:"lockout_duration"`
	// RateLimiter selects the attempt store: "memory" (single instance
	// only) or "redis".
	RateLimiter string `mapstructure:"rate_limiter"`

	// Refresh token delivery. When cookie mode is on, the refresh token
	// travels in an HttpOnly cookie instead of response headers only.
	UseHTTPOnlyCookies bool   `mapstructure:"use_http_only_cookies"`
	RefreshCookieName  string `mapstructure:"refresh_cookie_name"`
}

// StorageConfig holds media storage settings.
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig configures the local filesystem backend.
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`
	BaseURL       string `mapstructure:"base_url"`
	PresignExpiry int    `mapstructure:"presign_expiry"` // seconds
}

// OSSConfig configures the Aliyun OSS backend.
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	PresignExpiry   int    `mapstructure:"presign_expiry"` // seconds
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Auth.RateLimiter != "memory" && c.Auth.RateLimiter != "redis" {
		return errors.New("invalid rate limiter, must be memory/redis")
	}

	if c.Auth.MaxLoginAttempts <= 0 {
		return errors.New("auth.max_login_attempts must be positive")
	}

	return nil
}
