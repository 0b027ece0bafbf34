// Package config loads the application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for logging, the HTTP server, the database connection,
// range scanning, background workers, API authentication, the remote client and
// graceful shutdown.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" env-default:"" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"primes" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Scanner contains range scanning related configurations
	Scanner struct {
		// DefaultUpper is the upper bound used by the scan command when none is given
		DefaultUpper int64 `env:"SCANNER_DEFAULT_UPPER" env-default:"20" yaml:"defaultUpper"`
		// DefaultInclusive makes DefaultUpper part of the scanned range
		DefaultInclusive bool `env:"SCANNER_DEFAULT_INCLUSIVE" env-default:"true" yaml:"defaultInclusive"`
		// MaxUpper is the largest upper bound accepted from API clients and jobs
		MaxUpper int64 `env:"SCANNER_MAX_UPPER" env-default:"10000000" yaml:"maxUpper"`
		// MaxAttempts is the number of times a scan job is tried before its scans are marked failed
		MaxAttempts int `env:"SCANNER_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// ResultCacheTTL is how long a completed result is reused for new scans of the same range
		ResultCacheTTL time.Duration `env:"SCANNER_RESULT_CACHE_TTL" env-default:"24h" yaml:"resultCacheTTL"`
	} `yaml:"scanner"`

	// Worker contains background job processing configurations
	Worker struct {
		// MaxWorkers is the number of scan jobs processed concurrently
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"10" yaml:"maxWorkers"`
		// JobTimeout bounds the duration of a single scan job
		JobTimeout time.Duration `env:"WORKER_JOB_TIMEOUT" env-default:"5m" yaml:"jobTimeout"`
	} `yaml:"worker"`

	// JWT contains API token related configurations
	JWT struct {
		// PrivateKey is the PEM encoded RSA private key used by the jwt command to sign tokens
		PrivateKey string `env:"JWT_PRIVATE_KEY" env-default:"" yaml:"privateKey"`
		// PublicKey is the PEM encoded RSA public key used by the API to verify tokens
		PublicKey string `env:"JWT_PUBLIC_KEY" env-default:"" yaml:"publicKey"`
	} `yaml:"jwt"`

	// Remote contains settings of the remote command, which talks to a running server
	Remote struct {
		// ServerURL is the root URL of the primes server
		ServerURL string `env:"REMOTE_SERVER_URL" env-default:"http://localhost:8080" yaml:"serverURL"`
		// Token is the bearer JWT sent with scan requests
		Token string `env:"REMOTE_TOKEN" env-default:"" yaml:"token"`
		// Timeout bounds every request made to the server
		Timeout time.Duration `env:"REMOTE_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"remote"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// A missing file is not an error: defaults and environment variables are used instead.
func Load(configPath string) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(configPath)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	case errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}
	default:
		return nil, fmt.Errorf("could not stat config file: %w", statErr)
	}

	return &cfg, nil
}
