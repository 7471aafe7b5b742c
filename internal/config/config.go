// Package config loads settings from command-line flags, the environment and an
// optional .env file. Flags win over environment variables, which win over .env values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables, e.g. VAQUEJADA_PORT
const EnvPrefix = "VAQUEJADA"

// Config holds all application configuration
type Config struct {
	Port           int
	DBPath         string
	LogLevel       string
	HTTPLogging    bool
	JWTSecret      string
	RedisAddr      string
	DraftTTL       time.Duration
	PaymentURL     string
	PaymentTimeout time.Duration
	ShowVersion    bool
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load parses args (without the program name) on top of the environment.
// envFiles are loaded with godotenv when present; missing files are ignored.
func Load(args []string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		// existing environment variables are never overridden by the file
		_ = godotenv.Load(f)
	}

	fs := pflag.NewFlagSet("vaquejada", pflag.ContinueOnError)
	fs.Int("port", 8081, "HTTP server port")
	fs.String("db", "vaquejada.db", "SQLite database path")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Bool("http-log", false, "Log every HTTP request")
	fs.String("jwt-secret", "", "HS256 secret shared with the auth service")
	fs.String("redis-addr", "", "Redis address for selection drafts (in-memory when empty)")
	fs.Duration("draft-ttl", 30*time.Minute, "How long a parked selection survives")
	fs.String("payment-url", "", "Base URL of the payment service")
	fs.Duration("payment-timeout", 10*time.Second, "Timeout for payment service calls")
	fs.Bool("version", false, "Show version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &Config{
		Port:           v.GetInt("port"),
		DBPath:         v.GetString("db"),
		LogLevel:       v.GetString("log-level"),
		HTTPLogging:    v.GetBool("http-log"),
		JWTSecret:      v.GetString("jwt-secret"),
		RedisAddr:      v.GetString("redis-addr"),
		DraftTTL:       v.GetDuration("draft-ttl"),
		PaymentURL:     strings.TrimRight(v.GetString("payment-url"), "/"),
		PaymentTimeout: v.GetDuration("payment-timeout"),
		ShowVersion:    v.GetBool("version"),
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: db path must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: %s_JWT_SECRET must be set", EnvPrefix)
	}
	if c.PaymentURL == "" {
		return fmt.Errorf("config: %s_PAYMENT_URL must be set", EnvPrefix)
	}
	if c.DraftTTL < 0 || c.PaymentTimeout <= 0 {
		return fmt.Errorf("config: durations must be positive")
	}
	return nil
}
