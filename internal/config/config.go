// Package config assembles the server configuration from built-in defaults,
// an optional .env file, the process environment and command-line flags, in
// that order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime settings for the drumfeed server.
type Config struct {
	Addr           string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
	LogLevel       string
}

// LoadDefaults populates Config with development defaults.
// NOTE: JWTSecret must be overridden outside local development.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseURL = "sqlite://drumfeed.db"
	c.JWTSecret = "secretKey"
	c.TokenTTL = 7 * 24 * time.Hour
	c.BcryptCost = 10
	c.CORSOrigin = "*"
	c.RateLimitRPS = 1.0 / 3.0
	c.RateLimitBurst = 5
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, .env, environment and args
// (os.Args[1:] in production).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	// .env is a local development convenience; production sets variables directly.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envKeys = []string{
	"PORT", "DATABASE_URL", "JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST",
	"CORS_ORIGIN", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL",
}

func (c *Config) applyEnv() error {
	v := viper.New()
	v.AutomaticEnv()
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if v.IsSet("PORT") {
		c.Addr = ":" + strings.TrimPrefix(v.GetString("PORT"), ":")
	}
	if v.IsSet("DATABASE_URL") {
		c.DatabaseURL = v.GetString("DATABASE_URL")
	}
	if v.IsSet("JWT_SECRET") {
		c.JWTSecret = v.GetString("JWT_SECRET")
	}
	if v.IsSet("TOKEN_TTL") {
		d, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v.IsSet("BCRYPT_COST") {
		c.BcryptCost = v.GetInt("BCRYPT_COST")
	}
	if v.IsSet("CORS_ORIGIN") {
		c.CORSOrigin = v.GetString("CORS_ORIGIN")
	}
	if v.IsSet("RATE_LIMIT_RPS") {
		c.RateLimitRPS = v.GetFloat64("RATE_LIMIT_RPS")
	}
	if v.IsSet("RATE_LIMIT_BURST") {
		c.RateLimitBurst = v.GetInt("RATE_LIMIT_BURST")
	}
	if v.IsSet("LOG_LEVEL") {
		c.LogLevel = v.GetString("LOG_LEVEL")
	}
	return nil
}

// parseFlags overrides selected fields from command-line flags.
//
//	-a string   listen address (e.g. ":8080")
//	-d string   database URL (sqlite://... or postgres://...)
//	-s string   JWT HMAC secret
//	-t duration token validity (e.g. 168h)
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("drumfeed", flag.ContinueOnError)

	fs.StringVar(&c.Addr, "a", c.Addr, "address and port to run server")
	fs.StringVar(&c.DatabaseURL, "d", c.DatabaseURL, "database URL")
	fs.StringVar(&c.JWTSecret, "s", c.JWTSecret, "JWT secret key")
	fs.DurationVar(&c.TokenTTL, "t", c.TokenTTL, "token validity duration")

	return fs.Parse(args)
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token validity must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

// String masks secrets.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Addr: %s\n", c.Addr))
	sb.WriteString(fmt.Sprintf("  DatabaseURL: %s\n", maskDSN(c.DatabaseURL)))
	if c.JWTSecret != "" {
		sb.WriteString("  JWTSecret: ********\n")
	} else {
		sb.WriteString("  JWTSecret: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  TokenTTL: %s\n", c.TokenTTL))
	sb.WriteString(fmt.Sprintf("  BcryptCost: %d\n", c.BcryptCost))
	sb.WriteString(fmt.Sprintf("  CORSOrigin: %s\n", c.CORSOrigin))
	sb.WriteString(fmt.Sprintf("  RateLimit: %.3f rps, burst %d\n", c.RateLimitRPS, c.RateLimitBurst))
	sb.WriteString(fmt.Sprintf("  LogLevel: %s\n", c.LogLevel))
	return sb.String()
}

// maskDSN hides the password part of user:password@host.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	scheme := strings.Index(dsn, "://")
	if scheme < 0 || scheme+3 > at {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return dsn
	}
	return dsn[:scheme+3] + creds[:colon] + ":********" + dsn[at:]
}
