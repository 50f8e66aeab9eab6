package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort string `yaml:"app_port"`

	RedisAddr    string `yaml:"redis_addr"`
	RedisDB      int    `yaml:"redis_db"`
	CacheEnabled bool   `yaml:"cache_enabled"`
	CacheTTLSecs int    `yaml:"cache_ttl_seconds"`

	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	Limits Limits `yaml:"limits"`
}

// Limits caps what a single request may ask the engine for.
type Limits struct {
	MaxPrincipal  float64 `yaml:"max_principal"`
	MaxTermMonths int     `yaml:"max_term_months"`
	MaxAnnualRate float64 `yaml:"max_annual_rate"`
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// DefaultLimits are the caps applied when neither the YAML file nor the
// environment sets them.
func DefaultLimits() Limits {
	return Limits{
		MaxPrincipal:  1_000_000_000,
		MaxTermMonths: 600,
		MaxAnnualRate: 100,
	}
}

// Load reads the optional YAML file named by LOANCALC_CONFIG, then lets
// environment variables override individual keys.
func Load() (*Config, error) {
	c := &Config{
		AppPort:      "8080",
		RedisAddr:    "redis:6379",
		CacheEnabled: true,
		CacheTTLSecs: 300,
		RateLimitRPS: 20,
		Limits:       DefaultLimits(),
	}

	if path := os.Getenv("LOANCALC_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return c, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	c.AppPort = getenv("APP_PORT", c.AppPort)
	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getenvInt("REDIS_DB", c.RedisDB)
	c.CacheEnabled = getenvBool("CACHE_ENABLED", c.CacheEnabled)
	c.CacheTTLSecs = getenvInt("CACHE_TTL_SECONDS", c.CacheTTLSecs)
	c.RateLimitRPS = getenvFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.Limits.MaxPrincipal = getenvFloat("MAX_PRINCIPAL", c.Limits.MaxPrincipal)
	c.Limits.MaxTermMonths = getenvInt("MAX_TERM_MONTHS", c.Limits.MaxTermMonths)
	c.Limits.MaxAnnualRate = getenvFloat("MAX_ANNUAL_RATE", c.Limits.MaxAnnualRate)
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := net.LookupPort("tcp", c.AppPort); err != nil {
		return fmt.Errorf("invalid APP_PORT %q: %w", c.AppPort, err)
	}
	if c.CacheEnabled {
		if c.RedisAddr == "" {
			return errors.New("missing REDIS_ADDR (or set CACHE_ENABLED=false)")
		}
		if c.CacheTTLSecs <= 0 {
			return fmt.Errorf("invalid CACHE_TTL_SECONDS %d", c.CacheTTLSecs)
		}
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("invalid RATE_LIMIT_RPS %v", c.RateLimitRPS)
	}
	if c.Limits.MaxPrincipal <= 0 || c.Limits.MaxTermMonths < 1 || c.Limits.MaxAnnualRate <= 0 {
		return errors.New("limits must be positive (MAX_PRINCIPAL/MAX_TERM_MONTHS/MAX_ANNUAL_RATE)")
	}
	return nil
}

func (c *Config) Addr() string { return ":" + c.AppPort }
