// Package config loads process configuration from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	Mode string

	DiscordBotToken string

	APIHost         string
	APIPort         int
	ShutdownTimeout time.Duration

	ReadyTimeout       time.Duration
	ReadyPollInterval  time.Duration
	ReadyBackoffFactor float64
	ReadyMaxInterval   time.Duration

	LogLevel  string
	LogFormat string

	DatabaseDSN        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisEventsChannel string

	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// RunsAPI reports whether the HTTP server should start.
func (c *Config) RunsAPI() bool { return c.Mode == ModeAll || c.Mode == ModeAPI }

// RunsBot reports whether the Discord bot should connect.
func (c *Config) RunsBot() bool { return c.Mode == ModeAll || c.Mode == ModeBot }

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Error loading .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	p := &envParser{}
	cfg := &Config{
		Mode:            strings.ToLower(envString("APP_MODE", ModeAll)),
		DiscordBotToken: strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN")),

		APIHost:         envString("API_HOST", DefaultAPIHost),
		APIPort:         p.intVal("API_PORT", DefaultAPIPort),
		ShutdownTimeout: p.durationVal("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),

		ReadyTimeout:       p.durationVal("READY_TIMEOUT", DefaultReadyTimeout),
		ReadyPollInterval:  p.durationVal("READY_POLL_INTERVAL", DefaultReadyPollInterval),
		ReadyBackoffFactor: p.floatVal("READY_BACKOFF_FACTOR", DefaultReadyBackoffFactor),
		ReadyMaxInterval:   p.durationVal("READY_MAX_INTERVAL", DefaultReadyMaxInterval),

		LogLevel:  envString("LOG_LEVEL", DefaultLogLevel),
		LogFormat: envString("LOG_FORMAT", DefaultLogFormat),

		DatabaseDSN:        os.Getenv("DATABASE_DSN"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            p.intVal("REDIS_DB", 0),
		RedisEventsChannel: envString("REDIS_EVENTS_CHANNEL", "discord:deletions"),

		JWTSecret:      os.Getenv("API_JWT_SECRET"),
		RateLimitRPS:   p.floatVal("RATE_LIMIT_RPS", DefaultRateLimitRPS),
		RateLimitBurst: p.intVal("RATE_LIMIT_BURST", DefaultRateLimitBurst),
	}
	if p.err != nil {
		return nil, p.err
	}

	switch cfg.Mode {
	case ModeAll, ModeAPI, ModeBot:
	default:
		return nil, fmt.Errorf("invalid APP_MODE %q (want all, api or bot)", cfg.Mode)
	}
	if cfg.RunsBot() && cfg.DiscordBotToken == "" {
		return nil, errors.New("DISCORD_BOT_TOKEN is not set")
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return nil, fmt.Errorf("invalid API_PORT %d", cfg.APIPort)
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envParser keeps the first parse error so Load can report it once.
type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != "" && p.err == nil
}

func (p *envParser) intVal(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
		return def
	}
	return n
}

func (p *envParser) floatVal(key string, def float64) float64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
		return def
	}
	return f
}

func (p *envParser) durationVal(key string, def time.Duration) time.Duration {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
		return def
	}
	return d
}
