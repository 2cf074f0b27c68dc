package config

import "time"

const (
	// API
	DefaultAPIHost         = "0.0.0.0"
	DefaultAPIPort         = 8000
	DefaultShutdownTimeout = 15 * time.Second
	ServiceName            = "discord-message-deletion-api"

	// Delete endpoint
	HTTPDefaultLimit = 100
	HTTPMaxLimit     = 1000

	// Readiness wait
	DefaultReadyTimeout       = 60 * time.Second
	DefaultReadyPollInterval  = 500 * time.Millisecond
	DefaultReadyBackoffFactor = 1.5
	DefaultReadyMaxInterval   = 5 * time.Second

	// Rate limiting
	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10

	// Logging
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Process modes.
const (
	ModeAll = "all"
	ModeAPI = "api"
	ModeBot = "bot"
)
