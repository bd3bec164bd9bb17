package bot

import (
	"time"
)

// Config represents the configuration for the bot
type Config struct {
	// Long-poll timeout for the Telegram updates channel
	PollTimeout time.Duration
	// How long an unanswered "send me a file" prompt stays active
	UploadWindow time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *Config {
	return &Config{
		PollTimeout:  30 * time.Second,
		UploadWindow: 5 * time.Minute,
	}
}
