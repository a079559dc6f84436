package server

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the preview server settings
type Config struct {
	// Addr is the listen address, host optional
	Addr string `validate:"required"`

	// MaxDocumentBytes bounds the snippet size the server will parse;
	// larger documents are rejected with 413
	MaxDocumentBytes int `validate:"gt=0"`

	// SessionTTL bounds both preview sessions and their tokens
	SessionTTL time.Duration `validate:"gt=0"`
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{
		Addr:             ":8899",
		MaxDocumentBytes: 1 << 20,
		SessionTTL:       time.Hour,
	}
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	if err := validate.Struct(&c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}
