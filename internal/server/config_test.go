package server

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
	if cfg.Addr == "" {
		t.Error("default config missing listen address")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing addr", mutate: func(c *Config) { c.Addr = "" }},
		{name: "zero document limit", mutate: func(c *Config) { c.MaxDocumentBytes = 0 }},
		{name: "negative document limit", mutate: func(c *Config) { c.MaxDocumentBytes = -1 }},
		{name: "zero session ttl", mutate: func(c *Config) { c.SessionTTL = 0 }},
		{name: "negative session ttl", mutate: func(c *Config) { c.SessionTTL = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "invalid server config") {
				t.Errorf("error %q missing config prefix", err)
			}
		})
	}
}
