package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		APIHost:           "api.example.com",
		APIKey:            "test-key",
		APIPageLimit:      1000,
		RedisHost:         "localhost",
		RedisPort:         "6379",
		CacheTTL:          300 * time.Second,
		CachePurgeChance:  100,
		DefaultLanguage:   "en-US",
		DefaultVoice:      "female",
		DefaultMaxDigits:  4,
		DefaultMaxResults: 8,
		ExitAction:        "forward",
	}
}

func TestValidateOK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.validate(); err != nil {
		t.Errorf("validate failed: %v", err)
	}
}

func TestValidatePageLimit(t *testing.T) {
	cfg := validConfig()
	cfg.APIPageLimit = 1001
	if err := cfg.validate(); err == nil {
		t.Error("expected error for page limit over 1000")
	}
	cfg.APIPageLimit = 0
	if err := cfg.validate(); err == nil {
		t.Error("expected error for zero page limit")
	}
}

func TestValidateMaxDigits(t *testing.T) {
	for _, v := range []int{1, 11} {
		cfg := validConfig()
		cfg.DefaultMaxDigits = v
		if err := cfg.validate(); err == nil {
			t.Errorf("expected error for max digits %d", v)
		}
	}
}

func TestValidateMaxResults(t *testing.T) {
	for _, v := range []int{0, 10} {
		cfg := validConfig()
		cfg.DefaultMaxResults = v
		if err := cfg.validate(); err == nil {
			t.Errorf("expected error for max results %d", v)
		}
	}
}

func TestValidateExitAction(t *testing.T) {
	cfg := validConfig()
	cfg.ExitAction = "redirect"
	if err := cfg.validate(); err == nil {
		t.Error("expected error for unknown exit action")
	}
	for _, v := range []string{"forward", "hangup", "restart"} {
		cfg := validConfig()
		cfg.ExitAction = v
		if err := cfg.validate(); err != nil {
			t.Errorf("exit action %q: %v", v, err)
		}
	}
}

func TestValkeyAddr(t *testing.T) {
	cfg := validConfig()
	if got := cfg.ValkeyAddr(); got != "localhost:6379" {
		t.Errorf("ValkeyAddr: got %v, want localhost:6379", got)
	}
}
