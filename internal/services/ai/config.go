// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string

	// Model Configuration
	ChatModel       string
	ModerationModel string

	// Generation options. Temperature stays high; chat personas are meant to
	// sound loose, not clinical.
	Temperature float32
	TopP        float32

	// Performance Configuration
	Timeout time.Duration
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("chat_model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:          apiKey,
		ChatModel:       "gpt-5-nano",
		ModerationModel: "omni-moderation-latest",
		Temperature:     0.9,
		TopP:            1.0,
		Timeout:         120 * time.Second,
	}
}
