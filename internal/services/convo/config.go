// File: internal/services/convo/config.go
package convo

import (
	"fmt"
	"time"
)

type Config struct {
	// Chunked delivery pacing.
	ChunkLimit       int           // max characters per typing chunk
	ChunkDelayBase   time.Duration // pause before each follow-up chunk
	ChunkDelayJitter time.Duration // random extra pause, [0, jitter)

	// Fixed in-voice failure messages. Raw errors never reach the transcript.
	ApologyMessage        string
	LocationDeniedMessage string
}

func (c *Config) Validate() error {
	if c.ChunkLimit <= 0 {
		return fmt.Errorf("chunk_limit must be positive")
	}
	if c.ChunkDelayBase < 0 || c.ChunkDelayJitter < 0 {
		return fmt.Errorf("chunk delays cannot be negative")
	}
	if c.ApologyMessage == "" {
		return fmt.Errorf("apology_message is required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ChunkLimit:            80,
		ChunkDelayBase:        300 * time.Millisecond,
		ChunkDelayJitter:      200 * time.Millisecond,
		ApologyMessage:        "my bad something broke lol",
		LocationDeniedMessage: "no worries, cant do weather without location tho. you can try again or tell me a city",
	}
}
