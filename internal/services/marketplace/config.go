// File: internal/services/marketplace/config.go
package marketplace

import (
	"fmt"
	"time"
)

// Config holds marketplace tunables.
type Config struct {
	// ShareCodeLength is the number of characters in a generated share code.
	ShareCodeLength int
	// ShareCodeAttempts caps collision retries during code generation.
	ShareCodeAttempts int
	// MarketplaceLimit caps the public listing size.
	MarketplaceLimit int
	// SearchLimit caps search result size.
	SearchLimit int
	// StuckThreshold is how long a bot may sit pending before its status
	// message calls the queue stuck.
	StuckThreshold time.Duration
}

// Validate checks config sanity.
func (c *Config) Validate() error {
	if c.ShareCodeLength <= 0 {
		return fmt.Errorf("share code length must be positive")
	}
	if c.ShareCodeAttempts <= 0 {
		return fmt.Errorf("share code attempts must be positive")
	}
	if c.MarketplaceLimit <= 0 {
		return fmt.Errorf("marketplace limit must be positive")
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("search limit must be positive")
	}
	if c.StuckThreshold <= 0 {
		return fmt.Errorf("stuck threshold must be positive")
	}
	return nil
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		ShareCodeLength:   4,
		ShareCodeAttempts: 10,
		MarketplaceLimit:  50,
		SearchLimit:       20,
		StuckThreshold:    30 * time.Minute,
	}
}
