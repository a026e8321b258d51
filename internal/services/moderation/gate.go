// File: internal/services/moderation/gate.go

// Package moderation screens outgoing user text against a banned-pattern list
// and tracks the 3-strike suspension counter on the user profile.
package moderation

import (
	"fmt"
	"regexp"
	"time"

	"personachat/internal/domain"
	"personachat/internal/services"
)

// MaxWarnings is the strike count that triggers a suspension.
const MaxWarnings = 3

// DefaultPatterns covers self-harm threats, violent threats and slurs. The
// exact set is a content-policy decision; callers may supply their own list.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(kys|kill\s*yourself|neck\s*yourself)\b`),
		regexp.MustCompile(`(?i)\b(i('ll|m\s*going\s*to)\s*hurt\s*(myself|you|someone))\b`),
		regexp.MustCompile(`(?i)\b(bomb\s*threat|shoot\s*up|mass\s*shooting)\b`),
		regexp.MustCompile(`(?i)\b(n[i1]gg[ae3]r|f[a4]gg[o0]t|r[e3]t[a4]rd)\b`),
	}
}

// CheckResult is the outcome of screening one outgoing message.
type CheckResult struct {
	Blocked   bool   `json:"blocked"`
	Suspended bool   `json:"suspended"`
	Message   string `json:"message,omitempty"`
}

// Gate pattern-matches user text and mutates the profile's warning state.
// The caller persists the profile after a blocked result.
type Gate struct {
	patterns []*regexp.Regexp
	logger   services.Logger
}

// NewGate creates a gate over the given pattern list.
func NewGate(patterns []*regexp.Regexp, logger services.Logger) *Gate {
	return &Gate{patterns: patterns, logger: logger}
}

// Check screens text. On a match it increments the profile's warning count;
// the third strike suspends the profile for an hour from now.
func (g *Gate) Check(profile *domain.UserProfile, text string, now time.Time) CheckResult {
	for _, pattern := range g.patterns {
		if !pattern.MatchString(text) {
			continue
		}

		profile.WarningCount++
		g.logger.Warn("message blocked by moderation",
			"warnings", profile.WarningCount, "max", MaxWarnings)

		if profile.WarningCount >= MaxWarnings {
			profile.Suspend(now)
			return CheckResult{
				Blocked:   true,
				Suspended: true,
				Message:   "yo you've been suspended for an hour. chill out fr",
			}
		}

		return CheckResult{
			Blocked: true,
			Message: fmt.Sprintf("that's not cool man. warning %d/%d", profile.WarningCount, MaxWarnings),
		}
	}
	return CheckResult{}
}
