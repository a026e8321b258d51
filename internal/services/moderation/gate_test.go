// File: internal/services/moderation/gate_test.go
package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/internal/domain"
	"personachat/internal/services"
)

func newTestGate() *Gate {
	return NewGate(DefaultPatterns(), &services.NoOpLogger{})
}

func TestCheckCleanTextPasses(t *testing.T) {
	gate := newTestGate()
	profile := domain.NewUserProfile()

	result := gate.Check(profile, "hey what's the weather like", time.Now())

	assert.False(t, result.Blocked)
	assert.Equal(t, 0, profile.WarningCount)
}

func TestCheckBlockedTextWarns(t *testing.T) {
	gate := newTestGate()
	profile := domain.NewUserProfile()

	result := gate.Check(profile, "kys loser", time.Now())

	assert.True(t, result.Blocked)
	assert.False(t, result.Suspended)
	assert.Equal(t, "that's not cool man. warning 1/3", result.Message)
	assert.Equal(t, 1, profile.WarningCount)
}

func TestCheckThirdStrikeSuspends(t *testing.T) {
	gate := newTestGate()
	profile := domain.NewUserProfile()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := gate.Check(profile, "kys", now)
	second := gate.Check(profile, "kill yourself", now)
	third := gate.Check(profile, "neck yourself", now)

	assert.Equal(t, "that's not cool man. warning 1/3", first.Message)
	assert.Equal(t, "that's not cool man. warning 2/3", second.Message)

	assert.True(t, third.Blocked)
	assert.True(t, third.Suspended)
	assert.Equal(t, "yo you've been suspended for an hour. chill out fr", third.Message)

	require.True(t, profile.Suspended)
	require.NotNil(t, profile.SuspendedUntil)
	assert.Equal(t, now.Add(time.Hour), *profile.SuspendedUntil)
}

func TestCheckWarningsSurviveCleanMessages(t *testing.T) {
	gate := newTestGate()
	profile := domain.NewUserProfile()
	now := time.Now()

	gate.Check(profile, "kys", now)
	gate.Check(profile, "sorry about that, anyway how are you", now)
	result := gate.Check(profile, "i'll hurt you", now)

	assert.True(t, result.Blocked)
	assert.Equal(t, 2, profile.WarningCount)
}

func TestDefaultPatternsCoverage(t *testing.T) {
	gate := newTestGate()
	now := time.Now()

	blocked := []string{
		"KYS",
		"kill  yourself",
		"i'll hurt myself",
		"gonna shoot up the place",
		"bomb threat incoming",
	}
	for _, text := range blocked {
		profile := domain.NewUserProfile()
		result := gate.Check(profile, text, now)
		assert.True(t, result.Blocked, "expected %q to be blocked", text)
	}

	clean := []string{
		"the sky is blue",
		"i'll hurt my chances if i skip practice",
		"that skyscraper is massive",
	}
	for _, text := range clean {
		profile := domain.NewUserProfile()
		result := gate.Check(profile, text, now)
		assert.False(t, result.Blocked, "expected %q to pass", text)
	}
}
