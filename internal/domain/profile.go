// File: internal/domain/profile.go
package domain

import "time"

// MaxProfileFacts caps the remembered-fact list; the oldest facts are
// evicted first.
const MaxProfileFacts = 20

// SuspensionDuration is how long a third moderation strike locks the user out.
const SuspensionDuration = time.Hour

// UserProfile is cross-chat memory about the human user. It is loaded once at
// session start and persisted after every mutation.
type UserProfile struct {
	Name           string     `json:"name,omitempty"`
	Facts          []string   `json:"facts"`
	Mood           string     `json:"mood"`
	MessageCount   int        `json:"message_count"`
	WarningCount   int        `json:"warning_count"`
	Suspended      bool       `json:"suspended"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
}

// NewUserProfile returns an empty profile with a neutral mood.
func NewUserProfile() *UserProfile {
	return &UserProfile{Mood: "neutral", Facts: []string{}}
}

// Remember appends a fact, keeping only the most recent MaxProfileFacts.
func (p *UserProfile) Remember(fact string) {
	p.Facts = append(p.Facts, fact)
	if len(p.Facts) > MaxProfileFacts {
		p.Facts = p.Facts[len(p.Facts)-MaxProfileFacts:]
	}
}

// SuspensionActive reports whether the profile is currently suspended,
// lazily clearing a suspension whose expiry has passed. It returns true
// together with the remaining duration while the suspension holds.
func (p *UserProfile) SuspensionActive(now time.Time) (bool, time.Duration) {
	if !p.Suspended {
		return false, 0
	}
	if p.SuspendedUntil != nil && now.After(*p.SuspendedUntil) {
		p.Suspended = false
		p.SuspendedUntil = nil
		return false, 0
	}
	if p.SuspendedUntil == nil {
		return true, 0
	}
	return true, p.SuspendedUntil.Sub(now)
}

// Suspend marks the profile suspended until now + SuspensionDuration.
func (p *UserProfile) Suspend(now time.Time) {
	until := now.Add(SuspensionDuration)
	p.Suspended = true
	p.SuspendedUntil = &until
}

// Clone returns a deep copy of the profile. Accessors hand clones to callers
// so reading a profile never races the session's writer.
func (p *UserProfile) Clone() *UserProfile {
	clone := *p
	clone.Facts = append([]string(nil), p.Facts...)
	if p.SuspendedUntil != nil {
		t := *p.SuspendedUntil
		clone.SuspendedUntil = &t
	}
	return &clone
}
