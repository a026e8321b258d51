// File: internal/services/marketplace/status.go
package marketplace

import (
	"fmt"
	"time"

	"personachat/internal/domain"
)

// ModerationStatus is the owner-facing view of a bot's review state.
type ModerationStatus struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

// BuildStatus summarizes a bot's moderation state for its creator. Pending
// bots report queue age; bots pending past the stuck threshold say so.
func BuildStatus(bot *domain.Bot, now time.Time, stuckThreshold time.Duration) ModerationStatus {
	switch {
	case bot.IsApproved():
		return ModerationStatus{State: "approved", Message: "Approved"}
	case bot.IsRejected():
		reason := bot.RejectionReason
		if reason == "" {
			reason = "content policy violation"
		}
		return ModerationStatus{State: "rejected", Message: fmt.Sprintf("Rejected — %s", reason)}
	default:
		age := now.Sub(bot.CreatedAt)
		minutes := int(age.Minutes())
		if age >= stuckThreshold {
			return ModerationStatus{
				State:   "pending",
				Message: fmt.Sprintf("Pending — stuck (%dm). Moderation will retry shortly.", minutes),
			}
		}
		return ModerationStatus{
			State:   "pending",
			Message: fmt.Sprintf("Pending — queued (%dm ago)", minutes),
		}
	}
}
