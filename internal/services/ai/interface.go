// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"personachat/internal/domain"
)

// CompletionProvider produces one assistant reply for a model-facing
// transcript. Implementations relabel the system role to whatever wire alias
// the backing provider expects; callers always speak in domain roles.
type CompletionProvider interface {
	Complete(ctx context.Context, turns []domain.Turn) (string, error)
}

// ModerationVerdict is the tri-state outcome of screening persona content.
// Approved and Rejected both nil means the check could not run and the
// content stays pending.
type ModerationVerdict struct {
	Approved *bool
	Rejected *bool
	Reason   string
}

// ContentModerator screens persona content before it may go public.
type ContentModerator interface {
	ModerateContent(ctx context.Context, input string) ModerationVerdict
}
