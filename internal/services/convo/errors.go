// File: internal/services/convo/errors.go
package convo

import (
	"errors"
	"fmt"
	"time"
)

// ErrBusy is returned when a send arrives while a previous turn is still in
// flight. Concurrent sends are rejected, never queued.
var ErrBusy = errors.New("a message is already being processed")

// ErrChatNotFound is returned for an unknown chat ID.
var ErrChatNotFound = errors.New("chat not found")

// SuspendedError rejects a turn before any model call is made. The remaining
// duration lets the caller tell the user how long is left.
type SuspendedError struct {
	Remaining time.Duration
}

func (e *SuspendedError) Error() string {
	return fmt.Sprintf("user is suspended for %d more minutes", e.RemainingMinutes())
}

// RemainingMinutes rounds the remaining suspension up to whole minutes.
func (e *SuspendedError) RemainingMinutes() int {
	return int((e.Remaining + time.Minute - 1) / time.Minute)
}
