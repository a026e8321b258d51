// File: internal/services/proxy/errors.go
package proxy

// StatusError carries an HTTP status alongside the user-facing message so the
// handler layer can emit the right code without inspecting error strings.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

func failed(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}
