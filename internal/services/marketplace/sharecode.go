// File: internal/services/marketplace/sharecode.go
package marketplace

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// shareCodeCharset omits ambiguous characters (0/O, 1/I) so codes survive
// being read aloud or typed from a screenshot.
const shareCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randomShareCode returns one candidate code of the given length.
func randomShareCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(shareCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("share code generation failed: %w", err)
		}
		code[i] = shareCodeCharset[n.Int64()]
	}
	return string(code), nil
}

// generateShareCode produces a code no existing bot holds, retrying on
// collision up to the configured attempt cap.
func (s *Service) generateShareCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.config.ShareCodeAttempts; attempt++ {
		code, err := randomShareCode(s.config.ShareCodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.bots.ShareCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrShareCodeExhausted
}
