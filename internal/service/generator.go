package service

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// CodeLength is the length of generated shortcodes. With a 62-character
	// alphabet the collision probability within the retry budget is
	// negligible, but the budget is still enforced below.
	CodeLength = 9

	// maxGenerateAttempts bounds the generate-insert-retry loop. Hitting it
	// repeatedly means the code space is too small, not transient contention,
	// so exhaustion is surfaced instead of retried further.
	maxGenerateAttempts = 5

	maxCustomCodeLength = 64
	minCustomCodeLength = 3
)

// generateCode returns a random shortcode drawn from the base62 alphabet.
func generateCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}

	return string(b), nil
}

// validateCustomCode checks an owner-supplied shortcode. Generated codes
// never go through here.
func validateCustomCode(code string) error {
	if len(code) < minCustomCodeLength {
		return fmt.Errorf("%w: shortcode must be at least %d characters", ErrValidation, minCustomCodeLength)
	}
	if len(code) > maxCustomCodeLength {
		return fmt.Errorf("%w: shortcode must be at most %d characters", ErrValidation, maxCustomCodeLength)
	}
	for _, r := range code {
		if !isCodeChar(r) {
			return fmt.Errorf("%w: shortcode may contain only alphanumerics, dash and underscore", ErrValidation)
		}
	}
	if strings.HasPrefix(code, "-") || strings.HasPrefix(code, "_") ||
		strings.HasSuffix(code, "-") || strings.HasSuffix(code, "_") {
		return fmt.Errorf("%w: shortcode cannot start or end with dash or underscore", ErrValidation)
	}
	return nil
}

func isCodeChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
