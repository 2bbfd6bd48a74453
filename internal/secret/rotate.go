package secret

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Writer stores a new value for the shared secret.
type Writer interface {
	Put(ctx context.Context, value string) error
	Name() string
}

// NewToken returns n random bytes encoded as URL-safe base64 without padding.
func NewToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Rotate writes a fresh random token of n bytes through w.
func Rotate(ctx context.Context, w Writer, n int) error {
	token, err := NewToken(n)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	if err := w.Put(ctx, token); err != nil {
		return fmt.Errorf("write %s: %w", w.Name(), err)
	}
	return nil
}
