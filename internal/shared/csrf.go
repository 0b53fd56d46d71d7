package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	// CSRFSessionKey is the session key holding the active token.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the form field checked when no header token is sent.
	CSRFFormField = "csrf_token"
)

// CSRFManager mints per-session CSRF tokens and checks submitted ones
// against the session copy. Tokens are HMAC-keyed so they cannot be forged
// without the server secret, and verification is a constant-time compare
// against the stored value.
type CSRFManager struct {
	key []byte
}

// NewCSRFManager returns a manager keyed with secret.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{key: []byte(secret)}
}

// EnsureToken returns the session's token, minting one on first use.
func (m *CSRFManager) EnsureToken(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", errors.New("session missing")
	}
	if token := sess.Get(CSRFSessionKey); token != "" {
		return token, nil
	}
	token := m.mint(sess.ID)
	sess.Set(CSRFSessionKey, token)
	return token, nil
}

// VerifyToken checks a submitted token against the session copy.
func (m *CSRFManager) VerifyToken(ctx context.Context, sess *Session, token string) error {
	if sess == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	stored := sess.Get(CSRFSessionKey)
	if stored == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(stored), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

// mint derives a fresh token from the session ID and a random nonce.
func (m *CSRFManager) mint(sessionID string) string {
	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)

	mac := hmac.New(sha256.New, m.key)
	_, _ = mac.Write([]byte(sessionID))
	_, _ = mac.Write([]byte{'.'})
	_, _ = mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
