package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureTokenIsStablePerSession(t *testing.T) {
	m := NewCSRFManager("test-secret")
	sess := &Session{ID: "sess-1"}
	ctx := context.Background()

	first, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureTokenDiffersAcrossSessions(t *testing.T) {
	m := NewCSRFManager("test-secret")
	ctx := context.Background()

	a, err := m.EnsureToken(ctx, &Session{ID: "sess-a"})
	require.NoError(t, err)
	b, err := m.EnsureToken(ctx, &Session{ID: "sess-b"})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyToken(t *testing.T) {
	m := NewCSRFManager("test-secret")
	sess := &Session{ID: "sess-1"}
	ctx := context.Background()

	token, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, m.VerifyToken(ctx, sess, token))
	require.ErrorIs(t, m.VerifyToken(ctx, sess, "tampered"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, m.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)
	require.ErrorIs(t, m.VerifyToken(ctx, nil, token), ErrCSRFTokenMissing)
	require.ErrorIs(t, m.VerifyToken(ctx, &Session{ID: "sess-2"}, token), ErrCSRFTokenMissing)
}
