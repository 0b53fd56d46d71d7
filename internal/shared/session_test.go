package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "erashu_admin_session", "test-secret", time.Hour, false)
}

func commitAndReload(t *testing.T, sm *SessionManager, sess *Session) *Session {
	t.Helper()
	ctx := context.Background()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	return loaded
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	sess.SetUser("42", "EDITOR")
	sess.Set("theme", "dark")

	loaded := commitAndReload(t, sm, sess)
	require.Equal(t, "42", loaded.User())
	require.Equal(t, "EDITOR", loaded.RoleTag())
	require.Equal(t, "dark", loaded.Get("theme"))
}

func TestSessionClearUser(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("42", "ADMIN")

	loaded := commitAndReload(t, sm, sess)
	loaded.ClearUser()

	final := commitAndReload(t, sm, loaded)
	require.Empty(t, final.User())
	require.Empty(t, final.RoleTag())
}

func TestSessionDestroyExpiresCookie(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42", "ADMIN")

	loaded := commitAndReload(t, sm, sess)
	sm.Destroy(loaded)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, loaded))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Negative(t, cookies[0].MaxAge)

	// Key is gone: a request with the old cookie gets a fresh session.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: loaded.ID})
	fresh, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Empty(t, fresh.User())
}

func TestFlashMessageIsOneShot(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "error", Message: "Bu bölüme erişim yetkiniz yok."})

	// The flash is queued on the denied request and must survive the
	// redirect so the landing page can show it.
	loaded := commitAndReload(t, sm, sess)
	msg := loaded.PopFlash()
	require.NotNil(t, msg)
	require.Equal(t, "error", msg.Kind)
	require.Nil(t, loaded.PopFlash())

	// The pop drains the store: the request after the landing page sees
	// nothing.
	final := commitAndReload(t, sm, loaded)
	require.Nil(t, final.PopFlash())
}

func TestFlashSurvivesUnrelatedCommit(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "info", Message: "Rol güncellendi."})

	// A request that loads the session but never pops must not drain it.
	loaded := commitAndReload(t, sm, sess)
	untouched := commitAndReload(t, sm, loaded)

	msg := untouched.PopFlash()
	require.NotNil(t, msg)
	require.Equal(t, "Rol güncellendi.", msg.Message)
}

func TestIdentityFromSession(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	_, ok := IdentityFromSession(sess)
	require.False(t, ok, "anonymous session carries no identity")

	sess.SetUser("42", "SUB_ADMIN")
	identity, ok := IdentityFromSession(sess)
	require.True(t, ok)
	require.Equal(t, int64(42), identity.UserID)
	require.Equal(t, "SUB_ADMIN", identity.RoleTag)

	sess.SetUser("not-a-number", "ADMIN")
	_, ok = IdentityFromSession(sess)
	require.False(t, ok, "malformed user id must not yield an identity")
}
