package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erashu/erashu-admin/internal/shared"
)

type stubRepo struct {
	users    map[string]*User
	sessions map[string]int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]*User), sessions: make(map[string]int64)}
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func seedUser(t *testing.T, repo *stubRepo, email, password, roleTag string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{
		ID:           int64(len(repo.users) + 1),
		Email:        email,
		Name:         "Test Kullanıcısı",
		PasswordHash: string(hash),
		RoleTag:      roleTag,
		IsActive:     active,
	}
	repo.users[email] = user
	return user
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "admin@erashu.local", "gizli-parola", "ADMIN", true)
	svc := NewService(repo)

	user, err := svc.Authenticate(context.Background(), "admin@erashu.local", "gizli-parola")
	require.NoError(t, err)
	require.Equal(t, "ADMIN", user.RoleTag)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "admin@erashu.local", "gizli-parola", "ADMIN", true)
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "admin@erashu.local", "yanlış")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.Authenticate(context.Background(), "kimse@erashu.local", "gizli-parola")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "eski@erashu.local", "gizli-parola", "EDITOR", false)
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "eski@erashu.local", "gizli-parola")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.RegisterSession(ctx, "sess-1", 1, time.Now().Add(time.Hour), "10.0.0.1", "test-agent"))
	require.Contains(t, repo.sessions, "sess-1")

	require.NoError(t, svc.RemoveSession(ctx, "sess-1"))
	require.NotContains(t, repo.sessions, "sess-1")
}
