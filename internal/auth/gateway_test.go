// ABOUTME: Tests for sign-up, sign-in, session restore, and auth-state listeners.
// ABOUTME: Backed by an in-memory badger document store.

package auth

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/tigercub/internal/docstore"
	"github.com/harper/tigercub/internal/models"
)

func newTestGateway(t *testing.T, opts ...Option) (*LocalGateway, *docstore.DB) {
	t.Helper()
	store, err := docstore.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewLocalGateway(store, opts...), store
}

func TestSignUpAndSignIn(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	user, err := g.SignUp(ctx, " Parent@Example.com ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.UID)
	assert.Equal(t, "parent@example.com", user.Email)
	assert.Equal(t, user.UID, g.CurrentUser().UID)
	assert.NotEmpty(t, g.Token())

	g.SignOut()
	assert.Nil(t, g.CurrentUser())
	assert.Empty(t, g.Token())

	again, err := g.SignIn(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.UID, again.UID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	_, err := g.SignUp(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)

	_, err = g.SignUp(ctx, "PARENT@example.com", "another")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInWrongPassword(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	_, err := g.SignUp(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)
	g.SignOut()

	_, err = g.SignIn(ctx, "parent@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = g.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, g.CurrentUser())
}

func TestCredentialValidation(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.SignUp(context.Background(), "not-an-email", "123")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.NotEmpty(t, models.FieldError(err, "email"))
	assert.NotEmpty(t, models.FieldError(err, "password"))
}

func TestRestoreSession(t *testing.T) {
	g, store := newTestGateway(t)
	ctx := context.Background()

	user, err := g.SignUp(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)
	token := g.Token()

	// A fresh gateway over the same store, as in a new CLI process.
	fresh := NewLocalGateway(store)
	restored, err := fresh.Restore(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.UID, restored.UID)
	assert.Equal(t, user.UID, fresh.CurrentUser().UID)

	_, err = fresh.Restore(ctx, token+"tampered")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestRestoreExpiredSession(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	g, _ := newTestGateway(t, WithSessionTTL(time.Hour), WithClock(clock))
	ctx := context.Background()

	_, err := g.SignUp(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)
	token := g.Token()

	now = now.Add(2 * time.Hour)
	_, err = g.Restore(ctx, token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestOnAuthStateChanged(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen []string
	)
	cancel := g.OnAuthStateChanged(func(uid string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, uid)
	})

	user, err := g.SignUp(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)
	g.SignOut()
	g.SignOut()

	cancel()
	cancel()
	_, err = g.SignIn(ctx, "parent@example.com", "secret1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", user.UID, ""}, seen)
}

func TestSessionFile(t *testing.T) {
	f := NewSessionFile(filepath.Join(t.TempDir(), "tigercub", "session.yaml"))

	s, err := f.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, f.Save(&Session{Token: "abc", Email: "parent@example.com", SavedAt: time.Now().UTC()}))
	s, err = f.Load()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "abc", s.Token)

	require.NoError(t, f.Clear())
	require.NoError(t, f.Clear())
	s, err = f.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}
