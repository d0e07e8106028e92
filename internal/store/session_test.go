package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Websitedemo13/s17-trading-go/internal/backend"
	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

type fakeAuthGateway struct {
	signInResp  *model.AuthResponse
	signInErr   error
	refreshResp *model.AuthResponse
	refreshErr  error

	updateProfileErr  error
	changePasswordErr error

	refreshCalls int
	signOutCalls int
}

func (g *fakeAuthGateway) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.AuthResponse, error) {
	return g.signInResp, g.signInErr
}

func (g *fakeAuthGateway) SignIn(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	return g.signInResp, g.signInErr
}

func (g *fakeAuthGateway) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	g.refreshCalls++
	return g.refreshResp, g.refreshErr
}

func (g *fakeAuthGateway) SignOut(ctx context.Context, refreshToken string) error {
	g.signOutCalls++
	return nil
}

func (g *fakeAuthGateway) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.Profile, error) {
	if g.updateProfileErr != nil {
		return nil, g.updateProfileErr
	}
	p := &model.Profile{ID: "u1", Email: "alice@example.com", DisplayName: "Alice"}
	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		p.AvatarURL = req.AvatarURL
	}
	return p, nil
}

func (g *fakeAuthGateway) ChangePassword(ctx context.Context, current, newPassword string) error {
	return g.changePasswordErr
}

func testAccessToken(t *testing.T, userID, email string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func authResp(t *testing.T, ttl time.Duration) *model.AuthResponse {
	t.Helper()
	return &model.AuthResponse{
		AccessToken:  testAccessToken(t, "u1", "alice@example.com", ttl),
		RefreshToken: "refresh-1",
		User:         &model.User{ID: "u1", Email: "alice@example.com", DisplayName: "Alice"},
	}
}

func TestSessionStoreStartsUnknown(t *testing.T) {
	s := NewSessionStore(&fakeAuthGateway{}, t.TempDir(), logger.Nop())
	require.True(t, s.Loading())
	require.Nil(t, s.User())
	require.False(t, s.Authenticated())
}

func TestSessionStoreRestoreWithoutFileIsAnonymous(t *testing.T) {
	s := NewSessionStore(&fakeAuthGateway{}, t.TempDir(), logger.Nop())
	s.Restore(context.Background())

	require.False(t, s.Loading())
	require.False(t, s.Authenticated())
}

func TestSessionStoreFailedSignInStaysAnonymous(t *testing.T) {
	gw := &fakeAuthGateway{signInErr: &backend.APIError{Status: 400, Message: "Invalid login credentials"}}
	s := NewSessionStore(gw, t.TempDir(), logger.Nop())

	err := s.SignIn(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, "Invalid login credentials", err.Error(), "backend error text must surface verbatim")
	require.False(t, s.Authenticated())
	require.Empty(t, s.AccessToken())
}

func TestSessionStoreSignInPersistsAndRestores(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeAuthGateway{signInResp: authResp(t, time.Hour)}

	s := NewSessionStore(gw, dir, logger.Nop())
	require.NoError(t, s.SignIn(context.Background(), "alice@example.com", "secret"))
	require.True(t, s.Authenticated())
	require.Equal(t, "u1", s.User().ID)
	require.NotEmpty(t, s.AccessToken())

	// A fresh store restores from the persisted file without a refresh call.
	restored := NewSessionStore(gw, dir, logger.Nop())
	restored.Restore(context.Background())
	require.True(t, restored.Authenticated())
	require.Equal(t, "u1", restored.User().ID)
	require.Zero(t, gw.refreshCalls)
}

func TestSessionStoreRestoreRefreshesExpiredToken(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeAuthGateway{
		signInResp:  authResp(t, -time.Hour),
		refreshResp: authResp(t, time.Hour),
	}

	first := NewSessionStore(gw, dir, logger.Nop())
	require.NoError(t, first.SignIn(context.Background(), "alice@example.com", "secret"))

	restored := NewSessionStore(gw, dir, logger.Nop())
	restored.Restore(context.Background())
	require.Equal(t, 1, gw.refreshCalls)
	require.True(t, restored.Authenticated())
}

func TestSessionStoreRestoreFailedRefreshGoesAnonymous(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeAuthGateway{
		signInResp: authResp(t, -time.Hour),
		refreshErr: &backend.APIError{Status: 401, Message: "Invalid refresh token"},
	}

	first := NewSessionStore(gw, dir, logger.Nop())
	require.NoError(t, first.SignIn(context.Background(), "alice@example.com", "secret"))

	restored := NewSessionStore(gw, dir, logger.Nop())
	restored.Restore(context.Background())
	require.False(t, restored.Authenticated())
	require.False(t, restored.Loading())

	_, err := os.Stat(filepath.Join(dir, sessionFile))
	require.True(t, os.IsNotExist(err), "stale session file must be removed")
}

func TestSessionStoreUpdateProfile(t *testing.T) {
	gw := &fakeAuthGateway{signInResp: authResp(t, time.Hour)}
	s := NewSessionStore(gw, t.TempDir(), logger.Nop())
	require.NoError(t, s.SignIn(context.Background(), "alice@example.com", "secret"))

	name := "Alice B."
	require.NoError(t, s.UpdateProfile(context.Background(), &model.UpdateProfileRequest{DisplayName: &name}))
	require.Equal(t, "Alice B.", s.User().DisplayName)

	gw.updateProfileErr = &backend.APIError{Status: 400, Message: "display name cannot be empty"}
	empty := ""
	err := s.UpdateProfile(context.Background(), &model.UpdateProfileRequest{DisplayName: &empty})
	require.Error(t, err)
	require.Equal(t, "Alice B.", s.User().DisplayName, "failed write keeps the local identity")
}

func TestSessionStoreSignOutFiresResetHooks(t *testing.T) {
	dir := t.TempDir()
	gw := &fakeAuthGateway{signInResp: authResp(t, time.Hour)}
	s := NewSessionStore(gw, dir, logger.Nop())

	resets := 0
	s.OnReset(func() { resets++ })

	require.NoError(t, s.SignIn(context.Background(), "alice@example.com", "secret"))
	s.SignOut(context.Background())

	require.False(t, s.Authenticated())
	require.Empty(t, s.AccessToken())
	require.Equal(t, 1, gw.signOutCalls)
	require.Equal(t, 1, resets)

	// Signing out while already anonymous does not fire the hooks again.
	s.SignOut(context.Background())
	require.Equal(t, 1, resets)
}
