package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

const sessionFile = "session.json"

// AuthGateway is the slice of the remote data gateway the session store
// needs.
type AuthGateway interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error)
	SignOut(ctx context.Context, refreshToken string) error
	UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.Profile, error)
	ChangePassword(ctx context.Context, current, newPassword string) error
}

// SessionStore owns the authenticated identity. It starts in the
// Unknown state (loading, no user) and settles into Authenticated or
// Anonymous after Restore. Session presence gates every team-scoped
// store: sign-out fires the registered reset hooks.
type SessionStore struct {
	mu       sync.Mutex
	gw       AuthGateway
	log      *logger.Logger
	stateDir string

	user         *model.User
	loading      bool
	accessToken  string
	refreshToken string

	resetHooks []func()
}

type persistedSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewSessionStore(gw AuthGateway, stateDir string, log *logger.Logger) *SessionStore {
	return &SessionStore{gw: gw, stateDir: stateDir, log: log, loading: true}
}

// OnReset registers a hook run whenever the session ends. Team-scoped
// stores use this to drop their data.
func (s *SessionStore) OnReset(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetHooks = append(s.resetHooks, fn)
}

// User returns the current user, or nil when Anonymous or Unknown.
func (s *SessionStore) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SessionStore) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// AccessToken is the token source handed to gateways and the realtime
// dialer.
func (s *SessionStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Restore loads the persisted session. A valid access token restores
// the identity without a network round trip (claims are decoded
// unverified; the server re-checks the signature on every request);
// an expired one goes through the refresh flow. Any failure lands in
// Anonymous without error.
func (s *SessionStore) Restore(ctx context.Context) {
	data, err := os.ReadFile(filepath.Join(s.stateDir, sessionFile))
	if err != nil {
		s.toAnonymous()
		return
	}

	var saved persistedSession
	if err := json.Unmarshal(data, &saved); err != nil || saved.RefreshToken == "" {
		s.toAnonymous()
		return
	}

	if user := userFromAccessToken(saved.AccessToken); user != nil {
		s.mu.Lock()
		s.user = user
		s.accessToken = saved.AccessToken
		s.refreshToken = saved.RefreshToken
		s.loading = false
		s.mu.Unlock()
		return
	}

	resp, err := s.gw.Refresh(ctx, saved.RefreshToken)
	if err != nil {
		s.log.Infow("session restore failed, starting anonymous", "error", err)
		s.clearPersisted()
		s.toAnonymous()
		return
	}

	s.adopt(resp)
}

// SignIn surfaces the backend's error text on failure and leaves the
// session Anonymous.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	resp, err := s.gw.SignIn(ctx, email, password)
	if err != nil {
		s.toAnonymous()
		return err
	}
	s.adopt(resp)
	return nil
}

func (s *SessionStore) SignUp(ctx context.Context, req *model.SignUpRequest) error {
	resp, err := s.gw.SignUp(ctx, req)
	if err != nil {
		s.toAnonymous()
		return err
	}
	s.adopt(resp)
	return nil
}

// SignOut always ends the local session, even if the backend call
// fails, and fires the reset hooks.
func (s *SessionStore) SignOut(ctx context.Context) {
	s.mu.Lock()
	refresh := s.refreshToken
	s.mu.Unlock()

	if refresh != "" {
		if err := s.gw.SignOut(ctx, refresh); err != nil {
			s.log.Warnw("sign-out call failed, clearing local session anyway", "error", err)
		}
	}

	s.clearPersisted()
	s.toAnonymous()
}

// UpdateProfile writes through the gateway and, on success, updates the
// local identity. Errors surface to the caller.
func (s *SessionStore) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) error {
	profile, err := s.gw.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		s.user.DisplayName = profile.DisplayName
		s.user.AvatarURL = profile.AvatarURL
	}
	s.mu.Unlock()
	return nil
}

// ChangePassword passes the gateway error through so the caller can
// show the backend's text.
func (s *SessionStore) ChangePassword(ctx context.Context, current, newPassword string) error {
	return s.gw.ChangePassword(ctx, current, newPassword)
}

func (s *SessionStore) adopt(resp *model.AuthResponse) {
	s.mu.Lock()
	s.user = resp.User
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	s.loading = false
	s.mu.Unlock()

	s.persist(resp.AccessToken, resp.RefreshToken)
}

func (s *SessionStore) toAnonymous() {
	s.mu.Lock()
	hadUser := s.user != nil
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.loading = false
	hooks := s.resetHooks
	s.mu.Unlock()

	if hadUser {
		for _, fn := range hooks {
			fn()
		}
	}
}

func (s *SessionStore) persist(accessToken, refreshToken string) {
	if err := os.MkdirAll(s.stateDir, 0o700); err != nil {
		s.log.Warnw("cannot create state dir", "dir", s.stateDir, "error", err)
		return
	}
	data, _ := json.Marshal(persistedSession{AccessToken: accessToken, RefreshToken: refreshToken})
	if err := os.WriteFile(filepath.Join(s.stateDir, sessionFile), data, 0o600); err != nil {
		s.log.Warnw("cannot persist session", "error", err)
	}
}

func (s *SessionStore) clearPersisted() {
	_ = os.Remove(filepath.Join(s.stateDir, sessionFile))
}

// userFromAccessToken decodes identity claims without verifying the
// signature. Returns nil if the token is absent, malformed or within a
// minute of expiry.
func userFromAccessToken(tokenString string) *model.User {
	if tokenString == "" {
		return nil
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || time.Until(exp.Time) < time.Minute {
		return nil
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil
	}

	return &model.User{ID: sub, Email: email, DisplayName: email}
}
