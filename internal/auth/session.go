// Package auth keeps the signed-in user in local storage.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/toeicpractice/toeic/internal/store"
)

// ErrEmptyToken is returned when saving a user without a token.
var ErrEmptyToken = errors.New("token cannot be empty")

// User is the saved session.
type User struct {
	ID     string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
	Token  string `json:"token,omitempty"`
}

// DisplayName returns the best human-readable identifier for u.
func (u User) DisplayName() string {
	switch {
	case u.Email != "":
		return u.Email
	case u.ID != "":
		return u.ID
	default:
		return "signed-in user"
	}
}

// Sessions reads and writes the saved user.
type Sessions struct {
	settings store.SettingsRepo
	log      *zap.Logger
	now      func() time.Time
}

// NewSessions creates a Sessions backed by settings.
func NewSessions(settings store.SettingsRepo, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{settings: settings, log: log.Named("auth"), now: time.Now}
}

// Current returns the saved user. A missing, unreadable or expired session
// reports false.
func (s *Sessions) Current(ctx context.Context) (*User, bool) {
	raw, ok, err := s.settings.Get(ctx, store.KeyUserInfo)
	if err != nil {
		s.log.Warn("read session failed", zap.Error(err))
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("decode session failed", zap.Error(err))
		return nil, false
	}
	if u.Token == "" {
		return nil, false
	}

	if claims, err := ParseClaims(u.Token); err == nil && claims.Expired(s.now()) {
		s.log.Info("session expired", zap.Time("expires_at", claims.ExpiresAt))
		return nil, false
	}
	return &u, true
}

// CurrentUserID returns the signed-in user's id, falling back to the email.
func (s *Sessions) CurrentUserID(ctx context.Context) (string, bool) {
	u, ok := s.Current(ctx)
	if !ok {
		return "", false
	}
	if u.ID != "" {
		return u.ID, true
	}
	return u.Email, true
}

// Token returns the bearer token of the current session.
func (s *Sessions) Token(ctx context.Context) (string, bool) {
	u, ok := s.Current(ctx)
	if !ok {
		return "", false
	}
	return u.Token, true
}

// Save stores u as the current session.
func (s *Sessions) Save(ctx context.Context, u User) error {
	if strings.TrimSpace(u.Token) == "" {
		return ErrEmptyToken
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.settings.Set(ctx, store.KeyUserInfo, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear signs the user out.
func (s *Sessions) Clear(ctx context.Context) error {
	if err := s.settings.Delete(ctx, store.KeyUserInfo); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// UserFromToken builds a User from an access token, filling id, email and
// role from its claims when it is a JWT. Explicit values in hint win.
func UserFromToken(token string, hint User) (User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return User{}, ErrEmptyToken
	}

	u := hint
	u.Token = token

	claims, err := ParseClaims(token)
	if err != nil {
		// Opaque tokens are accepted as-is.
		return u, nil
	}
	if claims.Expired(time.Now()) {
		return User{}, fmt.Errorf("token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
	}
	if u.ID == "" {
		u.ID = claims.UserID
	}
	if u.ID == "" {
		u.ID = claims.Subject
	}
	if u.Email == "" {
		u.Email = claims.Email
	}
	if u.Role == "" {
		u.Role = claims.Role
	}
	return u, nil
}
