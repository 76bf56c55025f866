package account

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toeicpractice/toeic/internal/auth"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/store"
)

func newTestAccount(t *testing.T) (*AccountScreen, *auth.Sessions) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "account.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sessions := auth.NewSessions(st.SettingsRepo(), nil)
	return New(sessions), sessions
}

// load delivers the session lookup that Init schedules.
func load(t *testing.T, s *AccountScreen) {
	t.Helper()
	u, _ := s.sessions.Current(context.Background())
	s.Update(sessionLoadedMsg{User: u})
}

func typeText(s *AccountScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestAccount_SignedOutShowsPrompt(t *testing.T) {
	s, _ := newTestAccount(t)
	load(t, s)

	assert.False(t, s.SignedIn())
	assert.Contains(t, s.View(100, 30), "Sign in")
}

func TestAccount_SignInWithToken(t *testing.T) {
	s, sessions := newTestAccount(t)
	load(t, s)

	typeText(s, "opaque-token")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	changed, ok := msg.(SessionChangedMsg)
	require.True(t, ok, "expected SessionChangedMsg, got %T", msg)
	require.NotNil(t, changed.User)
	assert.Equal(t, "opaque-token", changed.User.Token)

	s.Update(msg)
	assert.True(t, s.SignedIn())
	assert.Contains(t, s.View(100, 30), "Signed in as")

	token, ok := sessions.Token(context.Background())
	require.True(t, ok)
	assert.Equal(t, "opaque-token", token)
}

func TestAccount_EmptyTokenShowsError(t *testing.T) {
	s, _ := newTestAccount(t)
	load(t, s)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(100, 30), "enter a token first")
}

func TestAccount_SignOut(t *testing.T) {
	s, sessions := newTestAccount(t)
	require.NoError(t, sessions.Save(context.Background(), auth.User{Email: "learner@example.com", Token: "tok"}))
	load(t, s)
	require.True(t, s.SignedIn())
	assert.Contains(t, s.View(100, 30), "learner@example.com")

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'l', Text: "l"})
	require.NotNil(t, cmd)
	msg := cmd()
	changed, ok := msg.(SessionChangedMsg)
	require.True(t, ok)
	assert.Nil(t, changed.User)

	s.Update(msg)
	assert.False(t, s.SignedIn())
	_, ok = sessions.Current(context.Background())
	assert.False(t, ok)
}

func TestAccount_EscPops(t *testing.T) {
	s, _ := newTestAccount(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok, "esc should pop")
}
