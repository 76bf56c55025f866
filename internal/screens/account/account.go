// Package account is the sign-in drawer: it shows who is signed in and
// takes an access token to sign in.
package account

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/auth"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/ui/components"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

// SessionChangedMsg is emitted after a sign-in or sign-out. User is nil
// when signed out.
type SessionChangedMsg struct {
	User *auth.User
}

type sessionLoadedMsg struct {
	User *auth.User
}

type sessionFailedMsg struct {
	Err error
}

// AccountScreen shows the current user, or a token prompt when signed out.
type AccountScreen struct {
	sessions *auth.Sessions
	user     *auth.User
	loaded   bool
	input    components.TextInput
	status   string
}

var _ screen.Screen = (*AccountScreen)(nil)
var _ screen.KeyHintProvider = (*AccountScreen)(nil)

// New creates an AccountScreen.
func New(sessions *auth.Sessions) *AccountScreen {
	return &AccountScreen{
		sessions: sessions,
		input:    components.NewTextInput("paste your access token", true, 4096),
	}
}

func (s *AccountScreen) Init() tea.Cmd {
	sessions := s.sessions
	load := func() tea.Msg {
		u, _ := sessions.Current(context.Background())
		return sessionLoadedMsg{User: u}
	}
	return tea.Batch(load, s.input.Init())
}

func (s *AccountScreen) Title() string {
	return "Account"
}

func (s *AccountScreen) KeyHints() []layout.KeyHint {
	if s.user != nil {
		return []layout.KeyHint{
			{Key: "l", Description: "Sign out"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Sign in"},
		{Key: "Esc", Description: "Back"},
	}
}

// SignedIn reports whether a user is shown.
func (s *AccountScreen) SignedIn() bool {
	return s.user != nil
}

func (s *AccountScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		s.user = msg.User
		s.loaded = true
		return s, nil

	case SessionChangedMsg:
		s.user = msg.User
		s.loaded = true
		s.input.Reset()
		if msg.User != nil {
			s.status = "Signed in as " + msg.User.DisplayName() + "."
		} else {
			s.status = "Signed out."
		}
		return s, nil

	case sessionFailedMsg:
		s.input.SetError(msg.Err.Error())
		return s, nil

	case tea.KeyPressMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		if !s.loaded {
			return s, nil
		}
		if s.user != nil {
			if msg.String() == "l" {
				return s, s.signOut()
			}
			return s, nil
		}
		if msg.String() == "enter" {
			return s, s.signIn(s.input.Value())
		}
	}

	if s.user == nil {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *AccountScreen) signIn(token string) tea.Cmd {
	if token == "" {
		s.input.SetError("enter a token first")
		return nil
	}
	sessions := s.sessions
	return func() tea.Msg {
		u, err := auth.UserFromToken(token, auth.User{})
		if err != nil {
			return sessionFailedMsg{Err: err}
		}
		if err := sessions.Save(context.Background(), u); err != nil {
			return sessionFailedMsg{Err: err}
		}
		return SessionChangedMsg{User: &u}
	}
}

func (s *AccountScreen) signOut() tea.Cmd {
	sessions := s.sessions
	return func() tea.Msg {
		if err := sessions.Clear(context.Background()); err != nil {
			return sessionFailedMsg{Err: err}
		}
		return SessionChangedMsg{}
	}
}

func (s *AccountScreen) View(width, height int) string {
	var b strings.Builder

	switch {
	case !s.loaded:
		b.WriteString(theme.Loading.Render("Loading account…"))
	case s.user != nil:
		b.WriteString(theme.Heading.Render("Hello, "+s.user.DisplayName()) + "\n\n")
		for _, row := range [][2]string{
			{"Email", s.user.Email},
			{"User id", s.user.ID},
			{"Role", s.user.Role},
		} {
			if row[1] == "" {
				continue
			}
			b.WriteString(fmt.Sprintf("%s  %s\n", theme.Hint.Render(fmt.Sprintf("%-8s", row[0])), row[1]))
		}
		b.WriteString("\n" + theme.Hint.Render("Press l to sign out."))
	default:
		b.WriteString(theme.Heading.Render("Sign in") + "\n\n")
		b.WriteString(theme.Hint.Render("Paste the access token from the TOEIC Practice website.") + "\n\n")
		b.WriteString(s.input.View())
	}

	if s.status != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Success).Render(s.status))
	}

	card := theme.Card.Width(min(max(width-8, 40), 72)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
