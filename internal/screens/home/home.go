package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/auth"
	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/screens/account"
	"github.com/toeicpractice/toeic/internal/screens/activity"
	"github.com/toeicpractice/toeic/internal/screens/placeholder"
	"github.com/toeicpractice/toeic/internal/screens/practicelist"
	searchscreen "github.com/toeicpractice/toeic/internal/screens/search"
	statsscreen "github.com/toeicpractice/toeic/internal/screens/stats"
	"github.com/toeicpractice/toeic/internal/screens/testlist"
	"github.com/toeicpractice/toeic/internal/search"
	"github.com/toeicpractice/toeic/internal/store"
	"github.com/toeicpractice/toeic/internal/ui/components"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

// Deps are the services the home menu hands to the screens it opens.
type Deps struct {
	API      api.Service
	Sessions *auth.Sessions
	Requests store.RequestRepo
	Log      *zap.Logger
	PageSize int
}

type userLoadedMsg struct {
	User *auth.User
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps Deps
	menu components.Menu
	user *auth.User
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(deps Deps) *HomeScreen {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.PageSize <= 0 {
		deps.PageSize = practice.DefaultPageSize
	}
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.items())
	return h
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) items() []components.MenuItem {
	d := h.deps
	online := d.API != nil

	return []components.MenuItem{
		{Label: "Listening", Detail: "Parts 1-4", Disabled: !online, Action: func() tea.Cmd {
			return push(practicelist.New(h.browser(), practice.Listening))
		}},
		{Label: "Reading", Detail: "Parts 5-7", Disabled: !online, Action: func() tea.Cmd {
			return push(practicelist.New(h.browser(), practice.Reading))
		}},
		{Label: "Vocabulary", Action: func() tea.Cmd {
			return push(placeholder.New(practice.Vocabulary))
		}},
		{Label: "Grammar", Action: func() tea.Cmd {
			return push(placeholder.New(practice.Grammar))
		}},
		{Label: "Mini Test", Detail: "Short timed sets", Disabled: !online, Action: func() tea.Cmd {
			return push(testlist.New(d.API, "Mini Test", api.TestFilter{Search: "mini"}))
		}},
		{Label: "Full Test", Detail: "Complete exams", Disabled: !online, Action: func() tea.Cmd {
			return push(testlist.New(d.API, "Full Test", api.TestFilter{}))
		}},
		{Label: "Search", Action: func() tea.Cmd {
			return push(searchscreen.New(search.NewSession(search.DefaultCatalog())))
		}},
		{Label: "Statistics", Disabled: !online, Action: func() tea.Cmd {
			return push(statsscreen.New(d.API, h.sessionContext()))
		}},
		{Label: "Activity", Detail: "Recent API requests", Disabled: d.Requests == nil, Action: func() tea.Cmd {
			return push(activity.New(d.Requests))
		}},
		{Label: "Account", Disabled: d.Sessions == nil, Action: func() tea.Cmd {
			return push(account.New(d.Sessions))
		}},
		{Label: "Exit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

// sessionContext returns the sessions as a SessionContext, or nil when
// there are none.
func (h *HomeScreen) sessionContext() practice.SessionContext {
	if h.deps.Sessions == nil {
		return nil
	}
	return h.deps.Sessions
}

// browser builds a fresh practice browser per list so each list starts
// collapsed.
func (h *HomeScreen) browser() *practice.Browser {
	d := h.deps
	return practice.NewBrowser(d.API, d.API, h.sessionContext(),
		practice.WithLogger(d.Log),
		practice.WithPageSize(d.PageSize))
}

func (h *HomeScreen) loadUser() tea.Cmd {
	sessions := h.deps.Sessions
	if sessions == nil {
		return nil
	}
	return func() tea.Msg {
		u, _ := sessions.Current(context.Background())
		return userLoadedMsg{User: u}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadUser()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case userLoadedMsg:
		h.user = msg.User
		return h, nil
	case router.FocusMsg:
		return h, h.loadUser()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// Selected returns the label of the highlighted menu item.
func (h *HomeScreen) Selected() string {
	return h.menu.Items[h.menu.Selected].Label
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Render("TOEIC Practice"))

	greeting := "Welcome! Sign in from Account to track your progress."
	if h.user != nil {
		greeting = "Hello, " + h.user.DisplayName() + "!"
	}
	sections = append(sections, theme.Subtitle.Render(greeting))

	if h.deps.API == nil {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).
			Render("Offline: no API configured."))
	}

	sections = append(sections, theme.Panel.Render(strings.TrimRight(h.menu.View(), "\n")))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
