package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/auth"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/screens/account"
	"github.com/toeicpractice/toeic/internal/screens/home"
	"github.com/toeicpractice/toeic/internal/screens/welcome"
	"github.com/toeicpractice/toeic/internal/store"
	"github.com/toeicpractice/toeic/internal/ui/layout"
)

// busyMarker follows the header title while the active screen waits on
// the API.
const busyMarker = "⋯"

// Options holds dependencies for the app.
type Options struct {
	API      api.Service
	Sessions *auth.Sessions
	Settings store.SettingsRepo
	Requests store.RequestRepo
	Log      *zap.Logger
	PageSize int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
	user   string
}

// newAppModel creates the root model. The welcome screen comes first until
// the user has continued past it once.
func newAppModel(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	homeFactory := func() screen.Screen {
		return home.New(home.Deps{
			API:      opts.API,
			Sessions: opts.Sessions,
			Requests: opts.Requests,
			Log:      opts.Log,
			PageSize: opts.PageSize,
		})
	}

	var initial screen.Screen
	if showWelcome(opts.Settings) {
		initial = welcome.New(opts.Settings, opts.Log, homeFactory)
	} else {
		initial = homeFactory()
	}

	m := AppModel{router: router.New(initial)}
	if opts.Sessions != nil {
		if u, ok := opts.Sessions.Current(context.Background()); ok {
			m.user = u.DisplayName()
		}
	}
	return m
}

func showWelcome(settings store.SettingsRepo) bool {
	if settings == nil {
		return false
	}
	v, ok, err := settings.Get(context.Background(), store.KeyFirstLoad)
	if err != nil {
		return false
	}
	return !ok || v != "false"
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case account.SessionChangedMsg:
		m.user = ""
		if msg.User != nil {
			m.user = msg.User.DisplayName()
		}

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// footerHints uses the active screen's hints when it provides them.
func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
		if title != "" && screen.IsBusy(active) {
			title += " " + busyMarker
		}
	}

	header := layout.RenderHeader(title, m.user, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
