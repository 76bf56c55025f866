package welcome

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/store"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

const headphonesArt = `   ╭─────────╮
  ╭╯         ╰╮
  │           │
 ╭┴╮         ╭┴╮
 │▓│         │▓│
 ╰─╯         ╰─╯`

var sparkleFrames = []string{"♪", "♫"}

type tickMsg time.Time

// WelcomeScreen is the onboarding splash. Continuing stores the
// onboarding flag so it is shown only once.
type WelcomeScreen struct {
	settings     store.SettingsRepo
	log          *zap.Logger
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with the screen produced
// by homeFactory. settings may be nil.
func New(settings store.SettingsRepo, log *zap.Logger, homeFactory func() screen.Screen) *WelcomeScreen {
	if log == nil {
		log = zap.NewNop()
	}
	return &WelcomeScreen{
		settings:    settings,
		log:         log,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	settings, log := w.settings, w.log
	return func() tea.Msg {
		if settings != nil {
			if err := settings.Set(context.Background(), store.KeyFirstLoad, "false"); err != nil {
				log.Warn("save onboarding flag failed", zap.Error(err))
			}
		}
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	art := lipgloss.NewStyle().Foreground(theme.Primary).Render(headphonesArt)

	if w.elapsed >= phase1End {
		sparkle := sparkleFrames[w.tickCount%len(sparkleFrames)]
		s1 := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)
		s2 := lipgloss.NewStyle().Foreground(theme.Success).Render(sparkle)

		lines := strings.Split(art, "\n")
		if len(lines) > 1 {
			lines[1] = s1 + "  " + lines[1] + "  " + s2
		}
		if len(lines) > 4 {
			lines[4] = s2 + "  " + lines[4] + "  " + s1
		}
		art = strings.Join(lines, "\n")
	}
	sections = append(sections, art)

	if w.elapsed >= phase2End {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
				Render("Prepare for the TOEIC with TOEIC Practice"),
			lipgloss.NewStyle().Foreground(theme.TextDim).
				Render("Explore lessons and practice tests right from your terminal"),
			"",
			theme.ButtonActive.Render("▸ Get started"),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("press any key to continue"),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
