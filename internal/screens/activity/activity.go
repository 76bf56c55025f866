package activity

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/store"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

const recentLimit = 50

type activityLoadedMsg struct {
	Events []store.RequestEvent
	Err    error
}

// ActivityScreen lists recent API requests, newest first.
type ActivityScreen struct {
	repo       store.RequestRepo
	events     []store.RequestEvent
	selected   int
	expanded   map[int64]bool
	failedOnly bool
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*ActivityScreen)(nil)
var _ screen.KeyHintProvider = (*ActivityScreen)(nil)

// New creates a new ActivityScreen.
func New(repo store.RequestRepo) *ActivityScreen {
	return &ActivityScreen{
		repo:     repo,
		expanded: make(map[int64]bool),
	}
}

func (s *ActivityScreen) Init() tea.Cmd {
	repo, failed := s.repo, s.failedOnly
	return func() tea.Msg {
		events, err := repo.Recent(context.Background(), store.QueryOpts{Limit: recentLimit, Failed: failed})
		return activityLoadedMsg{Events: events, Err: err}
	}
}

func (s *ActivityScreen) Title() string {
	return "Activity"
}

func (s *ActivityScreen) KeyHints() []layout.KeyHint {
	filter := "Failed only"
	if s.failedOnly {
		filter = "Show all"
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "f", Description: filter},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ActivityScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case activityLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.events = msg.Events
		}
		s.loaded = true
		if s.selected >= len(s.events) {
			s.selected = max(len(s.events)-1, 0)
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.events) {
				id := s.events[s.selected].ID
				s.expanded[id] = !s.expanded[id]
			}
		case "f":
			s.failedOnly = !s.failedOnly
			s.selected = 0
			return s, s.Init()
		case "r":
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *ActivityScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading activity...")
	}
	if len(s.events) == 0 {
		msg := "No API requests yet."
		if s.failedOnly {
			msg = "No failed requests."
		}
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  " + msg)
	}

	var lines []string
	if s.failedOnly {
		lines = append(lines, "  "+theme.Hint.Render("Showing failed requests only"))
	}
	focus := 0
	for i, e := range s.events {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
			focus = len(lines)
		}

		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		if !e.Success {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}

		line := fmt.Sprintf("%s%s  %-14s", prefix, e.Timestamp.Format("Jan 02 15:04:05"), e.Op)
		if !layout.IsCompactWidth(width) {
			line += fmt.Sprintf(" %-4s %s", e.Method, layout.Truncate(e.Path, 28))
		}
		lines = append(lines, style.Render(line)+"  "+mark+" "+theme.Hint.Render(statusText(e)))

		if s.expanded[e.ID] {
			detail := lipgloss.NewStyle().Foreground(theme.TextDim)
			lines = append(lines, detail.Render("      request id "+e.RequestID))
			if e.ErrorMessage != "" {
				lines = append(lines, lipgloss.NewStyle().Foreground(theme.Error).
					Render("      "+layout.Truncate(e.ErrorMessage, max(width-8, 10))))
			}
		}
	}

	return "\n" + strings.Join(window(lines, focus, height-1), "\n")
}

// statusText is the status code and latency of e. Requests that never got
// a response have no status.
func statusText(e store.RequestEvent) string {
	status := "—"
	if e.Status > 0 {
		status = fmt.Sprintf("%d", e.Status)
	}
	return fmt.Sprintf("%s %dms", status, e.LatencyMs)
}

func window(lines []string, focus, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := max(focus-height/2, 0)
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}
