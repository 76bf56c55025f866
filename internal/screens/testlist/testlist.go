// Package testlist lists full and mini tests, shows a test's outline and
// runs an attempt.
package testlist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

type testsLoadedMsg struct {
	Tests []api.Test
	Err   error
}

// TestListScreen lists the tests matching a filter.
type TestListScreen struct {
	svc      api.Service
	title    string
	filter   api.TestFilter
	tests    []api.Test
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*TestListScreen)(nil)
var _ screen.KeyHintProvider = (*TestListScreen)(nil)
var _ screen.Busy = (*TestListScreen)(nil)

// New creates a TestListScreen titled title.
func New(svc api.Service, title string, filter api.TestFilter) *TestListScreen {
	return &TestListScreen{svc: svc, title: title, filter: filter}
}

func (s *TestListScreen) Init() tea.Cmd {
	svc, filter := s.svc, s.filter
	return func() tea.Msg {
		tests, err := svc.ListTests(context.Background(), filter)
		return testsLoadedMsg{Tests: tests, Err: err}
	}
}

func (s *TestListScreen) Title() string {
	return s.title
}

func (s *TestListScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TestListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case testsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.tests = msg.Tests
		if s.selected >= len(s.tests) {
			s.selected = max(len(s.tests)-1, 0)
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
			if s.selected < len(s.tests)-1 {
				s.selected++
			}
		case "r":
			s.loaded = false
			return s, s.Init()
		case "enter":
			if s.selected < len(s.tests) {
				detail := NewDetail(s.svc, s.tests[s.selected])
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
			}
		}
	}
	return s, nil
}

func (s *TestListScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nCould not load tests: %s\n\nPress r to retry.", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading tests...")
	}
	if len(s.tests) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No tests available.")
	}

	var lines []string
	lines = append(lines, "")
	focus := 0
	for i, t := range s.tests {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "› "
			style = theme.Selected
			focus = len(lines)
		}
		name := layout.Truncate(t.Name, max(width-40, 16))
		line := style.Render(prefix+name) + "  " + theme.Hint.Render(testMeta(t))
		lines = append(lines, line)
	}
	return strings.Join(window(lines, focus, height), "\n")
}

// testMeta is the one-line summary after a test's name.
func testMeta(t api.Test) string {
	var parts []string
	if t.Category != nil && t.Category.Format != "" {
		parts = append(parts, fmt.Sprintf("%s %d", t.Category.Format, t.Category.Year))
	}
	if t.TotalQuestion > 0 {
		parts = append(parts, fmt.Sprintf("%d questions", t.TotalQuestion))
	}
	if t.LimitTime > 0 {
		parts = append(parts, fmt.Sprintf("%d min", t.LimitTime))
	}
	parts = append(parts, fmt.Sprintf("%d attempts", t.TotalUserAttemp))
	return strings.Join(parts, " · ")
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

func (s *TestListScreen) Busy() bool { return !s.loaded }
