package testlist

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

type testLoadedMsg struct {
	Test *api.Test
	Err  error
}

// DetailScreen shows a test's outline before starting it.
type DetailScreen struct {
	svc     api.Service
	summary api.Test
	test    *api.Test
	errMsg  string
}

var _ screen.Screen = (*DetailScreen)(nil)
var _ screen.KeyHintProvider = (*DetailScreen)(nil)
var _ screen.Busy = (*DetailScreen)(nil)

// NewDetail creates a DetailScreen for the listed test summary. The full
// test is fetched on Init.
func NewDetail(svc api.Service, summary api.Test) *DetailScreen {
	return &DetailScreen{svc: svc, summary: summary}
}

func (s *DetailScreen) Init() tea.Cmd {
	svc, id := s.svc, s.summary.ID
	return func() tea.Msg {
		t, err := svc.FullTest(context.Background(), id)
		return testLoadedMsg{Test: t, Err: err}
	}
}

func (s *DetailScreen) Title() string {
	return s.summary.Name
}

func (s *DetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case testLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.test = msg.Test
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			if s.test == nil || len(s.test.Questions) == 0 {
				return s, nil
			}
			attempt := NewAttempt(s.svc, *s.test)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: attempt} }
		}
	}
	return s, nil
}

func (s *DetailScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render(s.summary.Name) + "\n")
	b.WriteString(theme.Hint.Render(testMeta(s.summary)) + "\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("Could not load test: " + s.errMsg))
	case s.test == nil:
		b.WriteString(theme.Loading.Render("Loading questions…"))
	case len(s.test.Questions) == 0:
		b.WriteString(theme.Hint.Render("This test has no questions yet."))
	default:
		counts := questionsByPart(s.test.Questions)
		parts := make([]int, 0, len(counts))
		for p := range counts {
			parts = append(parts, p)
		}
		slices.Sort(parts)
		for _, p := range parts {
			label := fmt.Sprintf("Part %d", p)
			if skill := practice.SkillForPart(p); skill != "" {
				label += " · " + skill.DisplayName()
			}
			b.WriteString(fmt.Sprintf("%-24s %3d questions\n", label, counts[p]))
		}
		b.WriteString("\n" + theme.Hint.Render("Press Enter to start."))
	}

	card := theme.Card.Width(min(max(width-8, 40), 80)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// questionsByPart counts answerable questions per part. Groups count
// their sub-questions.
func questionsByPart(qs []practice.Question) map[int]int {
	counts := make(map[int]int)
	for _, q := range qs {
		if n := len(q.SubQuestions); n > 0 {
			counts[q.PartNum] += n
			continue
		}
		counts[q.PartNum]++
	}
	return counts
}

func (d *DetailScreen) Busy() bool { return d.test == nil && d.errMsg == "" }
