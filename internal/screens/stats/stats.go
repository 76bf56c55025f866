package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/stats"
	"github.com/toeicpractice/toeic/internal/ui/components"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

const resultsFetchSize = 999

var errSignedOut = errors.New("signed out")

type statsLoadedMsg struct {
	Summary stats.Summary
	Err     error
}

// StatsScreen shows accuracy per skill and the most practiced topics.
type StatsScreen struct {
	results  practice.ResultProvider
	sessions practice.SessionContext
	summary  stats.Summary
	loaded   bool
	err      error
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)
var _ screen.Busy = (*StatsScreen)(nil)

// New creates a StatsScreen. sessions may be nil, which reads as signed
// out.
func New(results practice.ResultProvider, sessions practice.SessionContext) *StatsScreen {
	return &StatsScreen{results: results, sessions: sessions}
}

func (s *StatsScreen) Init() tea.Cmd {
	results, sessions := s.results, s.sessions
	return func() tea.Msg {
		ctx := context.Background()
		if sessions == nil {
			return statsLoadedMsg{Err: errSignedOut}
		}
		if _, ok := sessions.CurrentUserID(ctx); !ok {
			return statsLoadedMsg{Err: errSignedOut}
		}
		rs, err := results.FetchResults(ctx, resultsFetchSize, "")
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{Summary: stats.Summarize(rs)}
	}
}

func (s *StatsScreen) Title() string {
	return "Statistics"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		s.loaded = true
		s.err = msg.Err
		s.summary = msg.Summary
		return s, nil
	case router.FocusMsg:
		return s, s.Init()
	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			s.loaded = false
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case !s.loaded:
		return center.Foreground(theme.TextDim).Render("\n\n  Loading statistics...")
	case errors.Is(s.err, errSignedOut):
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Sign in from Account to see your statistics.")
	case s.err != nil:
		return center.Foreground(theme.Error).Render("\n\nCould not load results: " + s.err.Error())
	case s.summary.Total.Attempts() == 0 && s.summary.Total.Skipped == 0:
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No answers yet. Start practicing!")
	}

	sum := s.summary
	barWidth := min(max(width-8, 40), 90)
	var b strings.Builder

	total := sum.Total
	fmt.Fprintf(&b, "%s  %d results · %d correct · %d incorrect · %d skipped · %.0f%% accuracy\n\n",
		theme.Heading.Render("Overall"), sum.Results, total.Correct, total.Incorrect, total.Skipped,
		total.Accuracy()*100)

	b.WriteString(theme.Heading.Render("Skills") + "\n")
	for _, sk := range sum.Skills {
		fill := theme.Listening
		if sk.Skill == practice.Reading {
			fill = theme.Reading
		}
		b.WriteString(components.Bar{
			Label:      sk.Skill.DisplayName(),
			LabelWidth: 12,
			Value:      sk.Correct,
			Max:        sk.Attempts(),
			Caption:    fmt.Sprintf("%d/%d · %.0f%% of answers", sk.Correct, sk.Attempts(), sum.Share(sk.Skill)*100),
			Color:      fill,
			Width:      barWidth,
		}.View() + "\n")
	}

	if len(sum.Topics) > 0 {
		b.WriteString("\n" + theme.Heading.Render("Top topics") + "\n")
		for _, tp := range sum.Topics {
			b.WriteString(components.Bar{
				Label:      tp.Name,
				LabelWidth: 24,
				Value:      tp.Correct,
				Max:        tp.Attempts(),
				Caption:    fmt.Sprintf("%d/%d", tp.Correct, tp.Attempts()),
				Width:      barWidth,
			}.View() + "\n")
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *StatsScreen) Busy() bool { return !s.loaded }
