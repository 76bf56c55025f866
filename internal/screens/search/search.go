package search

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/search"
	"github.com/toeicpractice/toeic/internal/ui/components"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

// SearchScreen is a query box over the category tabs and their results.
type SearchScreen struct {
	session   *search.Session
	input     components.TextInput
	submitted bool
}

var _ screen.Screen = (*SearchScreen)(nil)
var _ screen.KeyHintProvider = (*SearchScreen)(nil)

// New creates a SearchScreen over session.
func New(session *search.Session) *SearchScreen {
	return &SearchScreen{
		session: session,
		input:   components.NewTextInput("Search…", false, 100),
	}
}

func (s *SearchScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *SearchScreen) Title() string {
	return "Search"
}

func (s *SearchScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Search"},
		{Key: "Tab", Description: "Category"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SearchScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			s.session.Submit(s.input.Value())
			s.submitted = true
			return s, nil
		case "tab":
			s.session.SetCategory(s.shift(1))
			return s, nil
		case "shift+tab":
			s.session.SetCategory(s.shift(-1))
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// shift returns the category delta tabs away from the current one.
func (s *SearchScreen) shift(delta int) search.Category {
	n := len(search.Categories)
	i := slices.Index(search.Categories, s.session.Category())
	return search.Categories[((i+delta)%n+n)%n]
}

func (s *SearchScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(s.input.View() + "\n\n")

	tabs := make([]string, 0, len(search.Categories))
	for _, c := range search.Categories {
		if c == s.session.Category() {
			tabs = append(tabs, theme.TabActive.Render(c.Label()))
		} else {
			tabs = append(tabs, theme.Tab.Render(c.Label()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	results := s.session.Results()
	switch {
	case !s.submitted:
		b.WriteString(theme.Hint.Render("Type a query and press Enter."))
	case len(results) == 0:
		b.WriteString(theme.Hint.Render(fmt.Sprintf("No %s match %q.",
			strings.ToLower(s.session.Category().Label()), s.session.Query())))
	default:
		for _, it := range results {
			b.WriteString("  • " + layout.Truncate(it.Title, max(width-8, 10)) + "\n")
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
