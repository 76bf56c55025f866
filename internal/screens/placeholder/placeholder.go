package placeholder

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

// PlaceholderScreen stands in for practice types that have no question
// groups yet.
type PlaceholderScreen struct {
	kind practice.PracticeType
}

var _ screen.Screen = (*PlaceholderScreen)(nil)
var _ screen.KeyHintProvider = (*PlaceholderScreen)(nil)

// New creates a PlaceholderScreen for kind.
func New(kind practice.PracticeType) *PlaceholderScreen {
	return &PlaceholderScreen{kind: kind}
}

func (p *PlaceholderScreen) Init() tea.Cmd { return nil }

func (p *PlaceholderScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return p, nil }

func (p *PlaceholderScreen) Title() string {
	return p.kind.DisplayName() + " Practice"
}

func (p *PlaceholderScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (p *PlaceholderScreen) View(width, height int) string {
	var available []string
	for _, t := range []practice.PracticeType{practice.Listening, practice.Reading} {
		if len(practice.GroupsFor(t)) > 0 {
			available = append(available, t.DisplayName())
		}
	}

	body := fmt.Sprintf("%s practice is coming soon.", p.kind.DisplayName())
	if len(available) > 0 {
		body += "\n" + theme.Hint.Render(strings.Join(available, " and ")+" practice is ready from the home menu.")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render("╌╌ " + p.Title() + " ╌╌\n\n" + body)
}
