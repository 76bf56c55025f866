package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. After submission it marks the
// correct option and, if different, the chosen one.
type MultiChoice struct {
	Question    string
	Options     []string
	Correct     string
	Selected    int
	Submitted   bool
	ChosenIndex int
}

// NewMultiChoice creates a selector. correct is the option text, or its
// letter label ("A".."D").
func NewMultiChoice(question string, options []string, correct string) MultiChoice {
	return MultiChoice{
		Question:    question,
		Options:     options,
		Correct:     correct,
		ChosenIndex: -1,
	}
}

// OptionLabel returns the letter shown before option i.
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// CorrectIndex resolves Correct to an option index, or -1.
func (m MultiChoice) CorrectIndex() int {
	want := strings.TrimSpace(m.Correct)
	for i, opt := range m.Options {
		if strings.EqualFold(strings.TrimSpace(opt), want) || strings.EqualFold(OptionLabel(i), want) {
			return i
		}
	}
	return -1
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		if len(m.Options) > 0 {
			m.Submitted = true
			m.ChosenIndex = m.Selected
		}
	default:
		// Letter shortcuts submit directly.
		if len(key) == 1 {
			i := int(strings.ToUpper(key)[0] - 'A')
			if i >= 0 && i < len(m.Options) {
				m.Selected = i
				m.Submitted = true
				m.ChosenIndex = i
			}
		}
	}

	return m, nil
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	var b strings.Builder
	if m.Question != "" {
		b.WriteString(theme.Heading.Render(m.Question) + "\n\n")
	}

	correct := m.CorrectIndex()
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, OptionLabel(i), opt)

		var style lipgloss.Style
		switch {
		case m.Submitted && i == correct:
			style = theme.Correct
		case m.Submitted && i == m.ChosenIndex:
			style = theme.Incorrect
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

// IsCorrect returns true if the user chose the correct answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.ChosenIndex >= 0 && m.ChosenIndex == m.CorrectIndex()
}
