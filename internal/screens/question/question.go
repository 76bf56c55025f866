// Package question renders a single practice question and lets the user
// try it.
package question

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/ui/components"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

// QuestionScreen shows a question, its resources and answer choices. Group
// questions step through their sub-questions.
type QuestionScreen struct {
	q        practice.Question
	number   int
	answered bool
	leaves   []practice.Question
	choices  []components.MultiChoice
	index    int
}

var _ screen.Screen = (*QuestionScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionScreen)(nil)

// New creates a QuestionScreen. number is the position shown in the list;
// answered marks a question the user already submitted before.
func New(q practice.Question, number int, answered bool) *QuestionScreen {
	leaves := q.SubQuestions
	if len(leaves) == 0 {
		leaves = []practice.Question{q}
	}
	choices := make([]components.MultiChoice, len(leaves))
	for i, leaf := range leaves {
		choices[i] = components.NewMultiChoice(leaf.Content, leaf.Answers, leaf.CorrectAnswer)
	}
	return &QuestionScreen{
		q:        q,
		number:   number,
		answered: answered,
		leaves:   leaves,
		choices:  choices,
	}
}

func (s *QuestionScreen) Init() tea.Cmd {
	return nil
}

func (s *QuestionScreen) Title() string {
	return fmt.Sprintf("Question %d", s.number)
}

func (s *QuestionScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter/A-D", Description: "Answer"},
	}
	if len(s.leaves) > 1 {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Next question"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *QuestionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "tab", "right":
		if s.index < len(s.leaves)-1 {
			s.index++
		}
		return s, nil
	case "shift+tab", "left":
		if s.index > 0 {
			s.index--
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.choices[s.index], cmd = s.choices[s.index].Update(msg)
	return s, cmd
}

// Current returns the sub-question being shown and its choice state.
func (s *QuestionScreen) Current() (practice.Question, components.MultiChoice) {
	return s.leaves[s.index], s.choices[s.index]
}

func (s *QuestionScreen) View(width, height int) string {
	inner := max(width-4, 20)
	wrap := lipgloss.NewStyle().Width(inner)

	var sections []string

	meta := fmt.Sprintf("Part %d · %s", s.q.PartNum, s.q.Difficulty)
	if s.answered {
		meta += "  " + theme.Correct.Render("✓ answered before")
	}
	sections = append(sections, theme.Hint.Render(meta))

	if res := renderResources(s.q.Resources, inner); res != "" {
		sections = append(sections, res)
	}
	if len(s.q.SubQuestions) > 0 && strings.TrimSpace(s.q.Content) != "" {
		sections = append(sections, wrap.Render(s.q.Content))
	}

	leaf, choice := s.Current()
	if len(s.leaves) > 1 {
		sections = append(sections, theme.Heading.Render(fmt.Sprintf("Question %d of %d", s.index+1, len(s.leaves))))
		if res := renderResources(leaf.Resources, inner); res != "" {
			sections = append(sections, res)
		}
	}

	if len(choice.Options) == 0 {
		sections = append(sections, wrap.Render(leaf.Content), theme.Hint.Render("No answer choices."))
	} else {
		sections = append(sections, wrap.Render(choice.View()))
	}

	if choice.Submitted {
		sections = append(sections, renderVerdict(choice))
		if text := firstNonEmpty(leaf.Explanation, s.q.Explanation); text != "" {
			sections = append(sections, theme.Heading.Render("Explanation"), wrap.Render(text))
		}
		if text := firstNonEmpty(leaf.Transcript, s.q.Transcript); text != "" {
			sections = append(sections, theme.Heading.Render("Transcript"), wrap.Render(text))
		}
		if topics := topicNames(leaf.Topic, s.q.Topic); topics != "" {
			sections = append(sections, theme.Hint.Render("Topics: "+topics))
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n\n"))
}

func renderVerdict(c components.MultiChoice) string {
	if c.IsCorrect() {
		return theme.Correct.Render("✓ Correct")
	}
	idx := c.CorrectIndex()
	if idx < 0 {
		return theme.Incorrect.Render("✗ Incorrect")
	}
	return theme.Incorrect.Render(fmt.Sprintf("✗ Incorrect. The answer is %s) %s",
		components.OptionLabel(idx), c.Options[idx]))
}

func renderResources(resources []practice.Resource, width int) string {
	var parts []string
	for _, r := range resources {
		switch r.Type {
		case practice.ResourceParagraph:
			parts = append(parts, lipgloss.NewStyle().Width(width).Render(r.Content))
		case practice.ResourceImage:
			parts = append(parts, theme.Hint.Render("[image] "+r.Content))
		case practice.ResourceAudio:
			parts = append(parts, theme.Hint.Render("[audio] "+r.Content))
		}
	}
	return strings.Join(parts, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func topicNames(lists ...[]practice.Topic) string {
	seen := make(map[string]bool)
	var names []string
	for _, list := range lists {
		for _, t := range list {
			if t.Name != "" && !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		}
	}
	return strings.Join(names, ", ")
}
