package practicelist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/screens/question"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

type pageLoadedMsg struct {
	GroupID string
	Err     error
}

type answeredLoadedMsg struct {
	Err error
}

// row is one selectable line: a group header (item < 0) or a question of
// the open group.
type row struct {
	group string
	item  int
}

// PracticeListScreen shows the collapsible TOEIC parts of one practice type
// and pages through their questions.
type PracticeListScreen struct {
	browser *practice.Browser
	ptype   practice.PracticeType
	cursor  int
}

var _ screen.Screen = (*PracticeListScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeListScreen)(nil)
var _ screen.Busy = (*PracticeListScreen)(nil)

// New creates a list for t backed by browser. The browser is initialized
// for t immediately.
func New(browser *practice.Browser, t practice.PracticeType) *PracticeListScreen {
	browser.Initialize(t)
	return &PracticeListScreen{browser: browser, ptype: t}
}

func (s *PracticeListScreen) Title() string {
	return s.ptype.DisplayName() + " Practice"
}

func (s *PracticeListScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "←→", Description: "Page"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PracticeListScreen) Init() tea.Cmd {
	return s.refreshAnswered()
}

func (s *PracticeListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case router.FocusMsg:
		s.browser.Close()
		s.clampCursor()
		return s, s.refreshAnswered()

	case pageLoadedMsg, answeredLoadedMsg:
		// Failures are logged by the browser; the list just redraws.
		s.clampCursor()
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.rows())-1 {
				s.cursor++
			}
		case "enter", "space":
			return s, s.activate()
		case "right", "n", "l":
			if open := s.browser.OpenGroup(); open != "" {
				return s, s.fetch(s.browser.Next(open))
			}
		case "left", "p", "h":
			if open := s.browser.OpenGroup(); open != "" {
				return s, s.fetch(s.browser.Previous(open))
			}
		case "r":
			return s, s.refreshAnswered()
		}
	}
	return s, nil
}

// activate toggles the group under the cursor, or opens the question under
// the cursor.
func (s *PracticeListScreen) activate() tea.Cmd {
	rows := s.rows()
	if s.cursor < 0 || s.cursor >= len(rows) {
		return nil
	}
	r := rows[s.cursor]

	if r.item < 0 {
		cmd := s.fetch(s.browser.Toggle(r.group))
		s.cursorToGroup(r.group)
		return cmd
	}

	g, ok := s.browser.Group(r.group)
	if !ok || r.item >= len(g.Items) {
		return nil
	}
	q := g.Items[r.item]
	detail := question.New(q, g.ItemNumber(r.item), s.browser.IsAnswered(q))
	return func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
}

func (s *PracticeListScreen) fetch(req *practice.PageRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	b := s.browser
	return func() tea.Msg {
		err := b.Fetch(context.Background(), req)
		return pageLoadedMsg{GroupID: req.GroupID, Err: err}
	}
}

func (s *PracticeListScreen) refreshAnswered() tea.Cmd {
	b := s.browser
	return func() tea.Msg {
		return answeredLoadedMsg{Err: b.RefreshAnswered(context.Background())}
	}
}

func (s *PracticeListScreen) rows() []row {
	var rows []row
	for _, g := range s.browser.Groups() {
		rows = append(rows, row{group: g.ID, item: -1})
		if g.Open {
			for i := range g.Items {
				rows = append(rows, row{group: g.ID, item: i})
			}
		}
	}
	return rows
}

func (s *PracticeListScreen) cursorToGroup(id string) {
	for i, r := range s.rows() {
		if r.group == id && r.item < 0 {
			s.cursor = i
			return
		}
	}
}

func (s *PracticeListScreen) clampCursor() {
	n := len(s.rows())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *PracticeListScreen) View(width, height int) string {
	groups := s.browser.Groups()
	if len(groups) == 0 {
		return lipgloss.NewStyle().
			Width(width).Height(height).Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).Italic(true).
			Render(fmt.Sprintf("No practice parts for %s yet.", s.ptype.DisplayName()))
	}

	var lines []string
	cursorLine := 0

	summary := fmt.Sprintf("%d answered", s.browser.AnsweredCount())
	if s.browser.AnsweredLoading() {
		summary += theme.Loading.Render("  syncing…")
	}
	lines = append(lines, "  "+theme.Hint.Render(summary), "")

	rowIndex := 0
	inner := max(width-4, 20)
	for _, g := range groups {
		if rowIndex == s.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, s.renderHeader(g, rowIndex == s.cursor))
		rowIndex++

		if !g.Open {
			continue
		}
		if len(g.Items) == 0 {
			msg := "No questions."
			if g.Loading {
				msg = "Loading…"
			}
			lines = append(lines, "      "+theme.Hint.Render(msg))
		}
		for i, q := range g.Items {
			if rowIndex == s.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, s.renderItem(g, i, q, rowIndex == s.cursor, inner))
			rowIndex++
		}
		lines = append(lines, renderPager(g))
	}

	return strings.Join(window(lines, cursorLine, height), "\n")
}

func (s *PracticeListScreen) renderHeader(g practice.GroupView, selected bool) string {
	arrow := "▸"
	if g.Open {
		arrow = "▾"
	}
	prefix := "  "
	style := theme.Unselected
	if selected {
		prefix = "› "
		style = theme.Selected
	}
	line := style.Render(prefix + arrow + " " + g.Title)
	if g.Open {
		line += "  " + theme.Hint.Render(fmt.Sprintf("page %d", g.Page))
	}
	if g.Loading {
		line += "  " + theme.Loading.Render("loading…")
	}
	return line
}

func (s *PracticeListScreen) renderItem(g practice.GroupView, i int, q practice.Question, selected bool, width int) string {
	mark := "  "
	if s.browser.IsAnswered(q) {
		mark = theme.Correct.Render("✓ ")
	}

	label := fmt.Sprintf("%d. %s", g.ItemNumber(i), layout.Truncate(ItemLabel(q), max(width-20, 10)))
	difficulty := theme.Hint.Render("[" + q.Difficulty.String() + "]")

	style := theme.Unselected
	prefix := "    "
	if selected {
		style = theme.Selected
		prefix = "  › "
	}
	return prefix + mark + style.Render(label) + " " + difficulty
}

func renderPager(g practice.GroupView) string {
	prev := lipgloss.NewStyle().Foreground(theme.Border).Render("◂ prev")
	if g.HasPrevious {
		prev = lipgloss.NewStyle().Foreground(theme.Text).Render("◂ prev")
	}
	next := lipgloss.NewStyle().Foreground(theme.Border).Render("next ▸")
	if g.HasNext {
		next = lipgloss.NewStyle().Foreground(theme.Text).Render("next ▸")
	}
	return "      " + prev + "   " + next
}

// ItemLabel is the one-line summary of a question: its text, else its
// first paragraph, else its kind.
func ItemLabel(q practice.Question) string {
	text := strings.Join(strings.Fields(q.Content), " ")
	if text == "" {
		for _, r := range q.Resources {
			if r.Type == practice.ResourceParagraph {
				text = strings.Join(strings.Fields(r.Content), " ")
				break
			}
		}
	}
	if text == "" {
		switch {
		case len(q.SubQuestions) > 0:
			text = "Question group"
		case hasResource(q, practice.ResourceImage):
			text = "Photograph"
		case hasResource(q, practice.ResourceAudio):
			text = "Audio question"
		default:
			text = fmt.Sprintf("Question %d", q.QuestionNum)
		}
	}
	if n := len(q.SubQuestions); n > 0 {
		text += fmt.Sprintf(" (%d questions)", n)
	}
	return text
}

func hasResource(q practice.Question, t practice.ResourceType) bool {
	for _, r := range q.Resources {
		if r.Type == t {
			return true
		}
	}
	return false
}

// window returns at most height lines of lines, keeping focus visible.
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

// Busy reports an in-flight page or answered-set fetch.
func (s *PracticeListScreen) Busy() bool {
	if s.browser.AnsweredLoading() {
		return true
	}
	for _, g := range s.browser.Groups() {
		if g.Loading {
			return true
		}
	}
	return false
}
