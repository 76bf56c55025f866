package testlist

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/router"
	"github.com/toeicpractice/toeic/internal/screen"
	"github.com/toeicpractice/toeic/internal/ui/components"
	"github.com/toeicpractice/toeic/internal/ui/layout"
	"github.com/toeicpractice/toeic/internal/ui/theme"
)

type submittedMsg struct {
	Result *practice.Result
	Err    error
}

// AttemptScreen walks through every question of a test and submits the
// answers for grading. Answers are only checked by the server.
type AttemptScreen struct {
	svc     api.Service
	test    api.Test
	leaves  []practice.Question
	choices []components.MultiChoice
	spent   []time.Duration
	index   int

	now      func() time.Time
	started  time.Time
	entered  time.Time
	sending  bool
	result   *practice.Result
	errMsg   string
	finished bool
}

var _ screen.Screen = (*AttemptScreen)(nil)
var _ screen.KeyHintProvider = (*AttemptScreen)(nil)

// NewAttempt creates an AttemptScreen for a fully loaded test.
func NewAttempt(svc api.Service, test api.Test) *AttemptScreen {
	leaves := answerable(test.Questions)
	choices := make([]components.MultiChoice, len(leaves))
	for i, q := range leaves {
		// The correct answer stays hidden until the server grades.
		choices[i] = components.NewMultiChoice(q.Content, q.Answers, "")
	}
	s := &AttemptScreen{
		svc:     svc,
		test:    test,
		leaves:  leaves,
		choices: choices,
		spent:   make([]time.Duration, len(leaves)),
		now:     time.Now,
	}
	s.started = s.now()
	s.entered = s.started
	return s
}

// answerable flattens groups into their sub-questions. Sub-questions
// without a part inherit the group's.
func answerable(qs []practice.Question) []practice.Question {
	var out []practice.Question
	for _, q := range qs {
		if len(q.SubQuestions) == 0 {
			out = append(out, q)
			continue
		}
		for _, sub := range q.SubQuestions {
			if sub.PartNum == 0 {
				sub.PartNum = q.PartNum
			}
			if len(sub.Resources) == 0 {
				sub.Resources = q.Resources
			}
			out = append(out, sub)
		}
	}
	return out
}

func (s *AttemptScreen) Init() tea.Cmd {
	return nil
}

func (s *AttemptScreen) Title() string {
	return s.test.Name
}

func (s *AttemptScreen) KeyHints() []layout.KeyHint {
	if s.finished {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓/A-D", Description: "Answer"},
		{Key: "Tab", Description: "Next"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "Ctrl+S", Description: "Submit"},
		{Key: "Esc", Description: "Abandon"},
	}
}

func (s *AttemptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		s.sending = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.result = msg.Result
		s.finished = true
		return s, nil

	case tea.KeyPressMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		if s.finished || s.sending || len(s.leaves) == 0 {
			return s, nil
		}
		switch msg.String() {
		case "tab", "right":
			s.move(s.index + 1)
			return s, nil
		case "shift+tab", "left":
			s.move(s.index - 1)
			return s, nil
		case "ctrl+s":
			return s, s.submit()
		}

		var cmd tea.Cmd
		s.choices[s.index], cmd = s.choices[s.index].Update(msg)
		if s.choices[s.index].Submitted && s.index < len(s.leaves)-1 {
			s.move(s.index + 1)
		}
		return s, cmd
	}
	return s, nil
}

func (s *AttemptScreen) move(to int) {
	if to < 0 || to >= len(s.leaves) || to == s.index {
		return
	}
	now := s.now()
	s.spent[s.index] += now.Sub(s.entered)
	s.entered = now
	s.index = to
}

// Request builds the submission from the current answers.
func (s *AttemptScreen) Request() api.SubmitRequest {
	now := s.now()
	spent := slices.Clone(s.spent)
	if len(spent) > 0 {
		spent[s.index] += now.Sub(s.entered)
	}

	req := api.SubmitRequest{
		TotalSeconds: int(now.Sub(s.started).Seconds()),
		TestID:       s.test.ID,
		Parts:        partList(s.leaves),
		Type:         practice.ResultKindFullTest,
	}
	for i, q := range s.leaves {
		c := s.choices[i]
		pair := api.AnswerPair{QuestionID: q.ID, TimeSpent: int(spent[i].Seconds())}
		if c.Submitted && c.ChosenIndex >= 0 && c.ChosenIndex < len(c.Options) {
			pair.UserAnswer = c.Options[c.ChosenIndex]
		}
		req.UserAnswer = append(req.UserAnswer, pair)
	}
	return req
}

func (s *AttemptScreen) submit() tea.Cmd {
	s.sending = true
	s.errMsg = ""
	svc, req := s.svc, s.Request()
	return func() tea.Msg {
		res, err := svc.SubmitTest(context.Background(), req)
		return submittedMsg{Result: res, Err: err}
	}
}

// partList is the comma-separated, ascending list of parts covered.
func partList(qs []practice.Question) string {
	var parts []int
	for _, q := range qs {
		if q.PartNum > 0 && !slices.Contains(parts, q.PartNum) {
			parts = append(parts, q.PartNum)
		}
	}
	slices.Sort(parts)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strconv.Itoa(p)
	}
	return strings.Join(out, ",")
}

// Answered returns how many questions have an answer.
func (s *AttemptScreen) Answered() int {
	n := 0
	for _, c := range s.choices {
		if c.Submitted {
			n++
		}
	}
	return n
}

func (s *AttemptScreen) View(width, height int) string {
	if s.finished && s.result != nil {
		return s.viewResult(width, height)
	}
	if len(s.leaves) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("This test has no questions."))
	}

	inner := max(width-4, 20)
	wrap := lipgloss.NewStyle().Width(inner)
	q := s.leaves[s.index]

	var sections []string
	progress := fmt.Sprintf("Question %d of %d · Part %d · %d answered",
		s.index+1, len(s.leaves), q.PartNum, s.Answered())
	sections = append(sections, theme.Hint.Render(progress))

	for _, r := range q.Resources {
		switch r.Type {
		case practice.ResourceParagraph:
			sections = append(sections, wrap.Render(r.Content))
		case practice.ResourceImage, practice.ResourceAudio:
			sections = append(sections, theme.Hint.Render(fmt.Sprintf("[%s] %s", r.Type, r.Content)))
		}
	}

	c := s.choices[s.index]
	if c.Submitted {
		sections = append(sections, wrap.Render(c.Question))
		for i, opt := range c.Options {
			line := fmt.Sprintf("  %s) %s", components.OptionLabel(i), opt)
			if i == c.ChosenIndex {
				line = theme.Selected.Render(fmt.Sprintf("● %s) %s", components.OptionLabel(i), opt))
			}
			sections = append(sections, line)
		}
	} else {
		sections = append(sections, wrap.Render(c.View()))
	}

	switch {
	case s.sending:
		sections = append(sections, theme.Loading.Render("Submitting…"))
	case s.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).
			Render("Submit failed: "+s.errMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n\n"))
}

func (s *AttemptScreen) viewResult(width, height int) string {
	r := s.result
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Test submitted") + "\n\n")
	fmt.Fprintf(&b, "%s  %d\n", theme.Correct.Render("Correct  "), r.TotalCorrectAnswer)
	fmt.Fprintf(&b, "%s  %d\n", theme.Incorrect.Render("Incorrect"), r.TotalIncorrectAnswer)
	fmt.Fprintf(&b, "%s  %d\n", theme.Hint.Render("Skipped  "), r.TotalSkipAnswer)
	if r.TotalListeningScore > 0 || r.TotalReadingScore > 0 {
		fmt.Fprintf(&b, "\nListening %d · Reading %d\n", r.TotalListeningScore, r.TotalReadingScore)
	}
	d := time.Duration(r.TotalTime) * time.Second
	fmt.Fprintf(&b, "\nTime %d:%02d", int(d.Minutes()), int(d.Seconds())%60)

	card := theme.Card.Width(min(max(width-8, 40), 60)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// Busy reports a submission in flight.
func (a *AttemptScreen) Busy() bool { return a.sending }
