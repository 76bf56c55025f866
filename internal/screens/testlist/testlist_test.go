package testlist

import (
	"context"
	"net/http"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/api/apitest"
	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/router"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

func newService(t *testing.T, token string) (api.Service, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	client := api.NewClient(api.Config{BaseURL: srv.BaseURL(), Timeout: 5 * time.Second}, staticTokens(token))
	return client, srv
}

func sampleTest() api.Test {
	return api.Test{
		ID:              "t1",
		Name:            "ETS 2024 Mini Test 1",
		TotalQuestion:   3,
		LimitTime:       20,
		TotalUserAttemp: 42,
		Category:        &api.Category{Format: "ETS", Year: 2024},
		Questions: []practice.Question{
			{ID: "q1", PartNum: 1, Content: "Look at the picture.", Answers: []string{"sitting", "standing"}, CorrectAnswer: "standing"},
			{ID: "g1", PartNum: 6, Type: practice.QuestionGroup,
				Resources: []practice.Resource{{Type: practice.ResourceParagraph, Content: "Memo to staff"}},
				SubQuestions: []practice.Question{
					{ID: "s1", Content: "Blank 1", Answers: []string{"will", "was"}, CorrectAnswer: "will"},
					{ID: "s2", Content: "Blank 2", Answers: []string{"on", "at"}, CorrectAnswer: "at"},
				}},
		},
	}
}

func letter(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestTestList_LoadsAndShowsTests(t *testing.T) {
	svc, srv := newService(t, "")
	srv.SetTests([]api.Test{sampleTest(), {ID: "t2", Name: "ETS 2023 Full Test"}})

	s := New(svc, "Full Test", api.TestFilter{})
	assert.Contains(t, s.View(100, 30), "Loading tests")

	s.Update(s.Init()())
	view := s.View(100, 30)
	assert.Contains(t, view, "ETS 2024 Mini Test 1")
	assert.Contains(t, view, "ETS 2023 Full Test")
	assert.Contains(t, view, "20 min")
	assert.Contains(t, view, "42 attempts")

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "999", reqs[0].Query.Get("pageSize"))
}

func TestTestList_FilterIsSent(t *testing.T) {
	svc, srv := newService(t, "")
	srv.SetTests([]api.Test{sampleTest(), {ID: "t2", Name: "ETS 2023 Full Test"}})

	s := New(svc, "Mini Test", api.TestFilter{Search: "mini"})
	s.Update(s.Init()())

	assert.Equal(t, "mini", srv.Requests()[0].Query.Get("search"))
	assert.NotContains(t, s.View(100, 30), "ETS 2023 Full Test")
}

func TestTestList_LoadError(t *testing.T) {
	svc, srv := newService(t, "")
	srv.FailWith("/tests", http.StatusInternalServerError)

	s := New(svc, "Full Test", api.TestFilter{})
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "Could not load tests")

	_, cmd := s.Update(letter('r'))
	assert.NotNil(t, cmd, "r should reload")
}

func TestTestList_EnterOpensDetail(t *testing.T) {
	svc, srv := newService(t, "")
	srv.SetTests([]api.Test{sampleTest()})

	s := New(svc, "Full Test", api.TestFilter{})
	s.Update(s.Init()())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	detail, ok := push.Screen.(*DetailScreen)
	require.True(t, ok)

	detail.Update(detail.Init()())
	view := detail.View(100, 30)
	assert.Contains(t, view, "Part 1 · Listening")
	assert.Contains(t, view, "Part 6 · Reading")
	assert.Contains(t, view, "2 questions")
	assert.Equal(t, "/tests/t1/full-test", srv.Requests()[1].Path)

	_, cmd = detail.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok = cmd().(router.PushScreenMsg)
	require.True(t, ok)
	_, ok = push.Screen.(*AttemptScreen)
	assert.True(t, ok, "enter should start an attempt")
}

func TestDetail_MissingTest(t *testing.T) {
	svc, _ := newService(t, "")
	d := NewDetail(svc, api.Test{ID: "nope", Name: "Gone"})
	d.Update(d.Init()())

	assert.Contains(t, d.View(100, 30), "Could not load test")
	_, cmd := d.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestAnswerableFlattensGroups(t *testing.T) {
	leaves := answerable(sampleTest().Questions)
	require.Len(t, leaves, 3)
	assert.Equal(t, "s1", leaves[1].ID)
	assert.Equal(t, 6, leaves[1].PartNum, "sub-questions inherit the group's part")
	assert.Equal(t, "Memo to staff", leaves[2].Resources[0].Content)
}

func TestAttempt_SubmitsAnswers(t *testing.T) {
	svc, srv := newService(t, "tok")
	srv.SetTests([]api.Test{sampleTest()})

	a := NewAttempt(svc, sampleTest())
	clock := time.Unix(1_700_000_000, 0)
	a.now = func() time.Time { return clock }
	a.started, a.entered = clock, clock

	// q1: B (correct), advances automatically.
	clock = clock.Add(10 * time.Second)
	a.Update(letter('b'))
	assert.Equal(t, 1, a.index)

	// s1: A (correct).
	clock = clock.Add(5 * time.Second)
	a.Update(letter('a'))

	// s2 left unanswered.
	clock = clock.Add(3 * time.Second)
	_, cmd := a.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Contains(t, a.View(100, 30), "Submitting")

	a.Update(cmd())
	require.True(t, a.finished)

	subs := srv.Submissions()
	require.Len(t, subs, 1)
	sub := subs[0]
	assert.Equal(t, "t1", sub.TestID)
	assert.Equal(t, practice.ResultKindFullTest, sub.Type)
	assert.Equal(t, "1,6", sub.Parts)
	assert.Equal(t, 18, sub.TotalSeconds)
	assert.Equal(t, []api.AnswerPair{
		{QuestionID: "q1", UserAnswer: "standing", TimeSpent: 10},
		{QuestionID: "s1", UserAnswer: "will", TimeSpent: 5},
		{QuestionID: "s2", UserAnswer: "", TimeSpent: 3},
	}, sub.UserAnswer)

	view := a.View(100, 30)
	assert.Contains(t, view, "Test submitted")
	assert.Equal(t, 2, a.result.TotalCorrectAnswer)
	assert.Equal(t, 1, a.result.TotalSkipAnswer)
}

func TestAttempt_SubmitWithoutSession(t *testing.T) {
	svc, srv := newService(t, "")
	a := NewAttempt(svc, sampleTest())

	_, cmd := a.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	a.Update(cmd())

	assert.False(t, a.finished)
	assert.Contains(t, a.View(100, 30), "Submit failed")
	assert.Empty(t, srv.Submissions())
}

func TestAttempt_Navigation(t *testing.T) {
	svc, _ := newService(t, "")
	a := NewAttempt(svc, sampleTest())

	a.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, 0, a.index, "cannot move before the first question")

	a.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	a.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	a.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, 2, a.index, "cannot move past the last question")
	assert.Contains(t, a.View(100, 30), "Question 3 of 3")
}
