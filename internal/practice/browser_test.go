package practice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pageCall struct {
	Group    string
	Page     int
	PageSize int
}

// fakeQuestions serves canned pages and records every call.
type fakeQuestions struct {
	mu    sync.Mutex
	pages map[string][][]Question
	err   error
	calls []pageCall
}

func (f *fakeQuestions) FetchPage(_ context.Context, groupID string, page, pageSize int) ([]Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, pageCall{Group: groupID, Page: page, PageSize: pageSize})
	if f.err != nil {
		return nil, f.err
	}
	pages := f.pages[groupID]
	if page-1 >= len(pages) {
		return nil, nil
	}
	return pages[page-1], nil
}

func (f *fakeQuestions) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResults struct {
	results []Result
	err     error
	calls   int
	kinds   []string
	sizes   []int
}

func (f *fakeResults) FetchResults(_ context.Context, pageSize int, kind string) ([]Result, error) {
	f.calls++
	f.kinds = append(f.kinds, kind)
	f.sizes = append(f.sizes, pageSize)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeSession struct {
	userID string
}

func (f fakeSession) CurrentUserID(context.Context) (string, bool) {
	return f.userID, f.userID != ""
}

func questions(prefix string, n int) []Question {
	out := make([]Question, n)
	for i := range out {
		out[i] = Question{ID: fmt.Sprintf("%s-%d", prefix, i+1), Difficulty: Medium}
	}
	return out
}

func newTestBrowser(q *fakeQuestions, r *fakeResults, s SessionContext) *Browser {
	b := NewBrowser(q, r, s)
	b.Initialize(Listening)
	return b
}

func TestInitializeFiltersGroupsByType(t *testing.T) {
	tests := []struct {
		name string
		typ  PracticeType
		want []string
	}{
		{"listening", Listening, []string{"1", "2", "3", "4"}},
		{"reading", Reading, []string{"5", "6", "7"}},
		{"vocabulary", Vocabulary, nil},
		{"grammar", Grammar, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBrowser(&fakeQuestions{}, nil, nil)
			b.Initialize(tt.typ)

			var got []string
			for _, g := range b.Groups() {
				got = append(got, g.ID)
				assert.Equal(t, 1, g.Page)
				assert.False(t, g.Open)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("group ids mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, "", b.OpenGroup())
		})
	}
}

func TestInitializeResetsOpenGroup(t *testing.T) {
	q := &fakeQuestions{}
	b := newTestBrowser(q, nil, nil)
	require.NoError(t, b.ToggleGroup(context.Background(), "1"))
	require.Equal(t, "1", b.OpenGroup())

	b.Initialize(Reading)
	assert.Equal(t, "", b.OpenGroup())
}

func TestToggleTwiceClosesWithoutSecondFetch(t *testing.T) {
	for _, id := range []string{"1", "2", "3", "4"} {
		t.Run(id, func(t *testing.T) {
			q := &fakeQuestions{}
			b := newTestBrowser(q, nil, nil)
			ctx := context.Background()

			require.NoError(t, b.ToggleGroup(ctx, id))
			assert.Equal(t, id, b.OpenGroup())
			require.NoError(t, b.ToggleGroup(ctx, id))
			assert.Equal(t, "", b.OpenGroup())
			assert.Equal(t, 1, q.callCount())
		})
	}
}

func TestToggleOpensSingleGroup(t *testing.T) {
	q := &fakeQuestions{}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.ToggleGroup(ctx, "1"))
	require.NoError(t, b.ToggleGroup(ctx, "3"))

	open := 0
	for _, g := range b.Groups() {
		if g.Open {
			open++
			assert.Equal(t, "3", g.ID)
		}
	}
	assert.Equal(t, 1, open)
	assert.Equal(t, 2, q.callCount())
}

func TestToggleUnknownGroupIsNoop(t *testing.T) {
	q := &fakeQuestions{}
	b := newTestBrowser(q, nil, nil)

	assert.Nil(t, b.Toggle("7"))
	assert.Equal(t, "", b.OpenGroup())
	assert.Equal(t, 0, q.callCount())
}

func TestToggleResetsCursorAndLoadsFirstPage(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{
		"1": {questions("a", 5), questions("b", 5)},
	}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.ToggleGroup(ctx, "1"))
	require.NoError(t, b.NextPage(ctx, "1"))
	g, _ := b.Group("1")
	require.Equal(t, 2, g.Page)

	require.NoError(t, b.ToggleGroup(ctx, "1")) // close
	require.NoError(t, b.ToggleGroup(ctx, "1")) // reopen

	g, _ = b.Group("1")
	assert.Equal(t, 1, g.Page)
	assert.Equal(t, "a-1", g.Items[0].ID)
	assert.Equal(t, []pageCall{
		{Group: "1", Page: 1, PageSize: 5},
		{Group: "1", Page: 2, PageSize: 5},
		{Group: "1", Page: 1, PageSize: 5},
	}, q.calls)
}

func TestNextPageEnabledOnlyForFullPage(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		wantNext bool
	}{
		{"full page", 5, true},
		{"short page", 3, false},
		{"empty page", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuestions{pages: map[string][][]Question{
				"1": {questions("p1", tt.size)},
			}}
			b := newTestBrowser(q, nil, nil)
			ctx := context.Background()

			require.NoError(t, b.ToggleGroup(ctx, "1"))
			assert.Equal(t, []pageCall{{Group: "1", Page: 1, PageSize: 5}}, q.calls)

			g, _ := b.Group("1")
			assert.Equal(t, tt.wantNext, g.HasNext)

			req := b.Next("1")
			if tt.wantNext {
				require.NotNil(t, req)
				assert.Equal(t, 2, req.Page)
			} else {
				assert.Nil(t, req)
			}
		})
	}
}

func TestNextPageAdvancesCursor(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{
		"2": {questions("p1", 5), questions("p2", 2)},
	}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.ToggleGroup(ctx, "2"))
	require.NoError(t, b.NextPage(ctx, "2"))

	g, _ := b.Group("2")
	assert.Equal(t, 2, g.Page)
	assert.Len(t, g.Items, 2)
	assert.False(t, g.HasNext)
	assert.True(t, g.HasPrevious)
	assert.Equal(t, 6, g.ItemNumber(0))

	// Last page: further NextPage calls do nothing.
	require.NoError(t, b.NextPage(ctx, "2"))
	assert.Equal(t, 2, q.callCount())
}

func TestPreviousPageNoopOnFirstPage(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{
		"1": {questions("p1", 5)},
	}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.ToggleGroup(ctx, "1"))
	before := q.callCount()

	assert.Nil(t, b.Previous("1"))
	require.NoError(t, b.PreviousPage(ctx, "1"))

	g, _ := b.Group("1")
	assert.Equal(t, 1, g.Page)
	assert.False(t, g.HasPrevious)
	assert.Equal(t, before, q.callCount())
}

func TestPreviousPageGoesBack(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{
		"1": {questions("p1", 5), questions("p2", 5), questions("p3", 1)},
	}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.ToggleGroup(ctx, "1"))
	require.NoError(t, b.NextPage(ctx, "1"))
	require.NoError(t, b.NextPage(ctx, "1"))
	require.NoError(t, b.PreviousPage(ctx, "1"))

	g, _ := b.Group("1")
	assert.Equal(t, 2, g.Page)
	assert.Equal(t, "p2-1", g.Items[0].ID)
}

func TestFailedLoadPageKeepsState(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{
		"1": {questions("p1", 5), questions("p2", 5)},
	}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	require.NoError(t, b.ToggleGroup(ctx, "1"))
	before, _ := b.Group("1")

	q.err = errors.New("status 500")
	err := b.LoadPage(ctx, "1", 2)
	require.Error(t, err)

	after, _ := b.Group("1")
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, 1, after.Page)
	assert.False(t, after.Loading)
}

func TestFailedFirstLoadLeavesGroupEmpty(t *testing.T) {
	q := &fakeQuestions{err: errors.New("connection refused")}
	b := newTestBrowser(q, nil, nil)

	err := b.ToggleGroup(context.Background(), "4")
	require.Error(t, err)

	g, _ := b.Group("4")
	assert.True(t, g.Open)
	assert.Empty(t, g.Items)
	assert.False(t, g.Loading)
	assert.Equal(t, 1, g.Page)
}

func TestFailedFetchIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	q := &fakeQuestions{err: errors.New("timeout")}
	b := NewBrowser(q, nil, nil, WithLogger(zap.New(core)))
	b.Initialize(Reading)

	require.Error(t, b.ToggleGroup(context.Background(), "5"))

	entries := logs.FilterMessage("fetch practice page failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "5", entries[0].ContextMap()["group"])
}

func TestLoadPageValidation(t *testing.T) {
	q := &fakeQuestions{}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	err := b.LoadPage(ctx, "1", 0)
	assert.ErrorIs(t, err, ErrInvalidPage)

	err = b.LoadPage(ctx, "6", 1)
	assert.ErrorIs(t, err, ErrUnknownGroup)

	assert.Equal(t, 0, q.callCount())
}

func TestLoadingFlagDuringFetch(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{"3": {questions("p1", 5)}}}
	b := newTestBrowser(q, nil, nil)

	req := b.Toggle("3")
	require.NotNil(t, req)
	g, _ := b.Group("3")
	assert.True(t, g.Loading)

	require.NoError(t, b.Fetch(context.Background(), req))
	g, _ = b.Group("3")
	assert.False(t, g.Loading)
}

func TestLoadingFlagClearedOnPanic(t *testing.T) {
	b := NewBrowser(panicQuestions{}, nil, nil)
	b.Initialize(Listening)
	req := b.Toggle("1")

	assert.Panics(t, func() { _ = b.Fetch(context.Background(), req) })

	g, _ := b.Group("1")
	assert.False(t, g.Loading)
	assert.Empty(t, g.Items)
}

type panicQuestions struct{}

func (panicQuestions) FetchPage(context.Context, string, int, int) ([]Question, error) {
	panic("boom")
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{
		"1": {questions("p1", 5), questions("p2", 5)},
	}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	first := b.Toggle("1")
	second, err := b.RequestPage("1", 2)
	require.NoError(t, err)

	// The newer request lands first; the older one must not overwrite it.
	require.NoError(t, b.Fetch(ctx, second))
	g, _ := b.Group("1")
	assert.False(t, g.Loading)

	require.NoError(t, b.Fetch(ctx, first))
	g, _ = b.Group("1")
	assert.Equal(t, 2, g.Page)
	assert.Equal(t, "p2-1", g.Items[0].ID)
	assert.False(t, g.Loading)
}

func TestStaleCompletionKeepsLoadingFlag(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{"1": {questions("p1", 5)}}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	first := b.Toggle("1")
	second, err := b.RequestPage("1", 1)
	require.NoError(t, err)

	require.NoError(t, b.Fetch(ctx, first))
	g, _ := b.Group("1")
	assert.True(t, g.Loading, "newer request still in flight")

	require.NoError(t, b.Fetch(ctx, second))
	g, _ = b.Group("1")
	assert.False(t, g.Loading)
}

func TestConcurrentGroupFetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := &fakeQuestions{pages: map[string][][]Question{
		"1": {questions("g1", 5)},
		"2": {questions("g2", 4)},
		"3": {questions("g3", 3)},
		"4": {questions("g4", 2)},
	}}
	b := newTestBrowser(q, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"1", "2", "3", "4"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, b.LoadPage(ctx, id, 1))
		}(id)
	}
	wg.Wait()

	for i, g := range b.Groups() {
		assert.False(t, g.Loading)
		assert.Len(t, g.Items, 5-i)
	}
	assert.Equal(t, 4, q.callCount())
}

func TestRefreshAnsweredWithoutSession(t *testing.T) {
	r := &fakeResults{results: []Result{{UserAnswers: []UserAnswer{{QuestionID: "q1"}}}}}
	b := newTestBrowser(&fakeQuestions{}, r, fakeSession{})

	require.NoError(t, b.RefreshAnswered(context.Background()))
	assert.Equal(t, 0, b.AnsweredCount())
	assert.Equal(t, 0, r.calls)
	assert.False(t, b.IsAnswered(Question{ID: "q1"}))
}

func TestRefreshAnsweredNilSession(t *testing.T) {
	r := &fakeResults{}
	b := newTestBrowser(&fakeQuestions{}, r, nil)

	require.NoError(t, b.RefreshAnswered(context.Background()))
	assert.Equal(t, 0, r.calls)
}

func TestRefreshAnsweredReplacesSet(t *testing.T) {
	r := &fakeResults{results: []Result{
		{UserAnswers: []UserAnswer{{QuestionID: "q1"}, {QuestionID: "ignored"}}},
		{UserAnswers: []UserAnswer{{QuestionID: "q2"}}},
		{UserAnswers: nil},
	}}
	b := newTestBrowser(&fakeQuestions{}, r, fakeSession{userID: "u1"})
	ctx := context.Background()

	require.NoError(t, b.RefreshAnswered(ctx))
	assert.Equal(t, 2, b.AnsweredCount())
	assert.True(t, b.IsAnswered(Question{ID: "q1"}))
	assert.False(t, b.IsAnswered(Question{ID: "ignored"}))
	assert.Equal(t, []string{ResultKindQuestion}, r.kinds)
	assert.Equal(t, []int{999}, r.sizes)

	r.results = []Result{{UserAnswers: []UserAnswer{{QuestionID: "q3"}}}}
	require.NoError(t, b.RefreshAnswered(ctx))
	assert.Equal(t, 1, b.AnsweredCount())
	assert.False(t, b.IsAnswered(Question{ID: "q1"}))
	assert.True(t, b.IsAnswered(Question{ID: "q3"}))
	assert.False(t, b.AnsweredLoading())
}

func TestRefreshAnsweredFailureKeepsPreviousSet(t *testing.T) {
	r := &fakeResults{results: []Result{{UserAnswers: []UserAnswer{{QuestionID: "q1"}}}}}
	b := newTestBrowser(&fakeQuestions{}, r, fakeSession{userID: "u1"})
	ctx := context.Background()

	require.NoError(t, b.RefreshAnswered(ctx))
	r.err = errors.New("status 401")
	require.Error(t, b.RefreshAnswered(ctx))

	assert.True(t, b.IsAnswered(Question{ID: "q1"}))
	assert.False(t, b.AnsweredLoading())
}

func TestIsAnsweredPropagatesFromSubQuestion(t *testing.T) {
	r := &fakeResults{results: []Result{{UserAnswers: []UserAnswer{{QuestionID: "q42"}}}}}
	b := newTestBrowser(&fakeQuestions{}, r, fakeSession{userID: "u1"})
	require.NoError(t, b.RefreshAnswered(context.Background()))

	assert.True(t, b.IsAnswered(Question{ID: "q42"}))
	assert.True(t, b.IsAnswered(Question{ID: "q7", SubQuestions: []Question{{ID: "q42"}}}))
	assert.False(t, b.IsAnswered(Question{ID: "q7", SubQuestions: []Question{{ID: "q8"}}}))
}

func TestFocusClosesAndRefreshes(t *testing.T) {
	r := &fakeResults{results: []Result{{UserAnswers: []UserAnswer{{QuestionID: "q1"}}}}}
	b := newTestBrowser(&fakeQuestions{}, r, fakeSession{userID: "u1"})
	ctx := context.Background()

	require.NoError(t, b.ToggleGroup(ctx, "2"))
	require.NoError(t, b.Focus(ctx))

	assert.Equal(t, "", b.OpenGroup())
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, 1, b.AnsweredCount())
}

func TestWithPageSize(t *testing.T) {
	q := &fakeQuestions{pages: map[string][][]Question{"5": {questions("p1", 10)}}}
	b := NewBrowser(q, nil, nil, WithPageSize(10))
	b.Initialize(Reading)

	require.NoError(t, b.ToggleGroup(context.Background(), "5"))
	g, _ := b.Group("5")
	assert.True(t, g.HasNext)
	assert.Equal(t, 10, q.calls[0].PageSize)

	assert.Equal(t, DefaultPageSize, NewBrowser(q, nil, nil, WithPageSize(0)).PageSize())
}

func TestAnsweredIDs(t *testing.T) {
	got := AnsweredIDs([]Result{
		{UserAnswers: []UserAnswer{{QuestionID: "a"}}},
		{UserAnswers: []UserAnswer{{QuestionID: ""}}},
		{},
		{UserAnswers: []UserAnswer{{QuestionID: "a"}}},
	})
	assert.Equal(t, map[string]struct{}{"a": {}}, got)
}
