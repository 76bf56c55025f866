package practice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the number of questions fetched per page.
	DefaultPageSize = 5

	// ResultKindQuestion is the result kind recorded for single-question practice.
	ResultKindQuestion = "QUESTION"

	// ResultKindFullTest is the result kind recorded for a submitted test.
	ResultKindFullTest = "FULL_TEST"

	answeredFetchSize = 999
)

var (
	ErrUnknownGroup = errors.New("unknown practice group")
	ErrInvalidPage  = errors.New("page number must be at least 1")
)

// QuestionProvider fetches one page of questions for a group.
type QuestionProvider interface {
	FetchPage(ctx context.Context, groupID string, page, pageSize int) ([]Question, error)
}

// ResultProvider fetches the current user's graded results.
type ResultProvider interface {
	FetchResults(ctx context.Context, pageSize int, kind string) ([]Result, error)
}

// SessionContext reports the signed-in user, if any.
type SessionContext interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// PageRequest is an issued, not yet completed, page fetch. Requests are
// created by Toggle, Next, Previous and RequestPage and executed by Fetch.
type PageRequest struct {
	GroupID  string
	Page     int
	PageSize int
	seq      uint64
}

// GroupState is the per-group browsing state. Values are never mutated in
// place; every transition returns a new GroupState that replaces the old
// one in the browser's map.
type GroupState struct {
	Group   Group
	Items   []Question
	Page    int
	Loading bool

	// latest is the sequence number of the most recently issued fetch.
	latest uint64
}

func newGroupState(g Group) GroupState {
	return GroupState{Group: g, Page: 1}
}

func (s GroupState) withPage(page int) GroupState {
	s.Page = page
	return s
}

func (s GroupState) issue(seq uint64) GroupState {
	s.Loading = true
	s.latest = seq
	return s
}

// settle completes the fetch tagged seq. Responses to anything but the
// latest issued fetch are dropped and the state is returned unchanged.
func (s GroupState) settle(seq uint64, items []Question, page int, ok bool) (GroupState, bool) {
	if seq != s.latest {
		return s, false
	}
	s.Loading = false
	if ok {
		s.Items = slices.Clone(items)
		s.Page = page
	}
	return s, true
}

func (s GroupState) hasNext(pageSize int) bool {
	return len(s.Items) >= pageSize
}

func (s GroupState) hasPrevious() bool {
	return s.Page > 1
}

// GroupView is a read-only projection of a group for rendering.
type GroupView struct {
	Group
	Items       []Question
	Page        int
	PageSize    int
	Loading     bool
	Open        bool
	HasNext     bool
	HasPrevious bool
}

// ItemNumber returns the 1-based position of Items[index] across all pages.
func (v GroupView) ItemNumber(index int) int {
	return (v.Page-1)*v.PageSize + index + 1
}

// Browser manages the collapsible, independently paginated practice groups
// of one practice list and the set of questions the user already answered.
// It is safe for concurrent use.
type Browser struct {
	questions QuestionProvider
	results   ResultProvider
	session   SessionContext
	log       *zap.Logger
	pageSize  int

	mu              sync.Mutex
	practiceType    PracticeType
	order           []string
	groups          map[string]GroupState
	open            string
	seq             uint64
	answered        map[string]struct{}
	answeredLoading bool
	answeredSeq     uint64
}

// Option configures a Browser.
type Option func(*Browser)

// WithLogger sets the logger used to report failed fetches.
func WithLogger(l *zap.Logger) Option {
	return func(b *Browser) {
		if l != nil {
			b.log = l
		}
	}
}

// WithPageSize overrides DefaultPageSize. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(b *Browser) {
		if n >= 1 {
			b.pageSize = n
		}
	}
}

// NewBrowser creates an empty Browser. Call Initialize to populate groups.
// A nil session is treated as "never signed in".
func NewBrowser(questions QuestionProvider, results ResultProvider, session SessionContext, opts ...Option) *Browser {
	b := &Browser{
		questions: questions,
		results:   results,
		session:   session,
		log:       zap.NewNop(),
		pageSize:  DefaultPageSize,
		groups:    make(map[string]GroupState),
		answered:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Initialize rebuilds the group list for t and closes any open group.
func (b *Browser) Initialize(t PracticeType) {
	groups := GroupsFor(t)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.practiceType = t
	b.order = make([]string, 0, len(groups))
	b.groups = make(map[string]GroupState, len(groups))
	for _, g := range groups {
		b.order = append(b.order, g.ID)
		b.groups[g.ID] = newGroupState(g)
	}
	b.open = ""
}

// Toggle closes groupID if it is open. Otherwise it opens groupID (closing
// any other group), resets its cursor to 1 and returns the request for
// page 1. Closing, and unknown ids, return nil.
func (b *Browser) Toggle(groupID string) *PageRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.groups[groupID]
	if !ok {
		return nil
	}
	if b.open == groupID {
		b.open = ""
		return nil
	}
	b.open = groupID
	b.groups[groupID] = st.withPage(1)
	return b.issueLocked(groupID, 1)
}

// Close collapses the open group, if any.
func (b *Browser) Close() {
	b.mu.Lock()
	b.open = ""
	b.mu.Unlock()
}

// RequestPage marks groupID as loading and returns the request for page.
func (b *Browser) RequestPage(groupID string, page int) (*PageRequest, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.groups[groupID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, groupID)
	}
	return b.issueLocked(groupID, page), nil
}

// Next returns the request for the page after the group's cursor, or nil
// when the current page is shorter than the page size.
func (b *Browser) Next(groupID string) *PageRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.groups[groupID]
	if !ok || !st.hasNext(b.pageSize) {
		return nil
	}
	return b.issueLocked(groupID, st.Page+1)
}

// Previous returns the request for the page before the group's cursor, or
// nil on the first page.
func (b *Browser) Previous(groupID string) *PageRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.groups[groupID]
	if !ok || !st.hasPrevious() {
		return nil
	}
	return b.issueLocked(groupID, st.Page-1)
}

func (b *Browser) issueLocked(groupID string, page int) *PageRequest {
	b.seq++
	b.groups[groupID] = b.groups[groupID].issue(b.seq)
	return &PageRequest{GroupID: groupID, Page: page, PageSize: b.pageSize, seq: b.seq}
}

// Fetch executes req against the QuestionProvider and commits the outcome.
// On success the group's items and cursor are replaced; on failure they are
// left untouched and the error is logged and returned. The loading flag is
// cleared in every case unless a newer request for the same group has been
// issued meanwhile, in which case this response is discarded. A nil req is
// a no-op.
func (b *Browser) Fetch(ctx context.Context, req *PageRequest) error {
	if req == nil {
		return nil
	}

	var items []Question
	ok := false
	defer func() { b.settle(req, items, ok) }()

	items, err := b.questions.FetchPage(ctx, req.GroupID, req.Page, req.PageSize)
	if err != nil {
		b.log.Warn("fetch practice page failed",
			zap.String("group", req.GroupID),
			zap.Int("page", req.Page),
			zap.Error(err))
		return err
	}
	ok = true
	return nil
}

func (b *Browser) settle(req *PageRequest, items []Question, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, exists := b.groups[req.GroupID]
	if !exists {
		return
	}
	st, applied := st.settle(req.seq, items, req.Page, ok)
	if !applied {
		b.log.Debug("discarding stale practice page",
			zap.String("group", req.GroupID),
			zap.Int("page", req.Page))
		return
	}
	b.groups[req.GroupID] = st
}

// LoadPage issues and executes a fetch of page for groupID.
func (b *Browser) LoadPage(ctx context.Context, groupID string, page int) error {
	req, err := b.RequestPage(groupID, page)
	if err != nil {
		return err
	}
	return b.Fetch(ctx, req)
}

// ToggleGroup is Toggle followed by Fetch.
func (b *Browser) ToggleGroup(ctx context.Context, groupID string) error {
	return b.Fetch(ctx, b.Toggle(groupID))
}

// NextPage is Next followed by Fetch.
func (b *Browser) NextPage(ctx context.Context, groupID string) error {
	return b.Fetch(ctx, b.Next(groupID))
}

// PreviousPage is Previous followed by Fetch.
func (b *Browser) PreviousPage(ctx context.Context, groupID string) error {
	return b.Fetch(ctx, b.Previous(groupID))
}

// RefreshAnswered recomputes the answered set from the ResultProvider,
// replacing the previous set. Without a session the set is emptied and no
// fetch is made. On failure the previous set is kept.
func (b *Browser) RefreshAnswered(ctx context.Context) error {
	if b.session == nil || b.results == nil {
		b.resetAnswered()
		return nil
	}
	if _, ok := b.session.CurrentUserID(ctx); !ok {
		b.resetAnswered()
		return nil
	}

	b.mu.Lock()
	b.answeredSeq++
	seq := b.answeredSeq
	b.answeredLoading = true
	b.mu.Unlock()

	var set map[string]struct{}
	ok := false
	defer func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if seq != b.answeredSeq {
			return
		}
		b.answeredLoading = false
		if ok {
			b.answered = set
		}
	}()

	results, err := b.results.FetchResults(ctx, answeredFetchSize, ResultKindQuestion)
	if err != nil {
		b.log.Warn("fetch answered results failed", zap.Error(err))
		return err
	}
	set = AnsweredIDs(results)
	ok = true
	return nil
}

func (b *Browser) resetAnswered() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answeredSeq++
	b.answeredLoading = false
	b.answered = make(map[string]struct{})
}

// Focus handles the list regaining focus: the open group collapses and the
// answered set is refreshed.
func (b *Browser) Focus(ctx context.Context) error {
	b.Close()
	return b.RefreshAnswered(ctx)
}

// AnsweredIDs collects the question id of each result's first user answer.
// Results without answers are skipped.
func AnsweredIDs(results []Result) map[string]struct{} {
	set := make(map[string]struct{}, len(results))
	for _, r := range results {
		if len(r.UserAnswers) == 0 {
			continue
		}
		if id := r.UserAnswers[0].QuestionID; id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// IsAnswered reports whether q, or any of its sub-questions, is in the
// answered set.
func (b *Browser) IsAnswered(q Question) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.answered[q.ID]; ok {
		return true
	}
	for _, sub := range q.SubQuestions {
		if _, ok := b.answered[sub.ID]; ok {
			return true
		}
	}
	return false
}

// Groups returns a view of every group in display order.
func (b *Browser) Groups() []GroupView {
	b.mu.Lock()
	defer b.mu.Unlock()

	views := make([]GroupView, 0, len(b.order))
	for _, id := range b.order {
		views = append(views, b.viewLocked(b.groups[id]))
	}
	return views
}

// Group returns the view of a single group.
func (b *Browser) Group(id string) (GroupView, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.groups[id]
	if !ok {
		return GroupView{}, false
	}
	return b.viewLocked(st), true
}

func (b *Browser) viewLocked(st GroupState) GroupView {
	return GroupView{
		Group:       st.Group,
		Items:       st.Items,
		Page:        st.Page,
		PageSize:    b.pageSize,
		Loading:     st.Loading,
		Open:        b.open == st.Group.ID,
		HasNext:     st.hasNext(b.pageSize),
		HasPrevious: st.hasPrevious(),
	}
}

// OpenGroup returns the id of the expanded group, or "".
func (b *Browser) OpenGroup() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// AnsweredLoading reports whether an answered-set fetch is in flight.
func (b *Browser) AnsweredLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.answeredLoading
}

// AnsweredCount returns the size of the answered set.
func (b *Browser) AnsweredCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.answered)
}

// Type returns the practice type passed to Initialize.
func (b *Browser) Type() PracticeType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.practiceType
}

// PageSize returns the configured page size.
func (b *Browser) PageSize() int {
	return b.pageSize
}
