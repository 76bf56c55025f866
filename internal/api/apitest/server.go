// Package apitest provides an in-process fake of the practice API.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/practice"
)

// Request is a call received by the fake server.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Auth      string
	RequestID string
}

// Server is a fake practice API. Configure it with the Set methods, then
// point an api.Client at BaseURL.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	token       string
	questions   map[string][]practice.Question
	results     []practice.Result
	tests       []api.Test
	submissions []api.SubmitRequest
	requests    []Request
	failures    map[string]int
	raw         map[string]string
}

// New starts a fake server. Callers must Close it.
func New() *Server {
	s := &Server{
		questions: make(map[string][]practice.Question),
		failures:  make(map[string]int),
		raw:       make(map[string]string),
	}
	s.srv = httptest.NewServer(s.routes())
	return s
}

// BaseURL is the API root, including the version prefix.
func (s *Server) BaseURL() string { return s.srv.URL + "/api/v1" }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// RequireToken makes authenticated endpoints accept only token.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetQuestions replaces the questions of a TOEIC part.
func (s *Server) SetQuestions(part string, qs []practice.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[part] = qs
}

// SetResults replaces the results returned by /results.
func (s *Server) SetResults(rs []practice.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = rs
}

// SetTests replaces the tests returned by /tests.
func (s *Server) SetTests(ts []api.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests = ts
}

// FailWith makes every request to path answer status.
func (s *Server) FailWith(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// RespondRaw makes path answer 200 with body verbatim.
func (s *Server) RespondRaw(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[path] = body
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Submissions returns every body posted to /tests/submit.
func (s *Server) Submissions() []api.SubmitRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.SubmitRequest, len(s.submissions))
	copy(out, s.submissions)
	return out
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.override)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/questions", s.handleQuestions)
		r.Get("/tests", s.handleTests)
		r.Get("/tests/{id}/full-test", s.handleFullTest)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/results", s.handleResults)
			r.Post("/tests/submit", s.handleSubmit)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      strings.TrimPrefix(r.URL.Path, "/api/v1"),
			Query:     r.URL.Query(),
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1")

		s.mu.Lock()
		status, failing := s.failures[path]
		body, isRaw := s.raw[path]
		s.mu.Unlock()

		switch {
		case failing:
			http.Error(w, http.StatusText(status), status)
		case isRaw:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()

		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if got == "" || (token != "" && got != token) {
			writeJSON(w, http.StatusUnauthorized, api.Envelope[any]{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageSize := intParam(q, "pageSize", 10)
	current := intParam(q, "current", 1)

	s.mu.Lock()
	all := s.questions[q.Get("partNum")]
	s.mu.Unlock()

	writePage(w, all, current, pageSize)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := q.Get("type")

	s.mu.Lock()
	var matching []practice.Result
	for _, res := range s.results {
		if kind == "" || res.Type == kind {
			matching = append(matching, res)
		}
	}
	s.mu.Unlock()

	writePage(w, matching, 1, intParam(q, "pageSize", 10))
}

func (s *Server) handleTests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))

	s.mu.Lock()
	var matching []api.Test
	for _, t := range s.tests {
		if search == "" || strings.Contains(strings.ToLower(t.Name), search) {
			matching = append(matching, t)
		}
	}
	s.mu.Unlock()

	writePage(w, matching, intParam(q, "current", 1), intParam(q, "pageSize", 10))
}

func (s *Server) handleFullTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tests {
		if t.ID == id {
			writeJSON(w, http.StatusOK, api.Envelope[api.Test]{StatusCode: http.StatusOK, Message: "OK", Data: t})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, api.Envelope[any]{StatusCode: http.StatusNotFound, Message: "test not found"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, api.Envelope[any]{StatusCode: http.StatusBadRequest, Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, req)
	n := len(s.submissions)
	key := answerKey(s.tests)
	s.mu.Unlock()

	result := practice.Result{
		ID:     "result-" + strconv.Itoa(n),
		TestID: req.TestID,
		Type:   req.Type,
		Parts:  req.Parts,
	}
	for _, a := range req.UserAnswer {
		correct, known := key[a.QuestionID]
		graded := practice.UserAnswer{
			QuestionID: a.QuestionID,
			UserAnswer: a.UserAnswer,
			TimeSpent:  a.TimeSpent,
			Correct:    known && a.UserAnswer != "" && strings.EqualFold(a.UserAnswer, correct),
		}
		result.UserAnswers = append(result.UserAnswers, graded)
		switch {
		case a.UserAnswer == "":
			result.TotalSkipAnswer++
		case graded.Correct:
			result.TotalCorrectAnswer++
		case known:
			result.TotalIncorrectAnswer++
		}
	}
	result.TotalTime = req.TotalSeconds
	writeJSON(w, http.StatusOK, api.Envelope[practice.Result]{StatusCode: http.StatusOK, Message: "OK", Data: result})
}

// answerKey maps every question id in tests, sub-questions included, to
// its correct answer.
func answerKey(tests []api.Test) map[string]string {
	key := make(map[string]string)
	var walk func([]practice.Question)
	walk = func(qs []practice.Question) {
		for _, q := range qs {
			if q.CorrectAnswer != "" {
				key[q.ID] = q.CorrectAnswer
			}
			walk(q.SubQuestions)
		}
	}
	for _, t := range tests {
		walk(t.Questions)
	}
	return key
}

func writePage[T any](w http.ResponseWriter, all []T, current, pageSize int) {
	if current < 1 {
		current = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	start := min((current-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	result := make([]T, 0, end-start)
	result = append(result, all[start:end]...)

	pages := (len(all) + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, api.Envelope[api.Page[T]]{
		StatusCode: http.StatusOK,
		Message:    "OK",
		Data: api.Page[T]{
			Meta:   api.Meta{Current: current, PageSize: pageSize, Pages: pages, Total: len(all)},
			Result: result,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return def
	}
	return n
}
