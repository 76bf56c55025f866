package api

import (
	"context"

	"github.com/toeicpractice/toeic/internal/practice"
)

// Category groups tests by exam format and year.
type Category struct {
	ID     string `json:"id,omitempty"`
	Format string `json:"format"`
	Year   int    `json:"year"`
}

// Test is a full or mini TOEIC test.
type Test struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	TotalUserAttemp int                 `json:"totalUserAttemp"`
	TotalQuestion   int                 `json:"totalQuestion"`
	TotalScore      int                 `json:"totalScore"`
	LimitTime       int                 `json:"limitTime"`
	Questions       []practice.Question `json:"questions,omitempty"`
	Category        *Category           `json:"category,omitempty"`
}

// TestFilter narrows ListTests. The zero value lists every test.
type TestFilter struct {
	PageSize    int
	Current     int
	Search      string
	OrderAscBy  string
	OrderDescBy string
}

func (f TestFilter) empty() bool {
	return f == TestFilter{}
}

// AnswerPair is one answered question in a submission.
type AnswerPair struct {
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
	TimeSpent  int    `json:"timeSpent"`
}

// SubmitRequest is the body of POST /tests/submit.
type SubmitRequest struct {
	UserAnswer   []AnswerPair `json:"userAnswer"`
	TotalSeconds int          `json:"totalSeconds"`
	TestID       string       `json:"testId"`
	Parts        string       `json:"parts"`
	Type         string       `json:"type"`
}

// Meta is the pagination block of list responses.
type Meta struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Total    int `json:"total"`
}

// Envelope wraps every API response.
type Envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

// Page is the data block of list responses.
type Page[T any] struct {
	Meta   Meta `json:"meta"`
	Result []T  `json:"result"`
}

// Service is the full practice API surface.
type Service interface {
	practice.QuestionProvider
	practice.ResultProvider

	// ListTests returns tests matching f.
	ListTests(ctx context.Context, f TestFilter) ([]Test, error)

	// FullTest returns a test with all of its questions.
	FullTest(ctx context.Context, testID string) (*Test, error)

	// SubmitTest submits answers for grading. Requires a session.
	SubmitTest(ctx context.Context, req SubmitRequest) (*practice.Result, error)
}

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}
