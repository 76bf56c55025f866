package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/toeicpractice/toeic/internal/practice"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// Operation names, used in errors and request events.
const (
	OpQuestionsPage = "questions.page"
	OpResultsList   = "results.list"
	OpTestsList     = "tests.list"
	OpTestsFull     = "tests.full"
	OpTestsSubmit   = "tests.submit"
)

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the practice API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

var _ Service = (*Client)(nil)

// NewClient creates a Client. tokens may be nil, in which case every
// authenticated call fails with ErrNoSession.
func NewClient(cfg Config, tokens TokenSource) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		tokens:     tokens,
	}
}

// FetchPage returns one page of questions for a TOEIC part.
func (c *Client) FetchPage(ctx context.Context, groupID string, page, pageSize int) ([]practice.Question, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("partNum", groupID)
	q.Set("current", strconv.Itoa(page))

	var env Envelope[Page[practice.Question]]
	if err := c.do(ctx, OpQuestionsPage, http.MethodGet, "/questions", q, nil, false, schemaPage, &env); err != nil {
		return nil, err
	}
	return env.Data.Result, nil
}

// FetchResults returns the signed-in user's results of the given kind.
func (c *Client) FetchResults(ctx context.Context, pageSize int, kind string) ([]practice.Result, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(pageSize))
	if kind != "" {
		q.Set("type", kind)
	}

	var env Envelope[Page[practice.Result]]
	if err := c.do(ctx, OpResultsList, http.MethodGet, "/results", q, nil, true, schemaPage, &env); err != nil {
		return nil, err
	}
	return env.Data.Result, nil
}

// ListTests returns tests matching f. An empty filter requests every test.
func (c *Client) ListTests(ctx context.Context, f TestFilter) ([]Test, error) {
	q := url.Values{}
	if f.empty() {
		q.Set("pageSize", "999")
	} else {
		if f.PageSize > 0 {
			q.Set("pageSize", strconv.Itoa(f.PageSize))
		}
		if f.Current > 0 {
			q.Set("current", strconv.Itoa(f.Current))
		}
		if f.Search != "" {
			q.Set("search", f.Search)
		}
		if f.OrderAscBy != "" {
			q.Set("orderAscBy", f.OrderAscBy)
		}
		if f.OrderDescBy != "" {
			q.Set("orderDescBy", f.OrderDescBy)
		}
	}

	var env Envelope[Page[Test]]
	if err := c.do(ctx, OpTestsList, http.MethodGet, "/tests", q, nil, false, schemaPage, &env); err != nil {
		return nil, err
	}
	return env.Data.Result, nil
}

// FullTest returns a test with its questions.
func (c *Client) FullTest(ctx context.Context, testID string) (*Test, error) {
	path := "/tests/" + url.PathEscape(testID) + "/full-test"

	var env Envelope[Test]
	if err := c.do(ctx, OpTestsFull, http.MethodGet, path, nil, nil, false, schemaObject, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// SubmitTest submits answers and returns the graded result.
func (c *Client) SubmitTest(ctx context.Context, req SubmitRequest) (*practice.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	var env Envelope[practice.Result]
	if err := c.do(ctx, OpTestsSubmit, http.MethodPost, "/tests/submit", nil, body, true, schemaObject, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// do performs one request, validates the envelope against schema and
// decodes it into out.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body []byte, authed bool, schema string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var token string
	if authed {
		var ok bool
		if c.tokens != nil {
			token, ok = c.tokens.Token(ctx)
		}
		if !ok || token == "" {
			return &FetchError{Op: op, URL: target, Err: ErrNoSession}
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	ctx, requestID := ensureRequestID(ctx)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &FetchError{
			Op:     op,
			URL:    target,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &FetchError{Op: op, URL: target, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if err := validateEnvelope(schema, raw); err != nil {
		return &FetchError{Op: op, URL: target, Status: resp.StatusCode, Err: err}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &FetchError{Op: op, URL: target, Status: resp.StatusCode, Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
	}
	return nil
}
