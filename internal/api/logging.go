package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/store"
)

// LoggingService is a decorator that records every API call as a request
// event and logs failures.
type LoggingService struct {
	inner Service
	repo  store.RequestRepo
	log   *zap.Logger
}

var _ Service = (*LoggingService)(nil)

// WithLogging wraps a Service with request event logging. repo and log may
// be nil.
func WithLogging(s Service, repo store.RequestRepo, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingService{inner: s, repo: repo, log: log.Named("api")}
}

func (l *LoggingService) FetchPage(ctx context.Context, groupID string, page, pageSize int) ([]practice.Question, error) {
	ctx, done := l.begin(ctx, OpQuestionsPage, http.MethodGet, "/questions")
	items, err := l.inner.FetchPage(ctx, groupID, page, pageSize)
	done(err, zap.String("part", groupID), zap.Int("page", page))
	return items, err
}

func (l *LoggingService) FetchResults(ctx context.Context, pageSize int, kind string) ([]practice.Result, error) {
	ctx, done := l.begin(ctx, OpResultsList, http.MethodGet, "/results")
	results, err := l.inner.FetchResults(ctx, pageSize, kind)
	done(err, zap.String("kind", kind))
	return results, err
}

func (l *LoggingService) ListTests(ctx context.Context, f TestFilter) ([]Test, error) {
	ctx, done := l.begin(ctx, OpTestsList, http.MethodGet, "/tests")
	tests, err := l.inner.ListTests(ctx, f)
	done(err)
	return tests, err
}

func (l *LoggingService) FullTest(ctx context.Context, testID string) (*Test, error) {
	ctx, done := l.begin(ctx, OpTestsFull, http.MethodGet, "/tests/{id}/full-test")
	test, err := l.inner.FullTest(ctx, testID)
	done(err, zap.String("test", testID))
	return test, err
}

func (l *LoggingService) SubmitTest(ctx context.Context, req SubmitRequest) (*practice.Result, error) {
	ctx, done := l.begin(ctx, OpTestsSubmit, http.MethodPost, "/tests/submit")
	result, err := l.inner.SubmitTest(ctx, req)
	done(err, zap.String("test", req.TestID), zap.Int("answers", len(req.UserAnswer)))
	return result, err
}

// begin assigns a request id and returns a function that records the
// outcome of the call.
func (l *LoggingService) begin(ctx context.Context, op, method, path string) (context.Context, func(error, ...zap.Field)) {
	ctx, requestID := ensureRequestID(ctx)
	start := time.Now()

	return ctx, func(err error, fields ...zap.Field) {
		latency := time.Since(start)

		status := StatusOf(err)
		if err == nil {
			status = http.StatusOK
		}

		data := store.RequestEventData{
			RequestID: requestID,
			Op:        op,
			Method:    method,
			Path:      path,
			Status:    status,
			LatencyMs: latency.Milliseconds(),
			Success:   err == nil,
		}
		if err != nil {
			data.ErrorMessage = err.Error()
		}

		fields = append(fields,
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Duration("latency", latency))
		if err != nil {
			l.log.Warn("api request failed", append(fields, zap.Int("status", status), zap.Error(err))...)
		} else {
			l.log.Debug("api request", fields...)
		}

		if l.repo == nil {
			return
		}
		// Cancelled calls are still recorded.
		if logErr := l.repo.Append(context.WithoutCancel(ctx), data); logErr != nil {
			l.log.Warn("record api request failed", zap.Error(logErr))
		}
	}
}
