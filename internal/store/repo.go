package store

import (
	"context"
	"time"
)

// Well-known settings keys.
const (
	KeyFirstLoad = "firstLoad"
	KeyUserInfo  = "userInfo"
)

// SettingsRepo is a small string key/value store for device-local state
// such as the onboarding flag and the saved session.
type SettingsRepo interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or overwrites key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// RequestEventData captures one call to the practice API.
type RequestEventData struct {
	RequestID    string
	Op           string
	Method       string
	Path         string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEvent is a stored RequestEventData.
type RequestEvent struct {
	ID        int64
	Timestamp time.Time
	RequestEventData
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	Op     string    // exact op match ("" = any)
	Failed bool      // only unsuccessful requests
	From   time.Time // timestamp >= From
}

// RequestRepo provides append and query access to the API request log.
type RequestRepo interface {
	// Append records a request event.
	Append(ctx context.Context, data RequestEventData) error

	// Recent returns events newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)
}
