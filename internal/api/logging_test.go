package api_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/toeicpractice/toeic/internal/api"
	"github.com/toeicpractice/toeic/internal/practice"
	"github.com/toeicpractice/toeic/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestWithLoggingRecordsSuccess(t *testing.T) {
	client, srv := newTestClient(t, nil)
	srv.SetQuestions("1", partQuestions("1", 2))
	st := openStore(t)

	svc := api.WithLogging(client, st.RequestRepo(), zap.NewNop())
	got, err := svc.FetchPage(context.Background(), "1", 1, 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	events, err := st.RequestRepo().Recent(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, api.OpQuestionsPage, ev.Op)
	assert.Equal(t, http.MethodGet, ev.Method)
	assert.Equal(t, "/questions", ev.Path)
	assert.Equal(t, http.StatusOK, ev.Status)
	assert.True(t, ev.Success)
	assert.Empty(t, ev.ErrorMessage)

	// The recorded id is the one sent on the wire.
	assert.Equal(t, srv.Requests()[0].RequestID, ev.RequestID)
}

func TestWithLoggingRecordsFailure(t *testing.T) {
	client, srv := newTestClient(t, staticTokens("tok"))
	srv.FailWith("/results", http.StatusBadGateway)
	st := openStore(t)

	core, logs := observer.New(zapcore.WarnLevel)
	svc := api.WithLogging(client, st.RequestRepo(), zap.New(core))

	_, err := svc.FetchResults(context.Background(), 999, practice.ResultKindQuestion)
	require.Error(t, err)

	events, err := st.RequestRepo().Recent(context.Background(), store.QueryOpts{Failed: true})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, api.OpResultsList, events[0].Op)
	assert.Equal(t, http.StatusBadGateway, events[0].Status)
	assert.NotEmpty(t, events[0].ErrorMessage)

	entries := logs.FilterMessage("api request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, api.OpResultsList, entries[0].ContextMap()["op"])
}

func TestWithLoggingNoSessionHasNoStatus(t *testing.T) {
	client, _ := newTestClient(t, nil)
	st := openStore(t)

	svc := api.WithLogging(client, st.RequestRepo(), nil)
	_, err := svc.SubmitTest(context.Background(), api.SubmitRequest{TestID: "t1"})
	require.ErrorIs(t, err, api.ErrNoSession)

	events, err := st.RequestRepo().Recent(context.Background(), store.QueryOpts{Op: api.OpTestsSubmit})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].Status)
	assert.Equal(t, http.MethodPost, events[0].Method)
	assert.False(t, events[0].Success)
}

func TestWithLoggingNilRepo(t *testing.T) {
	client, srv := newTestClient(t, nil)
	srv.SetTests([]api.Test{{ID: "t1", Name: "Test"}})

	svc := api.WithLogging(client, nil, nil)
	tests, err := svc.ListTests(context.Background(), api.TestFilter{})
	require.NoError(t, err)
	assert.Len(t, tests, 1)

	test, err := svc.FullTest(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Test", test.Name)
}
