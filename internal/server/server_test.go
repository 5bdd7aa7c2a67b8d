package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blkoutuk/research-agent/internal/store"
)

type fakeRunLister struct {
	runs []store.RunLog
	err  error
}

func (f *fakeRunLister) RecentRuns(ctx context.Context, limit int) ([]store.RunLog, error) {
	return f.runs, f.err
}

func TestHealth(t *testing.T) {
	srv := New(nil, &fakeRunLister{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.SetupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestTriggerRunUnknownType(t *testing.T) {
	srv := New(nil, &fakeRunLister{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/runs/bogus", nil)

	srv.SetupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRuns(t *testing.T) {
	lister := &fakeRunLister{runs: []store.RunLog{
		{RunType: "news", Status: "completed"},
	}}
	srv := New(nil, lister)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs", nil)

	srv.SetupRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Runs []store.RunLog `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "news", body.Runs[0].RunType)
}

func TestListRunsEmptyIsArray(t *testing.T) {
	srv := New(nil, &fakeRunLister{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs", nil)

	srv.SetupRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs":[]}`, w.Body.String())
}

func TestListRunsStoreError(t *testing.T) {
	srv := New(nil, &fakeRunLister{err: errors.New("db locked")})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs", nil)

	srv.SetupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
