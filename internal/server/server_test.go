package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/store"
)

type emptyItems struct{}

func (emptyItems) ListItems(context.Context, scene.Category, string) ([]store.MapItem, error) {
	return nil, nil
}

func (emptyItems) GetItem(context.Context, scene.Category, string) (store.MapItem, error) {
	return store.MapItem{}, store.ErrNotFound
}

func (emptyItems) ListJobs(context.Context, string) ([]store.Job, error) { return nil, nil }

func (emptyItems) ImagePoints(context.Context, string, string) ([]store.ImageInfo, error) {
	return nil, nil
}

func (emptyItems) SaveMap(context.Context, scene.Category, string, string) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := New(Config{Host: "localhost", Port: "8086", Items: emptyItems{}})
	t.Cleanup(func() { srv.Close() })
	return srv
}

func serve(srv *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestRootOpensSession(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	ids := srv.Sessions().List()
	require.Len(t, ids, 1)
	assert.Contains(t, rec.Body.String(), "/api/v1/sessions/"+ids[0]+"/events")
	assert.Contains(t, strings.Join(rec.Header().Values("Link"), ","), `rel="sessions"`)

	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/nope").Code)
}

func TestOpenAPI(t *testing.T) {
	srv := newTestServer(t)

	spec := srv.OpenAPI()
	require.NotNil(t, spec)
	assert.Equal(t, "plat-sitemap API", spec.Info.Title)
	assert.Contains(t, spec.Paths, "/api/v1/sessions/{id}/pointer/click")
	assert.Contains(t, spec.Paths, "/api/v1/sessions/{id}/click")
}
