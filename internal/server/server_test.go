package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/usecase"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fs := afero.NewMemMapFs()
	buildUC := &usecase.BuildSiteUseCase{FsRepo: fs}
	_, err := buildUC.Execute(context.Background(), usecase.BuildConfig{
		OutputDir: "build",
		Version:   domain.NewVersion("3"),
	})
	require.NoError(t, err)
	return New(Config{Port: 0, SiteDir: "build", Version: "test"}, fs, zap.NewNop())
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer(t *testing.T) {
	t.Run("Should serve the index page at the root", func(t *testing.T) {
		srv := newTestServer(t)
		rec := get(t, srv.Handler(), "/")
		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`<title>[^<]*Learn Jenkins[^<]*</title>`), string(body))
		assert.Contains(t, string(body), "Application version: 3")
	})

	t.Run("Should serve the embedded assets the page references", func(t *testing.T) {
		srv := newTestServer(t)
		for _, path := range []string{"/logo.svg", "/app.css"} {
			rec := get(t, srv.Handler(), path)
			assert.Equal(t, http.StatusOK, rec.Code, path)
			assert.NotZero(t, rec.Body.Len(), path)
		}
	})

	t.Run("Should return 404 for files outside the artifact", func(t *testing.T) {
		srv := newTestServer(t)
		rec := get(t, srv.Handler(), "/missing.txt")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should answer the health endpoint with JSON", func(t *testing.T) {
		srv := newTestServer(t)
		rec := get(t, srv.Handler(), "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})
}
