package router

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hello-base/ohashi/config"
	"github.com/hello-base/ohashi/internal/embed"
	"github.com/hello-base/ohashi/internal/eventbus"
	"github.com/hello-base/ohashi/internal/handler"
	"github.com/hello-base/ohashi/internal/pkg/database"
	"github.com/hello-base/ohashi/internal/repository"
	"github.com/hello-base/ohashi/internal/service"
	"github.com/hello-base/ohashi/internal/storage"
	"github.com/hello-base/ohashi/internal/subscriber"
	"github.com/hello-base/ohashi/internal/version"
	"github.com/hello-base/ohashi/internal/views"
)

type testServer struct {
	engine  *gin.Engine
	storage *storage.CachedStaticStorage
	static  *handler.StaticHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.DSN = ":memory:"
	cfg.Static.CacheDir = t.TempDir()
	cfg.Static.ManifestPath = filepath.Join(cfg.Static.CacheDir, "staticfiles.json")

	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	require.NoError(t, err)

	bus := eventbus.NewStaticEventBus()
	st, err := storage.NewFromConfig(context.Background(), cfg, storage.WithEvents(bus))
	require.NoError(t, err)
	subscriber.NewStaticEventSubscriber(st).Register(bus)

	repoRepo := repository.NewRepoRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	repoService := service.NewRepositoryService(repoRepo, docRepo)
	docService := service.NewDocumentService(db, docRepo, repoRepo)

	staticHandler := handler.NewStaticHandler(st)
	templates, err := views.NewTemplateSet(embed.GetTemplatesFS(""), template.FuncMap{"static": staticHandler.URL})
	require.NoError(t, err)

	r := Setup(cfg,
		handler.NewRepositoryHandler(repoService, templates),
		handler.NewDocumentHandler(docService),
		handler.NewPageHandler(templates),
		staticHandler,
		handler.NewVersionHandler(version.Current),
	)
	return &testServer{engine: r, storage: st, static: staticHandler}
}

func (s *testServer) do(method, target string, body any, header http.Header) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func pjaxHeader() http.Header {
	h := http.Header{}
	h.Set(views.PJAXHeader, "true")
	return h
}

func TestVersionAPI(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/version", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ohashi", resp["title"])
	assert.Equal(t, "0.0.4.dev", resp["version"])
}

func TestRepositoryPagesRenderPJAXFragments(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/repositories", map[string]string{
		"name": "Hello Base",
		"url":  "https://github.com/hello-base/ohashi",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var repo struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repo))

	full := s.do(http.MethodGet, "/repositories", nil, nil)
	require.Equal(t, http.StatusOK, full.Code)
	assert.Contains(t, full.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, full.Body.String(), "Hello Base")
	assert.Equal(t, views.PJAXHeader, full.Header().Get("Vary"))

	partial := s.do(http.MethodGet, "/repositories", nil, pjaxHeader())
	require.Equal(t, http.StatusOK, partial.Code)
	assert.NotContains(t, partial.Body.String(), "<!DOCTYPE html>")
	assert.True(t, strings.HasPrefix(partial.Body.String(), "<h1>Repositories</h1>"), partial.Body.String())
	assert.Contains(t, partial.Body.String(), "Hello Base")

	detail := s.do(http.MethodGet, "/repositories/"+repo.ID, nil, pjaxHeader())
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "No documents.")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/repositories/not-a-uuid", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/repositories?page=9", nil, nil).Code)
}

func TestDocumentRequiresReadyRepository(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/repositories", map[string]string{
		"name": "docs",
		"url":  "https://example.com/docs",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var repo struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repo))

	doc := map[string]any{"repository_id": repo.ID, "title": "Getting Started", "content": "# hi"}

	w = s.do(http.MethodPost, "/api/documents", doc, nil)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	var verr struct {
		Fields map[string][]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.Contains(t, verr.Fields, "repository_id")

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/repositories/"+repo.ID+"/set-ready", nil, nil).Code)

	w = s.do(http.MethodPost, "/api/documents", doc, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/repositories/"+repo.ID+"/documents/export", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
}

func TestPages(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/pages/about", nil, pjaxHeader())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Page: about")

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/pages/missing", nil, nil).Code)
}

func TestStaticServesHashedAssets(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.storage.Save(ctx, "css/site.css", strings.NewReader("body{color:red}"))
	require.NoError(t, err)
	_, err = s.storage.PostProcess(ctx, []string{"css/site.css"})
	require.NoError(t, err)

	w := s.do(http.MethodGet, "/static/css/site.css", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{color:red}", w.Body.String())
	assert.Empty(t, w.Header().Get("Cache-Control"))

	hashedURL := s.static.URL("css/site.css")
	require.True(t, strings.HasPrefix(hashedURL, "/static/css/site."), hashedURL)
	require.NotEqual(t, "/static/css/site.css", hashedURL)

	w = s.do(http.MethodGet, hashedURL, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/static/css/missing.css", nil, nil).Code)
}

func TestRequestBinding(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/repositories", map[string]string{"name": "x", "url": "not a url"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/repositories", map[string]string{"url": "https://example.com/x"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/repositories", map[string]string{"name": "x", "url": "https://example.com/x"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var repo struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repo))
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/repositories/"+repo.ID+"/set-ready", nil, nil).Code)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"repository_id": repo.ID}},
		{"repository id not uuid", map[string]any{"repository_id": "42", "title": "t"}},
		{"bad author", map[string]any{"repository_id": repo.ID, "title": "t", "author": "nobody"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/documents", tc.body, nil).Code)
		})
	}

	w = s.do(http.MethodPost, "/api/documents", map[string]any{
		"repository_id": repo.ID, "title": "t", "author": "dev@example.com",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/documents/"+doc.ID, map[string]any{}, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/documents/"+doc.ID, map[string]any{"content": "v2"}, nil).Code)
}

func TestStaticRangeRequestsAreNotCompressed(t *testing.T) {
	s := newTestServer(t)
	_, err := s.storage.Save(context.Background(), "css/site.css", strings.NewReader("body{color:red}"))
	require.NoError(t, err)

	gzipped := http.Header{}
	gzipped.Set("Accept-Encoding", "gzip")
	w := s.do(http.MethodGet, "/static/css/site.css", nil, gzipped)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	ranged := http.Header{}
	ranged.Set("Accept-Encoding", "gzip")
	ranged.Set("Range", "bytes=0-3")
	w = s.do(http.MethodGet, "/static/css/site.css", nil, ranged)
	require.Equal(t, http.StatusPartialContent, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "body", w.Body.String())
}
