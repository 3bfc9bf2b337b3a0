// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/cache"
	"github.com/tomtom215/moodmix/internal/config"
	"github.com/tomtom215/moodmix/internal/curation"
	"github.com/tomtom215/moodmix/internal/database"
	"github.com/tomtom215/moodmix/internal/ingest"
	"github.com/tomtom215/moodmix/internal/models"
)

// testDBSemaphore allows a single live DuckDB instance across the package's tests.
var testDBSemaphore = make(chan struct{}, 1)

var promptIDPattern = regexp.MustCompile(`id: ([^ |\n]+)`)

// fakeGenerator answers with every track id found in the prompt unless a
// reply or error is scripted.
type fakeGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.reply != "" {
		return g.reply, nil
	}

	var parts []string
	for _, m := range promptIDPattern.FindAllStringSubmatch(prompt, -1) {
		parts = append(parts, fmt.Sprintf(`{"id":%q,"weight":0.8}`, m[1]))
	}
	return `{"tracks":[` + strings.Join(parts, ",") + `]}`, nil
}

func (g *fakeGenerator) script(reply string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reply, g.err = reply, err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type testServer struct {
	handler   http.Handler
	db        *database.DB
	blobs     blobstore.Store
	generator *fakeGenerator
	cache     *cache.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	blobs, err := blobstore.NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore() error = %v", err)
	}

	store := cache.NewMemoryStore()
	topTracks := cache.NewTopTracksCache(store, time.Minute)
	gen := &fakeGenerator{}

	curator := curation.NewService(db, gen, topTracks, blobs)
	uploader := ingest.NewService(db, blobs, ingest.Options{MaxFileBytes: 1 << 20})

	cfg := &config.Config{Storage: config.StorageConfig{MaxUploadBytes: 1 << 20}}
	handler := NewHandler(db, curator, uploader, blobs, cfg)
	handler.SetCacheChecker(topTracks)
	handler.SetBreakerState(func() string { return "closed" })

	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	return &testServer{
		handler:   NewRouter(handler, mw).SetupChi(),
		db:        db,
		blobs:     blobs,
		generator: gen,
		cache:     store,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func (s *testServer) delete(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, httptest.NewRequest(http.MethodDelete, path, nil))
}

type filePart struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func audioPart(name string, data string) filePart {
	return filePart{field: "files", name: name, contentType: "audio/mpeg", data: []byte(data)}
}

func multipartRequest(t *testing.T, parts ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.name))
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart() error = %v", err)
		}
		if _, err := io.Copy(w, bytes.NewReader(p.data)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/tracks/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// upload stores the given parts and returns the created tracks.
func (s *testServer) upload(t *testing.T, parts ...filePart) []models.Track {
	t.Helper()
	rec := s.do(t, multipartRequest(t, parts...))
	assertStatusCode(t, rec.Code, http.StatusCreated, "upload")
	return decodeEnvelope[models.UploadResult](t, rec).Data.Tracks
}

type envelope[T any] struct {
	Status   string           `json:"status"`
	Data     T                `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

// assertStatusCode checks HTTP response status code
func assertStatusCode(t *testing.T, got, want int, testName string) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected status %d, got %d", testName, want, got)
	}
}

// assertErrorCode checks the error envelope of a failed request.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) *models.APIError {
	t.Helper()
	assertStatusCode(t, rec.Code, wantStatus, wantCode)
	env := decodeEnvelope[interface{}](t, rec)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != wantCode {
		t.Errorf("error code = %q, want %q", env.Error.Code, wantCode)
	}
	return env.Error
}
