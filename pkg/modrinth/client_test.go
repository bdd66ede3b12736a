package modrinth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modmill/modmill/pkg/cache"
	"github.com/modmill/modmill/pkg/errors"
	"github.com/modmill/modmill/pkg/pack"
)

func testClient(baseURL string, backend cache.Cache) *Client {
	c := NewClient(backend, time.Hour)
	c.baseURL = baseURL
	return c
}

func TestClient_Search(t *testing.T) {
	var gotQuery, gotFacets, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("query")
		gotFacets = r.URL.Query().Get("facets")
		gotUA = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(searchResponse{Hits: []Project{
			{ProjectID: "AANobbMI", Slug: "sodium", Title: "Sodium", Description: "Rendering engine", Downloads: 1000000},
		}})
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	hits, err := c.Search(context.Background(), "sodium", "1.21", pack.LoaderFabric, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Slug != "sodium" {
		t.Errorf("expected slug sodium, got %s", hits[0].Slug)
	}

	if gotQuery != "sodium" {
		t.Errorf("query = %q, want sodium", gotQuery)
	}
	want := `[["project_type:mod"],["versions:1.21"],["categories:fabric"]]`
	if gotFacets != want {
		t.Errorf("facets = %q, want %q", gotFacets, want)
	}
	if gotUA == "" {
		t.Error("request was missing a User-Agent header")
	}
}

func TestClient_ListBuilds(t *testing.T) {
	var gotLoaders, gotVersions string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/project/sodium/version" {
			http.NotFound(w, r)
			return
		}
		gotLoaders = r.URL.Query().Get("loaders")
		gotVersions = r.URL.Query().Get("game_versions")

		resp := []versionResponse{{
			ID:            "v100",
			Name:          "Sodium 0.5.8",
			VersionNumber: "0.5.8",
			DatePublished: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			GameVersions:  []string{"1.21"},
			Loaders:       []string{"fabric"},
		}}
		resp[0].Files = []struct {
			Filename string `json:"filename"`
			Primary  bool   `json:"primary"`
			URL      string `json:"url"`
		}{
			{Filename: "sodium-0.5.8.jar", Primary: true, URL: "https://cdn.example.com/sodium-0.5.8.jar"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	builds, err := c.ListBuilds(context.Background(), "sodium", "1.21", pack.LoaderFabric)
	if err != nil {
		t.Fatalf("ListBuilds failed: %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("expected 1 build, got %d", len(builds))
	}
	b := builds[0]
	if b.ID != "v100" || b.VersionNumber != "0.5.8" {
		t.Errorf("unexpected build: %+v", b)
	}
	if len(b.Files) != 1 || !b.Files[0].Primary || b.Files[0].Name != "sodium-0.5.8.jar" {
		t.Errorf("unexpected files: %+v", b.Files)
	}

	if gotLoaders != `["fabric"]` {
		t.Errorf("loaders = %q, want [\"fabric\"]", gotLoaders)
	}
	if gotVersions != `["1.21"]` {
		t.Errorf("game_versions = %q, want [\"1.21\"]", gotVersions)
	}
}

func TestClient_ListBuilds_EmptyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	builds, err := c.ListBuilds(context.Background(), "sodium", "9.99", pack.LoaderFabric)
	if err != nil {
		t.Fatalf("ListBuilds failed: %v", err)
	}
	if len(builds) != 0 {
		t.Errorf("expected no builds, got %d", len(builds))
	}
}

func TestClient_ListBuilds_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	_, err := c.ListBuilds(context.Background(), "missing-mod", "1.21", pack.LoaderFabric)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestClient_ListBuilds_RejectsUnsafeID(t *testing.T) {
	c := testClient("http://unused", cache.NewNullCache())

	_, err := c.ListBuilds(context.Background(), "../../admin", "1.21", pack.LoaderFabric)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestClient_ServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	_, err := c.ListBuilds(context.Background(), "sodium", "1.21", pack.LoaderFabric)
	if err != nil {
		t.Fatalf("ListBuilds failed after retries: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	_, err := c.ListBuilds(context.Background(), "sodium", "1.21", pack.LoaderFabric)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestClient_CachesListResponses(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(server.URL, backend)

	for range 3 {
		if _, err := c.ListBuilds(context.Background(), "sodium", "1.21", pack.LoaderFabric); err != nil {
			t.Fatalf("ListBuilds: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 upstream call with warm cache, got %d", calls.Load())
	}
}

func TestClient_Download(t *testing.T) {
	payload := []byte("jar bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("download request missing User-Agent")
		}
		w.Write(payload)
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	dest := filepath.Join(t.TempDir(), "packs", "My-Pack-1.21-fabric", "sodium.jar")
	if err := c.Download(context.Background(), server.URL+"/file.jar", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded %q, want %q", got, payload)
	}
}

func TestClient_Download_RetriesServerErrors(t *testing.T) {
	payload := []byte("jar bytes")
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(payload)
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	dest := filepath.Join(t.TempDir(), "file.jar")
	if err := c.Download(context.Background(), server.URL+"/file.jar", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded %q, want %q", got, payload)
	}
}

func TestClient_Download_FailsOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NewNullCache())

	dest := filepath.Join(t.TempDir(), "file.jar")
	err := c.Download(context.Background(), server.URL+"/file.jar", dest)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("failed download should not leave a file behind")
	}
}

func TestClient_Download_RejectsUnsafeURL(t *testing.T) {
	c := testClient("http://unused", cache.NewNullCache())

	err := c.Download(context.Background(), "file:///etc/passwd", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
