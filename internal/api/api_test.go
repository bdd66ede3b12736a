package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modmill/modmill/pkg/pack"
	"github.com/modmill/modmill/pkg/resolve"
)

type fakeLister struct {
	builds map[string][]resolve.Build
}

func (f *fakeLister) ListBuilds(ctx context.Context, idOrSlug, gameVersion string, loader pack.Loader) ([]resolve.Build, error) {
	return f.builds[idOrSlug+"@"+gameVersion], nil
}

func newTestServer(t *testing.T, lister resolve.Lister) (*httptest.Server, *pack.Store) {
	t.Helper()
	store := pack.NewStore(t.TempDir())
	logger := log.New(io.Discard)
	srv := httptest.NewServer(New(store, lister, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestListPacks(t *testing.T) {
	srv, store := newTestServer(t, &fakeLister{})

	_, err := store.Create("Alpha", "1.20.1", pack.LoaderFabric)
	require.NoError(t, err)
	_, err = store.Create("Beta", "1.21", pack.LoaderForge)
	require.NoError(t, err)

	var got listResponse
	status := getJSON(t, srv.URL+"/api/packs", &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Alpha-1.20.1-fabric", "Beta-1.21-forge"}, got.Packs)
}

func TestListPacks_EmptyStore(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLister{})

	var got listResponse
	status := getJSON(t, srv.URL+"/api/packs", &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, got.Packs)
}

func TestGetPack(t *testing.T) {
	srv, store := newTestServer(t, &fakeLister{})

	created, err := store.Create("Alpha", "1.20.1", pack.LoaderFabric)
	require.NoError(t, err)

	var got pack.Pack
	status := getJSON(t, srv.URL+"/api/packs/"+created.DirName(), &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, pack.LoaderFabric, got.Loader)
}

func TestGetPack_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLister{})

	var got errorResponse
	status := getJSON(t, srv.URL+"/api/packs/nope", &got)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", got.Code)
}

func TestCheck(t *testing.T) {
	lister := &fakeLister{builds: map[string][]resolve.Build{
		"p1@1.21": {{
			ID:            "v2",
			VersionNumber: "2.0.0",
			Published:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			Files:         []resolve.BuildFile{{Name: "p1.jar", Primary: true, URL: "https://cdn.example.com/p1.jar"}},
		}},
	}}
	srv, store := newTestServer(t, lister)

	p, err := store.Create("Alpha", "1.20.1", pack.LoaderFabric)
	require.NoError(t, err)
	require.NoError(t, store.AddEntry(p, pack.Entry{
		Ref:      pack.Ref{ProjectID: "p1", Slug: "one", Title: "One"},
		FileName: "one.jar",
	}))
	require.NoError(t, store.AddEntry(p, pack.Entry{
		Ref:      pack.Ref{ProjectID: "p2", Slug: "two", Title: "Two"},
		FileName: "two.jar",
	}))

	var got checkResponse
	status := getJSON(t, srv.URL+"/api/packs/"+p.DirName()+"/check?game_version=1.21", &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alpha", got.Pack)
	assert.Equal(t, "1.21", got.GameVersion)
	assert.Equal(t, 1, got.Compatible)
	assert.Equal(t, 1, got.Incompatible)
	require.Len(t, got.Results, 2)
	assert.Equal(t, checkResult{ProjectID: "p1", Title: "One", Compatible: true, VersionNumber: "2.0.0"}, got.Results[0])
	assert.Equal(t, checkResult{ProjectID: "p2", Title: "Two", Compatible: false}, got.Results[1])
}

func TestCheck_MissingGameVersion(t *testing.T) {
	srv, store := newTestServer(t, &fakeLister{})

	p, err := store.Create("Alpha", "1.20.1", pack.LoaderFabric)
	require.NoError(t, err)

	var got errorResponse
	status := getJSON(t, srv.URL+"/api/packs/"+p.DirName()+"/check", &got)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", got.Code)
}
