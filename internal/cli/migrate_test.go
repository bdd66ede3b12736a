package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/errors"
	"github.com/modmill/modmill/pkg/pack"
)

// writerDownloader writes placeholder content for every URL, failing
// once it reaches failURL.
type writerDownloader struct {
	failURL string
}

func (d *writerDownloader) Download(ctx context.Context, url, dest string) error {
	if url == d.failURL {
		return errors.New(errors.ErrCodeNetwork, "requesting %s", url)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("jar"), 0o644)
}

func migrationPack() *pack.Pack {
	return &pack.Pack{
		ID:          "id",
		Name:        "My Pack",
		GameVersion: "1.21",
		Loader:      pack.LoaderFabric,
		Source:      pack.Source,
		Mods: []pack.Entry{
			{Ref: pack.Ref{ProjectID: "p1", Title: "One"}, FileName: "one.jar", URL: "https://cdn.example.com/one.jar"},
			{Ref: pack.Ref{ProjectID: "p2", Title: "Two"}, FileName: "two.jar", URL: "https://cdn.example.com/two.jar"},
		},
	}
}

func TestMaterialize_WritesFilesAndManifest(t *testing.T) {
	store := pack.NewStore(t.TempDir())
	next := migrationPack()

	if err := materialize(context.Background(), &writerDownloader{}, store, next); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	dir := store.PackDir(next)
	for _, name := range []string{"one.jar", "two.jar", pack.ManifestName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := store.Load(dir); err != nil {
		t.Errorf("materialized pack should load: %v", err)
	}
}

func TestMaterialize_DownloadFailureLeavesNothingBehind(t *testing.T) {
	store := pack.NewStore(t.TempDir())
	next := migrationPack()

	dl := &writerDownloader{failURL: "https://cdn.example.com/two.jar"}
	err := materialize(context.Background(), dl, store, next)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}

	if _, statErr := os.Stat(store.PackDir(next)); !os.IsNotExist(statErr) {
		t.Error("failed materialization should remove the pack directory")
	}
	// A retry of the same migration must not see a conflict.
	if err := store.CheckNew(next); err != nil {
		t.Errorf("retry after failure should start clean, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase y", "Y\n", true},
		{"full yes", "yes\n", true},
		{"padded yes", "  yes  \n", true},
		{"n", "n\n", false},
		{"empty line defaults to no", "\n", false},
		{"closed input defaults to no", "", false},
		{"garbage", "sure\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetOut(io.Discard)
			if got := confirm(cmd, "Proceed?"); got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
