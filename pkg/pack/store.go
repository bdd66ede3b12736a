package pack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/modmill/modmill/pkg/errors"
)

// ManifestName is the manifest filename inside every pack directory.
const ManifestName = "pack.json"

// Store owns the on-disk representation of packs under a single root
// directory. The root is explicit configuration; the store never reads
// the process working directory.
//
// All serialization of manifests goes through the store. A Save writes
// the full manifest atomically (temp file + rename), so a concurrent
// reader never observes a partially written pack.json.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory is created on
// first Create/Save, not here.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// PackDir returns the canonical directory for p under the store root.
func (s *Store) PackDir(p *Pack) string {
	return filepath.Join(s.root, p.DirName())
}

// Create allocates a new empty pack and its backing directory.
// It fails with CONFLICT if the directory already holds content, so an
// existing pack is never silently overwritten.
func (s *Store) Create(name, gameVersion string, loader Loader) (*Pack, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pack name cannot be empty")
	}
	if gameVersion == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "game version cannot be empty")
	}
	if !loader.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidLoader, "unknown loader %q", loader)
	}

	p := &Pack{
		ID:          uuid.NewString(),
		Name:        name,
		GameVersion: gameVersion,
		Loader:      loader,
		CreatedAt:   time.Now().UTC(),
		Source:      Source,
	}

	if err := s.CheckNew(p); err != nil {
		return nil, err
	}

	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CheckNew verifies that p's canonical directory is free to use. It
// fails with CONFLICT if the directory already holds content, so a
// materialization never silently overwrites another pack.
func (s *Store) CheckNew(p *Pack) error {
	dir := s.PackDir(p)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return errors.New(errors.ErrCodeConflict, "pack directory %s already exists with content", dir)
	}
	return nil
}

// Load reads and validates the manifest in dir.
// It fails with NOT_FOUND if no manifest exists there, and with
// CORRUPT_MANIFEST if the manifest cannot be parsed into a valid pack.
func (s *Store) Load(dir string) (*Pack, error) {
	path := filepath.Join(dir, ManifestName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "no pack manifest at %s", dir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading %s", path)
	}

	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptManifest, err, "parsing %s", path)
	}
	if err := validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadByName loads the pack stored under the given directory name
// relative to the store root.
func (s *Store) LoadByName(name string) (*Pack, error) {
	return s.Load(filepath.Join(s.root, name))
}

// Save serializes the full pack to its canonical directory, creating the
// directory if needed. The manifest is written to a temporary file and
// renamed into place, so readers see either the old or the new manifest,
// never a partial one.
func (s *Store) Save(p *Pack) error {
	dir := s.PackDir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating pack directory %s", dir)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding manifest for %s", p.Name)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".pack-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating temp manifest in %s", dir)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "writing manifest for %s", p.Name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "closing temp manifest for %s", p.Name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, ManifestName)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, err, "replacing manifest for %s", p.Name)
	}
	return nil
}

// AddEntry appends an entry and persists the pack immediately, so a
// partially completed add session still leaves a valid, loadable pack.
func (s *Store) AddEntry(p *Pack, e Entry) error {
	p.Mods = append(p.Mods, e)
	if err := s.Save(p); err != nil {
		p.Mods = p.Mods[:len(p.Mods)-1]
		return err
	}
	return nil
}

// List returns the directory names under the root that contain a pack
// manifest, sorted for stable display.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading store root %s", s.root)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), ManifestName)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func validate(p *Pack) error {
	switch {
	case p.Name == "":
		return errors.New(errors.ErrCodeCorruptManifest, "manifest missing pack name")
	case p.GameVersion == "":
		return errors.New(errors.ErrCodeCorruptManifest, "manifest missing game version")
	case !p.Loader.Valid():
		return errors.New(errors.ErrCodeCorruptManifest, "manifest has unknown loader %q", p.Loader)
	}
	return nil
}
