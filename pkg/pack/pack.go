// Package pack defines the mod pack data model and its on-disk store.
//
// A Pack is a named collection of resolved mods for one (game version,
// loader) pair. It is persisted as a pack.json manifest next to the
// downloaded jar files. Packs are snapshots: migrating a pack to a new
// game version produces a new pack in a new directory, never an in-place
// rewrite of the old one.
package pack

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Source is the provenance tag recorded in every manifest.
const Source = "modrinth"

// Ref identifies a project in the registry. Both the stable ProjectID and
// the human-readable Slug are valid registry keys; identity comparisons
// must accept either.
type Ref struct {
	ProjectID string `json:"project_id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
}

// Key returns the identifier to use in registry requests: the stable
// project id when known, otherwise the slug.
func (r Ref) Key() string {
	if r.ProjectID != "" {
		return r.ProjectID
	}
	return r.Slug
}

// Matches reports whether two refs name the same project, by id or slug.
func (r Ref) Matches(other Ref) bool {
	if r.ProjectID != "" && r.ProjectID == other.ProjectID {
		return true
	}
	return r.Slug != "" && r.Slug == other.Slug
}

// Entry is a materialized mod within a pack: the project reference plus
// the specific build and file chosen for the pack's target. Entries are
// never mutated; migration produces a fresh Entry in the new pack.
type Entry struct {
	Ref
	VersionID     string `json:"version_id"`
	VersionNumber string `json:"version_number"`
	FileName      string `json:"file_name"`
	URL           string `json:"url"`
}

// Pack is the top-level aggregate persisted as a manifest.
//
// Mods preserves insertion order; the order is significant for display
// only. Incompatible carries {project id → title} for mods that could
// not be resolved during the most recent migration. It is diagnostic
// metadata and is not re-resolved.
//
// Invariant: every entry's build advertises support for GameVersion and
// Loader; the resolver enforces this before an entry is created.
type Pack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	GameVersion  string            `json:"game_version"`
	Loader       Loader            `json:"loader"`
	CreatedAt    time.Time         `json:"created_at"`
	Source       string            `json:"source"`
	Mods         []Entry           `json:"mods"`
	Incompatible map[string]string `json:"incompatible,omitempty"`
}

// Has reports whether the pack already contains an entry for ref.
func (p *Pack) Has(ref Ref) bool {
	for _, e := range p.Mods {
		if e.Ref.Matches(ref) {
			return true
		}
	}
	return false
}

// DirName returns the pack's canonical directory name,
// "<sanitized name>-<version>-<loader>".
func (p *Pack) DirName() string {
	return fmt.Sprintf("%s-%s-%s", SanitizeName(p.Name), p.GameVersion, p.Loader)
}

var (
	invalidChars = regexp.MustCompile(`[^A-Za-z0-9-_ ]+`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// SanitizeName makes a pack name safe for use as a directory name:
// characters outside [A-Za-z0-9-_ ] are stripped, the ends are trimmed,
// and internal whitespace runs collapse to single hyphens. The function
// is pure and total.
func SanitizeName(name string) string {
	s := invalidChars.ReplaceAllString(name, "")
	s = strings.TrimSpace(s)
	return spaceRuns.ReplaceAllString(s, "-")
}
