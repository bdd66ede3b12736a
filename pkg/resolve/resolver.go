// Package resolve implements compatibility resolution: picking the best
// build of a mod for a (game version, loader) target, and reconciling a
// whole pack against a new game version.
//
// "No compatible build" is a first-class outcome here, not an error.
// Resolution functions report it through their boolean/report results and
// reserve errors for underlying transport failures.
package resolve

import (
	"context"
	"time"

	"github.com/modmill/modmill/pkg/pack"
)

// Build is one publishable artifact of a mod, as reported by the
// registry. Builds are immutable once fetched.
type Build struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	VersionNumber string      `json:"version_number"`
	Published     time.Time   `json:"published"`
	GameVersions  []string    `json:"game_versions"`
	Loaders       []string    `json:"loaders"`
	Files         []BuildFile `json:"files"`
}

// BuildFile is a downloadable file within a build.
type BuildFile struct {
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
	URL     string `json:"url"`
}

// Resolution is a successfully resolved build together with the file
// chosen from it.
type Resolution struct {
	Build Build
	File  BuildFile
}

// Lister lists the builds of a project that declare support for both the
// game version and the loader. An empty result means the project exists
// but has no matching build. Implemented by the Modrinth client.
type Lister interface {
	ListBuilds(ctx context.Context, idOrSlug, gameVersion string, loader pack.Loader) ([]Build, error)
}

// ResolveLatest selects the best build of a project for the target.
//
// The build with the most recent publication timestamp wins. Ties keep
// the first such build in registry order; that order is not contractually
// guaranteed by the registry, so the tie-break is best-effort. The chosen
// file is the one flagged primary, or the first file when none is. A
// build list that is empty, or whose best build has no files, yields
// (nil, false, nil): the project is incompatible with the target.
//
// The only errors returned are transport failures from the Lister,
// propagated unchanged.
func ResolveLatest(ctx context.Context, l Lister, ref pack.Ref, gameVersion string, loader pack.Loader) (*Resolution, bool, error) {
	builds, err := l.ListBuilds(ctx, ref.Key(), gameVersion, loader)
	if err != nil {
		return nil, false, err
	}
	if len(builds) == 0 {
		return nil, false, nil
	}

	best := builds[0]
	for _, b := range builds[1:] {
		if b.Published.After(best.Published) {
			best = b
		}
	}

	file, ok := selectFile(best.Files)
	if !ok {
		// A build with no files is as unusable as no build at all.
		return nil, false, nil
	}
	return &Resolution{Build: best, File: file}, true, nil
}

// selectFile picks the primary-flagged file, falling back to the first
// file in build order. Reports false for an empty file set.
func selectFile(files []BuildFile) (BuildFile, bool) {
	if len(files) == 0 {
		return BuildFile{}, false
	}
	for _, f := range files {
		if f.Primary {
			return f, true
		}
	}
	return files[0], true
}
