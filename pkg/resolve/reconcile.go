package resolve

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modmill/modmill/pkg/pack"
)

// workers bounds the concurrent per-entry registry calls during
// reconciliation.
const workers = 4

// Result is the resolution outcome for one pack entry against the
// target version. Resolution is nil when no compatible build exists.
type Result struct {
	Entry      pack.Entry
	Resolution *Resolution
}

// Compatible reports whether the entry resolved to a usable build.
func (r Result) Compatible() bool { return r.Resolution != nil }

// Report is the outcome of reconciling a pack against a new game
// version. Results preserve the pack's entry order regardless of how the
// underlying registry calls completed.
type Report struct {
	Pack        *pack.Pack
	GameVersion string
	Results     []Result
}

// Compatible returns the results that resolved, in entry order.
func (r *Report) Compatible() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Compatible() {
			out = append(out, res)
		}
	}
	return out
}

// Incompatible returns the results that did not resolve, in entry order.
func (r *Report) Incompatible() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Compatible() {
			out = append(out, res)
		}
	}
	return out
}

// Reconcile resolves every entry of p against (newVersion, p.Loader) and
// partitions the outcomes. The loader never changes; only version
// migration is supported.
//
// Reconcile is a pure read: it fetches nothing and persists nothing, so
// it doubles as the dry-run compatibility check. A later NewPack over the
// same report materializes exactly the classification reported here.
//
// Entries are resolved concurrently with a small worker pool; the report
// is reassembled in entry order. The first transport error aborts the
// whole operation and is returned unchanged.
func Reconcile(ctx context.Context, l Lister, p *pack.Pack, newVersion string) (*Report, error) {
	report := &Report{
		Pack:        p,
		GameVersion: newVersion,
		Results:     make([]Result, len(p.Mods)),
	}
	if len(p.Mods) == 0 {
		return report, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error

	for range min(workers, len(p.Mods)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := p.Mods[i]
				res, ok, err := ResolveLatest(ctx, l, entry.Ref, newVersion, p.Loader)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
					continue
				}
				if ok {
					report.Results[i] = Result{Entry: entry, Resolution: res}
				} else {
					report.Results[i] = Result{Entry: entry}
				}
			}
		}()
	}

	for i := range p.Mods {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// NewPack builds the successor pack from a report: same name and loader,
// the report's game version, a fresh identity and timestamp, one entry
// per compatible result, and an incompatible map {project id → title}
// for the misses. The caller owns persistence and file downloads; nothing
// touches disk here, so an aborted migration leaves no trace.
func (r *Report) NewPack() *pack.Pack {
	next := &pack.Pack{
		ID:          uuid.NewString(),
		Name:        r.Pack.Name,
		GameVersion: r.GameVersion,
		Loader:      r.Pack.Loader,
		CreatedAt:   time.Now().UTC(),
		Source:      r.Pack.Source,
	}

	for _, res := range r.Results {
		if !res.Compatible() {
			if next.Incompatible == nil {
				next.Incompatible = make(map[string]string)
			}
			next.Incompatible[incompatKey(res.Entry.Ref)] = res.Entry.Title
			continue
		}
		next.Mods = append(next.Mods, pack.Entry{
			Ref:           res.Entry.Ref,
			VersionID:     res.Resolution.Build.ID,
			VersionNumber: res.Resolution.Build.VersionNumber,
			FileName:      res.Resolution.File.Name,
			URL:           res.Resolution.File.URL,
		})
	}
	return next
}

func incompatKey(ref pack.Ref) string {
	if ref.ProjectID != "" {
		return ref.ProjectID
	}
	return ref.Slug
}
