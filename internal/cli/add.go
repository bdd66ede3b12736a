package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/modrinth"
	"github.com/modmill/modmill/pkg/pack"
	"github.com/modmill/modmill/pkg/resolve"
)

func newAddCmd(flags *rootFlags) *cobra.Command {
	var first bool

	cmd := &cobra.Command{
		Use:   "add <pack> <query>...",
		Short: "Search for mods and add them to a pack",
		Long: `Search Modrinth for each query, pick a result, resolve the best build
for the pack's game version and loader, download it into the pack
directory, and record it in the manifest.

The pack is saved after every successful add, so interrupting a long
session never leaves the manifest out of sync with the downloads.`,
		Example: `  modmill add My-Pack-1.21-fabric sodium lithium
  modmill add My-Pack-1.21-fabric "shader support" --first`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.loadPack(args[0])
			if err != nil {
				return err
			}
			dir := a.store.PackDir(p)

			added := 0
			for _, query := range args[1:] {
				ok, err := a.addOne(cmd, p, dir, query, first)
				if err != nil {
					return err
				}
				if ok {
					added++
				}
			}

			printSuccess("Added %d of %d mods to %q", added, len(args[1:]), p.Name)
			logger.Debugf("pack %s now has %d mods", p.ID, len(p.Mods))
			return nil
		},
	}

	cmd.Flags().BoolVar(&first, "first", false, "take the top search hit without prompting")

	return cmd
}

// addOne searches, selects, resolves, downloads, and records a single
// mod. A miss (no hits, incompatible, duplicate, user skip) is reported
// and skipped; only transport and storage failures abort the session.
func (a *app) addOne(cmd *cobra.Command, p *pack.Pack, dir, query string, first bool) (bool, error) {
	ctx := cmd.Context()

	sp := newSpinner(ctx, fmt.Sprintf("Searching for %q...", query))
	sp.start()
	hits, err := a.client.Search(ctx, query, p.GameVersion, p.Loader, 0)
	sp.stop()
	if err != nil {
		return false, err
	}
	if len(hits) == 0 {
		printWarning("No results for %q on %s/%s", query, p.GameVersion, p.Loader)
		return false, nil
	}

	var hit modrinth.Project
	if first || len(hits) == 1 {
		hit = hits[0]
	} else {
		chosen, ok, err := pickProject(hits)
		if err != nil {
			return false, err
		}
		if !ok {
			printDetail("Skipped %q", query)
			return false, nil
		}
		hit = chosen
	}

	ref := hit.Ref()
	if p.Has(ref) {
		printWarning("%s is already in the pack", ref.Title)
		return false, nil
	}

	res, ok, err := resolve.ResolveLatest(ctx, a.client, ref, p.GameVersion, p.Loader)
	if err != nil {
		return false, err
	}
	if !ok {
		printWarning("%s has no build for %s on %s", ref.Title, p.GameVersion, p.Loader)
		return false, nil
	}

	dest := filepath.Join(dir, res.File.Name)
	sp = newSpinner(ctx, fmt.Sprintf("Downloading %s...", res.File.Name))
	sp.start()
	err = a.client.Download(ctx, res.File.URL, dest)
	sp.stop()
	if err != nil {
		return false, err
	}

	entry := pack.Entry{
		Ref:           ref,
		VersionID:     res.Build.ID,
		VersionNumber: res.Build.VersionNumber,
		FileName:      res.File.Name,
		URL:           res.File.URL,
	}
	if err := a.store.AddEntry(p, entry); err != nil {
		return false, err
	}

	printSuccess("%s %s", ref.Title, res.Build.VersionNumber)
	return true, nil
}
