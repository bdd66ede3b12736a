package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/pack"
	"github.com/modmill/modmill/pkg/resolve"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "migrate <pack> <game-version>",
		Short: "Migrate a pack to a new game version",
		Long: `Resolve every mod against the new game version, show the result, and
on confirmation build the new pack: a fresh directory with freshly
downloaded builds and a new manifest. The original pack is never
modified. Mods without a compatible build are recorded in the new
manifest's incompatible list.

Nothing is written before you confirm; declining leaves no trace.`,
		Example: `  modmill migrate My-Pack-1.20.1-fabric 1.21
  modmill migrate My-Pack-1.20.1-fabric 1.21 --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			newVersion := args[1]

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.loadPack(args[0])
			if err != nil {
				return err
			}

			if p.GameVersion == newVersion {
				printWarning("Pack %q already targets %s", p.Name, newVersion)
				return nil
			}
			warnDowngrade(p.GameVersion, newVersion)

			sp := newSpinner(ctx, fmt.Sprintf("Resolving %d mods against %s...", len(p.Mods), newVersion))
			sp.start()
			report, err := resolve.Reconcile(ctx, a.client, p, newVersion)
			sp.stop()
			if err != nil {
				return err
			}

			renderReport(report)

			if !yes && !confirm(cmd, "Proceed with migration?") {
				printDetail("Migration cancelled; nothing was written")
				return nil
			}

			next := report.NewPack()
			if err := a.store.CheckNew(next); err != nil {
				return err
			}

			prog := newProgress(logger)
			sp = newSpinner(ctx, fmt.Sprintf("Downloading %d mods...", len(next.Mods)))
			sp.start()
			err = materialize(ctx, a.client, a.store, next)
			sp.stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Downloaded %d mods", len(next.Mods)))

			printSuccess("Migrated %q to %s", next.Name, next.GameVersion)
			printDetail("Location: %s", a.store.PackDir(next))
			if len(next.Incompatible) > 0 {
				printWarning("%d mods were left behind; see the manifest's incompatible list", len(next.Incompatible))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// downloader fetches a file to a destination path. Satisfied by
// *modrinth.Client.
type downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// materialize turns a freshly built pack into on-disk state: every
// entry's file downloaded into the pack directory, then the manifest
// saved. All-or-nothing: any failure removes the directory, so a failed
// migration never leaves a partial pack that would CONFLICT on retry.
// The caller must have verified the directory is free via CheckNew.
func materialize(ctx context.Context, dl downloader, store *pack.Store, next *pack.Pack) error {
	dir := store.PackDir(next)
	for _, e := range next.Mods {
		if err := dl.Download(ctx, e.URL, filepath.Join(dir, e.FileName)); err != nil {
			os.RemoveAll(dir)
			return err
		}
	}
	if err := store.Save(next); err != nil {
		os.RemoveAll(dir)
		return err
	}
	return nil
}

// warnDowngrade flags migrations to an older game version. Best-effort:
// silent when either version is not semver-shaped.
func warnDowngrade(from, to string) {
	vFrom, err1 := semver.NewVersion(from)
	vTo, err2 := semver.NewVersion(to)
	if err1 != nil || err2 != nil {
		return
	}
	if vTo.LessThan(vFrom) {
		printWarning("Target %s is older than the pack's current %s", to, from)
	}
}

// confirm reads a yes/no answer from the command's input stream.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
