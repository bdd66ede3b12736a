package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/resolve"
)

func newCheckCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <pack> <game-version>",
		Short: "Dry-run a migration: report compatibility without changing anything",
		Long: `Resolve every mod in the pack against another game version and report
which mods have a compatible build. Nothing is downloaded or written;
the classification is exactly what a subsequent migrate would apply.`,
		Example: `  modmill check My-Pack-1.20.1-fabric 1.21`,
		Args:    cobra.ExactArgs(2),
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

			prog := newProgress(logger)
			sp := newSpinner(ctx, fmt.Sprintf("Checking %d mods against %s...", len(p.Mods), args[1]))
			sp.start()
			report, err := resolve.Reconcile(ctx, a.client, p, args[1])
			sp.stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Checked %d mods", len(report.Results)))

			renderReport(report)
			return nil
		},
	}

	return cmd
}
