package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/pack"
)

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var (
		gameVersion string
		loaderName  string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Modrinth for mods matching a game version and loader",
		Example: `  modmill search sodium --game-version 1.21 --loader fabric
  modmill search "performance" -g 1.20.1 -l forge --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			loader, err := pack.ParseLoader(loaderName)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			prog := newProgress(logger)
			sp := newSpinner(ctx, "Searching Modrinth...")
			sp.start()
			hits, err := a.client.Search(ctx, args[0], gameVersion, loader, limit)
			sp.stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Found %d mods for %s/%s", len(hits), gameVersion, loader))

			if len(hits) == 0 {
				printWarning("No mods match %q for %s on %s", args[0], gameVersion, loader)
				return nil
			}

			tbl := newTable("#", "Title", "Slug", "Downloads")
			for i, h := range hits {
				tbl.Row(fmt.Sprint(i+1), h.Title, h.Slug, fmt.Sprint(h.Downloads))
			}
			fmt.Println(tbl.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&gameVersion, "game-version", "g", "", "target game version (required)")
	cmd.Flags().StringVarP(&loaderName, "loader", "l", "", "mod loader: fabric, forge, quilt, neoforge (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results")
	_ = cmd.MarkFlagRequired("game-version")
	_ = cmd.MarkFlagRequired("loader")

	return cmd
}
