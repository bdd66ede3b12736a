package cli

import (
	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/pack"
)

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var (
		gameVersion string
		loaderName  string
	)

	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a new empty mod pack",
		Example: `  modmill create "My Pack" --game-version 1.21 --loader fabric`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loader, err := pack.ParseLoader(loaderName)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.store.Create(args[0], gameVersion, loader)
			if err != nil {
				return err
			}

			printSuccess("Created pack %q for %s on %s", p.Name, p.GameVersion, p.Loader)
			printDetail("Location: %s", a.store.PackDir(p))
			return nil
		},
	}

	cmd.Flags().StringVarP(&gameVersion, "game-version", "g", "", "target game version (required)")
	cmd.Flags().StringVarP(&loaderName, "loader", "l", "", "mod loader: fabric, forge, quilt, neoforge (required)")
	_ = cmd.MarkFlagRequired("game-version")
	_ = cmd.MarkFlagRequired("loader")

	return cmd
}
