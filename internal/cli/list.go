package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the packs under the storage root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			names, err := a.store.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printWarning("No packs under %s", a.store.Root())
				return nil
			}

			tbl := newTable("Pack", "Game Version", "Loader", "Mods")
			for _, name := range names {
				p, err := a.store.LoadByName(name)
				if err != nil {
					// Corrupt or half-written directory: show it, don't hide it.
					tbl.Row(name, styleError.Render("unreadable"), "", "")
					continue
				}
				tbl.Row(p.Name, p.GameVersion, p.Loader.String(), fmt.Sprint(len(p.Mods)))
			}
			fmt.Println(tbl.Render())
			printDetail("Root: %s", a.store.Root())
			return nil
		},
	}
}
