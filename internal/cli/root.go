package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/buildinfo"
)

// Execute runs the modmill CLI and returns an error if any command fails.
//
// The root command wires all subcommands (search, create, add, check,
// migrate, list, serve, cache) and configures logging from the --verbose
// flag. The logger is attached to the context and accessible to all
// commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "modmill",
		Short:        "modmill manages Modrinth mod packs",
		Long:         `modmill builds and maintains mod packs: search Modrinth, create packs for a game version and loader, add mods, and migrate whole packs to new game versions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/modmill/config.toml)")
	root.PersistentFlags().BoolVar(&flags.refresh, "refresh", false, "bypass the registry response cache")

	root.AddCommand(newSearchCmd(flags))
	root.AddCommand(newCreateCmd(flags))
	root.AddCommand(newAddCmd(flags))
	root.AddCommand(newCheckCmd(flags))
	root.AddCommand(newMigrateCmd(flags))
	root.AddCommand(newListCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newCacheCmd(flags))

	return root.ExecuteContext(ctx)
}
