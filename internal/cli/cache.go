package cli

import (
	"github.com/spf13/cobra"

	"github.com/modmill/modmill/pkg/cache"
	"github.com/modmill/modmill/pkg/config"
)

func newCacheCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry response cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached registry responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			switch a.cfg.CacheBackend {
			case config.BackendFile:
				fc, err := cache.NewFileCache(a.cfg.CacheDir)
				if err != nil {
					return err
				}
				if err := fc.Clear(); err != nil {
					return err
				}
				printSuccess("Cleared cache")
				printDetail("Directory: %s", a.cfg.CacheDir)
			default:
				printWarning("cache clear only supports the file backend (configured: %s)", a.cfg.CacheBackend)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show cache configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			printDetail("Backend: %s", a.cfg.CacheBackend)
			printDetail("Directory: %s", a.cfg.CacheDir)
			printDetail("TTL: %s", a.cfg.CacheTTL.Duration)
			return nil
		},
	})

	return cmd
}
