package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/modmill/modmill/internal/api"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only HTTP API over the pack store",
		Long: `Start an HTTP server exposing packs and dry-run compatibility checks
as JSON, for scripts and dashboards that drive modmill without a
terminal. The server is read-only: it never downloads files or writes
manifests.`,
		Example: `  modmill serve --addr :8080
  curl localhost:8080/api/packs
  curl 'localhost:8080/api/packs/My-Pack-1.20.1-fabric/check?game_version=1.21'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.New(a.store, a.client, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Infof("listening on %s", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "address to listen on")

	return cmd
}
