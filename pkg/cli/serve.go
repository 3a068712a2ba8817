package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/handlers"
	"github.com/ekaya-inc/join-advisor/pkg/hints"
	"github.com/ekaya-inc/join-advisor/pkg/loader"
	"github.com/ekaya-inc/join-advisor/pkg/session"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var suggester *hints.Suggester
			if cfg.Hints.Enabled {
				client, err := hints.NewClient(cfg.Hints, logger)
				if err != nil {
					return fmt.Errorf("create hint client: %w", err)
				}
				suggester = hints.NewSuggester(client, cfg.Hints, logger)
			}

			manager := session.NewManager(cfg, suggester, logger)

			mux := http.NewServeMux()
			handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
			handlers.NewSessionHandler(manager, loader.New(logger), logger).RegisterRoutes(mux)

			addr := cfg.BindAddr + ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting join-advisor",
					zap.String("addr", addr),
					zap.String("version", cfg.Version),
					zap.Bool("hints_enabled", cfg.Hints.Enabled))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}
}
