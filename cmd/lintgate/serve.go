package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/lintgate/internal/adapter/driving/http"
)

const (
	// runSlack covers diffing and comment reconciliation on top of the
	// linter timeout.
	runSlack = 2 * time.Minute
	// writeSlack lets a run's response be written after the run used its
	// whole budget.
	writeSlack = 30 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			// A zero linter timeout leaves runs unbounded, and so the write.
			var runTimeout, writeTimeout time.Duration
			if c.cfg.LinterTimeout > 0 {
				runTimeout = c.cfg.LinterTimeout + runSlack
				writeTimeout = runTimeout + writeSlack
			}

			h := httphandler.NewHandler(a.service, a.runs, runTimeout, c.logger)

			srv := &http.Server{
				Addr:              c.cfg.ListenAddr,
				Handler:           httphandler.NewServeMux(h, c.logger),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.logger.Info("http server starting", "addr", c.cfg.ListenAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}
			c.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				c.logger.Error("http server shutdown error", "error", err)
			}

			c.logger.Info("shutdown complete")
			return nil
		},
	}
}
