package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayham/sitekit/internal/server"
	"github.com/ayham/sitekit/pkg/version"
	"github.com/spf13/cobra"
)

const shutdownGrace = 10 * time.Second

// newServeCmd creates the serve command.
func newServeCmd(c *container) *cobra.Command {
	var servePort int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built site for local preview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			port := c.cfg.PreviewPort
			if servePort != 0 {
				port = servePort
			}
			srv := server.New(server.Config{
				Port:    port,
				SiteDir: c.cfg.OutputDir,
				Version: version.Summary(),
			}, c.fsRepo, c.log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-sigCh:
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to the configured one)")
	return cmd
}
