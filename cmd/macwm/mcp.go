package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/macwm/macwm/internal/ipc"
	"github.com/macwm/macwm/internal/mcp"
	"github.com/macwm/macwm/internal/runtimepath"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
		Args:  withUsage(cobra.NoArgs),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve window management tools over stdio",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig()
			if err != nil {
				return err
			}
			cfg := res.Config
			// stdout carries the protocol; logs go to stderr.
			logger := newLogger(os.Stderr, cfg.SlogLevel())

			display, err := mcp.EnsureX11Env(cfg.Display)
			if err != nil {
				return err
			}
			socket, err := runtimepath.SocketPath(display)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			server := mcp.NewServer(ipc.NewClient(socket), mcp.EWMHController{Display: display}, logger)
			logger.Info("mcp server starting", "display", display, "socket", socket)
			if err := server.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	})
	return cmd
}
