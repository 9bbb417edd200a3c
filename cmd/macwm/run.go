package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/macwm/macwm/internal/config"
	"github.com/macwm/macwm/internal/decor"
	"github.com/macwm/macwm/internal/desktop"
	"github.com/macwm/macwm/internal/hotkeys"
	"github.com/macwm/macwm/internal/ipc"
	"github.com/macwm/macwm/internal/menu"
	"github.com/macwm/macwm/internal/runtimepath"
	"github.com/macwm/macwm/internal/wm"
	"github.com/macwm/macwm/internal/x11"
)

const titleForeground = 0xf0f0f0

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Manage the display (foreground)",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig()
			if err != nil {
				return err
			}
			return runWM(res.Config)
		},
	}
}

func runWM(cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg.SlogLevel())
	slog.SetDefault(logger)

	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer conn.Close()
	display := displayName(cfg)
	logger.Info("connected to display", "display", conn.DisplayName())

	desktops := desktop.New(conn, cfg.Desktops, logger)
	mgr, err := wm.New(conn, wm.Options{
		Logger: logger,
		Style: wm.FrameStyle{
			TitleBarHeight: cfg.TitleBarHeight,
			BorderWidth:    cfg.BorderWidth,
			BorderColor:    config.MustColor(cfg.BorderColor),
			Background:     config.MustColor(cfg.FrameColor),
		},
		Bindings:  wm.Bindings(cfg.Bindings),
		Wallpaper: wm.WallpaperMode(cfg.Wallpaper),
		Decorations: decor.NewFactory(conn, decor.Style{
			Height:     cfg.TitleBarHeight,
			Background: config.MustColor(cfg.TitleColor),
			Foreground: titleForeground,
		}, logger),
		Desktops: desktops,
	})
	if err != nil {
		return err
	}

	if err := mgr.Start(); err != nil {
		if errors.Is(err, wm.ErrAnotherWM) {
			return fmt.Errorf("another window manager is already running on %s", conn.DisplayName())
		}
		return err
	}
	if _, err := conn.AnnounceWM("macwm"); err != nil {
		logger.Warn("failed to publish EWMH support", "error", err)
	}
	desktops.Publish()

	openPalette := func() {
		args := []string{"palette", "--display", display}
		if flags.configPath != "" {
			args = append(args, "--config", flags.configPath)
		}
		if err := hotkeys.SpawnSelf(logger, args...); err != nil {
			logger.Warn("failed to open palette", "error", err)
		}
	}
	launch := func(command string) {
		if err := hotkeys.Spawn(command, logger); err != nil {
			logger.Warn("failed to launch", "command", command, "error", err)
		}
	}

	keys := hotkeys.New(conn, conn.RootWindow(), logger)
	keys.RegisterConfig(cfg.Hotkeys, hotkeys.Actions{
		Exec:          launch,
		SwitchDesktop: desktops.SwitchTo,
		MoveToDesktop: mgr.SendFocusedToDesktop,
		Palette:       openPalette,
	})
	mgr.SetHotkeys(keys)

	if cfg.Menu.Enabled {
		items := make([]menu.Item, 0, len(cfg.Menu.Items))
		for _, it := range cfg.Menu.Items {
			items = append(items, menu.Item{Label: it.Label, Command: it.Command})
		}
		bar, err := menu.New(conn, conn.RootWindow(), menu.Config{
			Height:     cfg.Menu.Height,
			Label:      cfg.Menu.Label,
			Background: config.MustColor(cfg.TitleColor),
			Foreground: titleForeground,
			Items:      items,
		}, menu.Actions{Launch: launch, Palette: openPalette}, logger)
		if err != nil {
			logger.Warn("failed to create menu bar", "error", err)
		} else {
			mgr.SetMenu(bar)
		}
	}

	if cfg.IPC.Enabled {
		socket, err := runtimepath.SocketPath(display)
		if err != nil {
			return err
		}
		server := ipc.NewServer(mgr, ipc.ServerOptions{
			SocketPath: socket,
			Display:    display,
			Desktops:   desktops.Count(),
			Logger:     logger,
		})
		if err := server.Start(); err != nil {
			logger.Warn("IPC disabled", "error", err)
		} else {
			defer server.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		logger.Info("shutting down", "signal", sig.String())
		conn.Close()
	}()

	logger.Info("entering event loop")
	return mgr.Run()
}
