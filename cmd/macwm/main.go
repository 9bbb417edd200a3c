package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macwm/macwm/internal/config"
)

// usageError marks a command line mistake; it exits with status 2.
type usageError struct{ error }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// withUsage turns argument validation failures into usage errors.
func withUsage(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

type globalFlags struct {
	configPath string
	display    string
	logLevel   string
}

var flags globalFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "macwm",
		Short:         "A small reparenting X11 window manager",
		Long:          "macwm frames every top-level window with a title bar, lets you move and resize windows with Alt+drag, and closes and cycles them with Alt+F4 and Alt+Tab.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file path (default: ~/.config/macwm/config.yaml)")
	root.PersistentFlags().StringVar(&flags.display, "display", "", "X display to manage (default: config display, then $DISPLAY)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newWindowsCmd(),
		newFocusCmd(),
		newCloseCmd(),
		newDesktopCmd(),
		newConfigCmd(),
		newPaletteCmd(),
		newMCPCmd(),
	)
	return root
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

func execute(args []string, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "macwm:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var uerr usageError
	if errors.As(err, &uerr) || strings.HasPrefix(err.Error(), "unknown command") {
		return 2
	}
	return 1
}

// loadConfig reads --config, or the default path, and applies the global
// flag overrides.
func loadConfig() (*config.LoadResult, error) {
	var (
		res *config.LoadResult
		err error
	)
	if flags.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(flags.configPath)
	}
	if err != nil {
		return nil, err
	}
	if flags.display != "" {
		res.Config.Display = flags.display
	}
	if flags.logLevel != "" {
		res.Config.LogLevel = flags.logLevel
		if err := res.Config.Validate(); err != nil {
			return nil, usageError{err}
		}
	}
	return res, nil
}

// newLogger writes human readable text to a terminal and JSON otherwise.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// displayName is the display the command talks to.
func displayName(cfg *config.Config) string {
	if cfg.Display != "" {
		return cfg.Display
	}
	return os.Getenv("DISPLAY")
}
