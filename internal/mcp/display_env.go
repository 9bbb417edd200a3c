package mcp

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/macwm/macwm/internal/runtimepath"
)

// Overridable in tests.
var (
	loginctl                  = runLoginctl
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

var errNoDisplay = errors.New(`no X display found; set display in config (e.g. display: ":1") or export DISPLAY for the MCP server`)

// EnsureX11Env makes sure this process can reach the user's X session and
// the window manager's control socket. The MCP server is usually started by
// an agent host that strips DISPLAY and XAUTHORITY from the environment.
// It returns the display the server will talk to.
func EnsureX11Env(configDisplay string) (string, error) {
	env := os.Environ()
	display, xauthority, err := resolveX11Env(env, configDisplay)
	if err != nil {
		return "", err
	}
	if envValue(env, "XDG_RUNTIME_DIR") == "" {
		if dir, err := runtimepath.Dir(); err == nil && dir != "" {
			os.Setenv("XDG_RUNTIME_DIR", dir)
		}
	}
	os.Setenv("DISPLAY", display)
	if xauthority != "" {
		os.Setenv("XAUTHORITY", xauthority)
	}
	return display, nil
}

// resolveX11Env picks DISPLAY and XAUTHORITY from, in order: env, the
// configured display, the logind session, the X socket directory and
// ~/.Xauthority.
func resolveX11Env(env []string, configDisplay string) (display, xauthority string, err error) {
	display = firstNonEmpty(envValue(env, "DISPLAY"), configDisplay)
	xauthority = envValue(env, "XAUTHORITY")

	if display == "" || xauthority == "" {
		sessionDisplay, sessionXauth := detectSessionX11EnvFn()
		display = firstNonEmpty(display, sessionDisplay)
		xauthority = firstNonEmpty(xauthority, sessionXauth)
	}
	if display == "" {
		display = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if display == "" {
		return "", "", errNoDisplay
	}
	if xauthority == "" {
		xauthority = homeXauthority(envValue(env, "HOME"))
	}
	return display, xauthority, nil
}

func homeXauthority(home string) string {
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return ""
	}
	path := filepath.Join(home, ".Xauthority")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func runLoginctl(args ...string) (string, error) {
	out, err := exec.Command("loginctl", args...).Output()
	return string(out), err
}

// detectSessionX11Env asks logind for this user's graphical session and
// prefers the session leader's own DISPLAY and XAUTHORITY.
func detectSessionX11Env() (display, xauthority string) {
	out, err := loginctl("list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, id := range parseLoginctlSessions(out, strconv.Itoa(os.Getuid())) {
		display = sessionProp(id, "Display")
		if display == "" || strings.EqualFold(display, "n/a") {
			continue
		}
		if leader := sessionProp(id, "Leader"); leader != "" && leader != "0" {
			if env, err := readProcEnviron(leader); err == nil {
				display = firstNonEmpty(env["DISPLAY"], display)
				xauthority = strings.TrimSpace(env["XAUTHORITY"])
			}
		}
		return display, xauthority
	}
	return "", ""
}

// parseLoginctlSessions returns the ids of uid's sessions from
// "loginctl list-sessions --no-legend" output.
func parseLoginctlSessions(output, uid string) []string {
	var ids []string
	for line := range strings.Lines(output) {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			ids = append(ids, fields[0])
		}
	}
	return ids
}

func sessionProp(id, prop string) string {
	out, err := loginctl("show-session", id, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	for _, entry := range strings.Split(string(data), "\x00") {
		if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env, nil
}

// detectDisplayFromSockets returns the highest-numbered display with a
// socket in dir ("X0", "X1", ...).
func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}
	var displays []int
	for _, entry := range entries {
		num, ok := strings.CutPrefix(entry.Name(), "X")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(num); err == nil {
			displays = append(displays, n)
		}
	}
	if len(displays) == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", slices.Max(displays))
}

func envValue(env []string, key string) string {
	for _, e := range slices.Backward(env) {
		if k, v, ok := strings.Cut(e, "="); ok && k == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
