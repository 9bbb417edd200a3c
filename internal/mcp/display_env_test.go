package mcp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveX11Env_UsesExistingEnv(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":99", "/tmp/should-not-be-used" },
		func(string) string { return ":88" },
	)
	defer restore()

	env := []string{
		"HOME=" + t.TempDir(),
		"DISPLAY=:7",
		"XAUTHORITY=/tmp/xauth-existing",
	}
	display, xauth, err := resolveX11Env(env, ":1")
	if err != nil {
		t.Fatalf("resolveX11Env returned error: %v", err)
	}
	if display != ":7" || xauth != "/tmp/xauth-existing" {
		t.Fatalf("got %q %q", display, xauth)
	}
}

func TestResolveX11Env_UsesConfigAndFallsBackToHomeXAuthority(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()

	home := t.TempDir()
	want := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(want, []byte("cookie"), 0600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}

	display, xauth, err := resolveX11Env([]string{"HOME=" + home}, ":1")
	if err != nil {
		t.Fatalf("resolveX11Env returned error: %v", err)
	}
	if display != ":1" || xauth != want {
		t.Fatalf("got %q %q", display, xauth)
	}
}

func TestResolveX11Env_UsesDetectedValues(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":5", "/tmp/xauth-detected" },
		func(string) string { return "" },
	)
	defer restore()

	display, xauth, err := resolveX11Env([]string{"HOME=" + t.TempDir()}, "")
	if err != nil {
		t.Fatalf("resolveX11Env returned error: %v", err)
	}
	if display != ":5" || xauth != "/tmp/xauth-detected" {
		t.Fatalf("got %q %q", display, xauth)
	}
}

func TestResolveX11Env_FallsBackToSocketDir(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return ":3" },
	)
	defer restore()

	display, _, err := resolveX11Env([]string{"HOME=" + t.TempDir()}, "")
	if err != nil || display != ":3" {
		t.Fatalf("got %q, %v", display, err)
	}
}

func TestResolveX11Env_ReturnsClearErrorWhenDisplayUnavailable(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()

	_, _, err := resolveX11Env([]string{"HOME=" + t.TempDir()}, "")
	if err == nil || !strings.Contains(err.Error(), "no X display found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureX11Env_SetsProcessEnv(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()

	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "/tmp/xauth-env")
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	display, err := EnsureX11Env(":4")
	if err != nil {
		t.Fatalf("EnsureX11Env error: %v", err)
	}
	if display != ":4" || os.Getenv("DISPLAY") != ":4" {
		t.Fatalf("display = %q, DISPLAY = %q", display, os.Getenv("DISPLAY"))
	}
}

func TestDetectDisplayFromSockets(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"X0", "X2", "not-a-display"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if got := detectDisplayFromSockets(dir); got != ":2" {
		t.Fatalf("detectDisplayFromSockets = %q, want %q", got, ":2")
	}
}

func TestParseLoginctlSessions(t *testing.T) {
	out := strings.Join([]string{
		"1 1000 george seat0",
		"2 1001 alice seat0",
		"3 1000 george seat1",
		"",
	}, "\n")
	got := parseLoginctlSessions(out, "1000")
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("parseLoginctlSessions = %v, want [1 3]", got)
	}
}

func stubDetectFns(
	detectSession func() (string, string),
	detectSocket func(string) string,
) func() {
	origSession := detectSessionX11EnvFn
	origSocket := detectDisplayFromSocketFn
	detectSessionX11EnvFn = detectSession
	detectDisplayFromSocketFn = detectSocket
	return func() {
		detectSessionX11EnvFn = origSession
		detectDisplayFromSocketFn = origSocket
	}
}

func TestReadProcEnviron(t *testing.T) {
	orig := readFileFn
	defer func() { readFileFn = orig }()
	readFileFn = func(path string) ([]byte, error) {
		if path != "/proc/42/environ" {
			t.Fatalf("unexpected path %q", path)
		}
		return []byte("DISPLAY=:2\x00XAUTHORITY=/run/user/1000/xauth\x00BROKEN\x00"), nil
	}

	env, err := readProcEnviron("42")
	if err != nil {
		t.Fatalf("readProcEnviron: %v", err)
	}
	if env["DISPLAY"] != ":2" || env["XAUTHORITY"] != "/run/user/1000/xauth" || len(env) != 2 {
		t.Fatalf("unexpected env %v", env)
	}
}
