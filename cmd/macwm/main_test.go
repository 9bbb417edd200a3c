package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"usage", usagef("bad"), 2},
		{"wrapped usage", fmt.Errorf("x: %w", usageError{errors.New("bad")}), 2},
		{"unknown command", errors.New(`unknown command "nope" for "macwm"`), 2},
		{"failure", errors.New("failed to connect"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExecuteUsageErrors(t *testing.T) {
	tests := [][]string{
		{"nope"},
		{"focus"},
		{"focus", "zzz"},
		{"desktop", "0"},
		{"status", "--bogus"},
	}
	for _, args := range tests {
		var stderr bytes.Buffer
		if got := execute(args, &stderr); got != 2 {
			t.Errorf("%v: exit = %d, want 2 (stderr %q)", args, got, stderr.String())
		}
		if !strings.HasPrefix(stderr.String(), "macwm:") {
			t.Errorf("%v: stderr = %q", args, stderr.String())
		}
	}
}

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"4194307", 4194307, true},
		{"0x400003", 0x400003, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"0x1ffffffff", 0, false},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseWindowID(%q) = %d, %v", tt.in, got, err)
		}
	}
}
