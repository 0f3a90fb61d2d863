package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "pagescore" {
			t.Errorf("expected use 'pagescore', got %q", cmd.Use)
		}
		if cmd.Short == "" || cmd.Long == "" || cmd.Version == "" {
			t.Error("expected short, long and version to be set")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" || flag.DefValue != "false" {
			t.Errorf("unexpected verbose flag %+v", flag)
		}
		if f := cmd.PersistentFlags().Lookup("log-format"); f == nil || f.DefValue != "text" {
			t.Error("expected log-format flag defaulting to text")
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		names := make(map[string]bool)
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
		for _, want := range []string{"scan", "serve", "compare", "init", "version"} {
			if !names[want] {
				t.Errorf("expected %s subcommand", want)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage || !cmd.SilenceErrors {
			t.Error("expected SilenceUsage and SilenceErrors to be true")
		}
	})
}
