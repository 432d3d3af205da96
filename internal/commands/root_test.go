// Package commands provides the llamachat CLI commands.
package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"

	"llamachat/internal/config"
	"llamachat/internal/engine"
)

// setTestHome points config loading at a scratch directory and clears the
// env overrides so tests see only what they write.
func setTestHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("OLLAMA_HOST", "")
	t.Setenv("OLLAMA_MODEL", "")
	return tmpDir
}

// captureStdout runs fn with stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("Failed to read captured output: %v", err)
	}
	return buf.String(), runErr
}

// withMockEngine swaps the package wiring to a scripted engine for one test.
func withMockEngine(t *testing.T, mock engine.Engine) {
	t.Helper()
	old := deps.Engine
	deps.Engine = mock
	t.Cleanup(func() { deps.Engine = old })
}

func TestRootCommand_Structure(t *testing.T) {
	if rootCmd.Use != "llamachat [prompt]" {
		t.Errorf("Expected use 'llamachat [prompt]', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if rootCmd.Long == "" {
		t.Error("Long description should not be empty")
	}

	if rootCmd.Args == nil {
		t.Error("Args validation should be configured")
	}
}

func TestRootCommand_Flags(t *testing.T) {
	persistentFlags := []string{"model", "verbose"}
	for _, flagName := range persistentFlags {
		t.Run(flagName+" flag (persistent)", func(t *testing.T) {
			if rootCmd.PersistentFlags().Lookup(flagName) == nil {
				t.Errorf("PersistentFlag %s not found", flagName)
			}
		})
	}

	localFlags := []string{"output", "file", "system", "version"}
	for _, flagName := range localFlags {
		t.Run(flagName+" flag", func(t *testing.T) {
			if rootCmd.Flags().Lookup(flagName) == nil {
				t.Errorf("Flag %s not found", flagName)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	expectedSubcommands := []string{"chat", "models", "config"}

	for _, sub := range expectedSubcommands {
		t.Run("subcommand "+sub, func(t *testing.T) {
			found := false
			for _, cmd := range rootCmd.Commands() {
				if cmd.Name() == sub {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Subcommand %s not found", sub)
			}
		})
	}
}

func TestVersionDefaults(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default")
	}
	if BuildTime == "" {
		t.Error("BuildTime should have a default")
	}
}

func TestGetModel(t *testing.T) {
	oldModelFlag := modelFlag
	defer func() { modelFlag = oldModelFlag }()

	t.Run("flag wins", func(t *testing.T) {
		setTestHome(t)
		modelFlag = "mistral"
		if got := getModel(); got != "mistral" {
			t.Errorf("getModel() = %s, want mistral", got)
		}
	})

	t.Run("default without config", func(t *testing.T) {
		setTestHome(t)
		modelFlag = ""
		if got := getModel(); got != "llama3.2" {
			t.Errorf("getModel() = %s, want llama3.2", got)
		}
	})

	t.Run("config file value", func(t *testing.T) {
		setTestHome(t)
		modelFlag = ""

		cfg := config.DefaultConfig()
		cfg.DefaultModel = "qwen2.5-coder"
		if err := config.SaveConfig(cfg); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}

		if got := getModel(); got != "qwen2.5-coder" {
			t.Errorf("getModel() = %s, want qwen2.5-coder", got)
		}
	})

	t.Run("env override", func(t *testing.T) {
		setTestHome(t)
		modelFlag = ""
		t.Setenv("OLLAMA_MODEL", "phi3")

		if got := getModel(); got != "phi3" {
			t.Errorf("getModel() = %s, want phi3", got)
		}
	})
}

func TestHasStdinInput(t *testing.T) {
	t.Run("pipe counts as input", func(t *testing.T) {
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		defer r.Close()
		w.Close()

		oldStdin := os.Stdin
		os.Stdin = r
		defer func() { os.Stdin = oldStdin }()

		if !hasStdinInput() {
			t.Error("Expected pipe on stdin to count as input")
		}
	})

	t.Run("char device does not", func(t *testing.T) {
		devNull, err := os.Open(os.DevNull)
		if err != nil {
			t.Skipf("Cannot open %s: %v", os.DevNull, err)
		}
		defer devNull.Close()

		oldStdin := os.Stdin
		os.Stdin = devNull
		defer func() { os.Stdin = oldStdin }()

		if hasStdinInput() {
			t.Error("Expected char device stdin to not count as input")
		}
	})
}

func TestIsInteractive(t *testing.T) {
	oldFileFlag := fileFlag
	defer func() { fileFlag = oldFileFlag }()

	t.Run("chat command", func(t *testing.T) {
		if !isInteractive(chatCmd, nil) {
			t.Error("chat command should be interactive")
		}
	})

	t.Run("other subcommands", func(t *testing.T) {
		if isInteractive(modelsCmd, nil) {
			t.Error("models command should not be interactive")
		}
		if isInteractive(configCmd, nil) {
			t.Error("config command should not be interactive")
		}
	})

	t.Run("root with positional arg", func(t *testing.T) {
		fileFlag = ""
		if isInteractive(rootCmd, []string{"What is Go?"}) {
			t.Error("root with a prompt argument should not be interactive")
		}
	})

	t.Run("root with file flag", func(t *testing.T) {
		fileFlag = "prompt.md"
		if isInteractive(rootCmd, nil) {
			t.Error("root with -f should not be interactive")
		}
	})

	t.Run("root with piped stdin", func(t *testing.T) {
		fileFlag = ""

		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		defer r.Close()
		w.Close()

		oldStdin := os.Stdin
		os.Stdin = r
		defer func() { os.Stdin = oldStdin }()

		if isInteractive(rootCmd, nil) {
			t.Error("root with piped stdin should not be interactive")
		}
	})

	t.Run("bare root", func(t *testing.T) {
		fileFlag = ""

		devNull, err := os.Open(os.DevNull)
		if err != nil {
			t.Skipf("Cannot open %s: %v", os.DevNull, err)
		}
		defer devNull.Close()

		oldStdin := os.Stdin
		os.Stdin = devNull
		defer func() { os.Stdin = oldStdin }()

		if !isInteractive(rootCmd, nil) {
			t.Error("bare root invocation should be interactive")
		}
	})
}

func TestExecute_Success(t *testing.T) {
	old := rootCmd
	rootCmd = &cobra.Command{
		Use: "llamachat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	defer func() { rootCmd = old }()

	// Execute exits the process on failure, so only the success path is
	// testable in-process.
	Execute()
}
