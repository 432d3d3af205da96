// Package commands provides the llamachat CLI commands.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"llamachat/internal/config"
)

var (
	// Global flags
	modelFlag   string
	outputFlag  string
	fileFlag    string
	systemFlag  string
	verboseFlag bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// logger is shared by the non-interactive commands. The chat TUI owns the
// terminal, so the interactive path keeps the no-op logger.
var logger = zap.NewNop()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "llamachat [prompt]",
	Short: "Chat with local language models",
	Long: `llamachat is a terminal front-end for language models served by a local
Ollama instance. It streams replies token by token, renders markdown,
and keeps a live readout of its own CPU and memory use.

Examples:
  llamachat                             Start interactive chat
  llamachat "What is Go?"               Send a single query
  llamachat -f prompt.md                Read prompt from file
  cat notes.md | llamachat              Read prompt from stdin
  llamachat "Hello" -o response.md      Save response to file
  llamachat models                      List installed models`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd, args)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check for version flag
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("llamachat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		// Piped output and file output both want the text undecorated
		rawOutput := !isStdoutTTY() || outputFlag != ""

		// Check for file input
		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data), rawOutput)
		}

		// Check for stdin
		if hasStdinInput() {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data), rawOutput)
		}

		// Check for positional argument
		if len(args) > 0 {
			return runQuery(args[0], rawOutput)
		}

		// No input - start the interactive chat
		return runChat()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., llama3.2)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().StringVarP(&systemFlag, "system", "s", "", "System prompt for this request")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(configCmd)
}

// setupLogger wires the shared logger. Interactive invocations skip it: the
// TUI owns the terminal and log lines would tear the display.
func setupLogger(cmd *cobra.Command, args []string) error {
	if isInteractive(cmd, args) {
		return nil
	}

	cfg, _ := config.LoadConfig()
	if !verboseFlag && !cfg.Verbose {
		return nil
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = l
	return nil
}

// isInteractive reports whether this invocation ends up in the chat TUI.
func isInteractive(cmd *cobra.Command, args []string) bool {
	if cmd.Name() == "chat" {
		return true
	}
	if cmd != rootCmd {
		return false
	}
	if v, _ := cmd.Flags().GetBool("version"); v {
		return false
	}
	return fileFlag == "" && len(args) == 0 && !hasStdinInput()
}

// hasStdinInput reports whether data is piped on stdin.
func hasStdinInput() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// getModel returns the model to use (from flag or config)
func getModel() string {
	if modelFlag != "" {
		return modelFlag
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return "llama3.2"
	}

	return cfg.DefaultModel
}
