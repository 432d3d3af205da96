package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"llamachat/internal/config"
)

var showFlag string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models installed on the server",
	Long: `List the models the server has installed.

Use --show to print the details of one model instead:
  llamachat models --show llama3.2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showFlag != "" {
			return runShowModel(showFlag)
		}
		return runListModels()
	},
}

func init() {
	modelsCmd.Flags().StringVar(&showFlag, "show", "", "Show details for one model")
}

func runListModels() error {
	cfg, _ := config.LoadConfig()
	client := newAPIClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	models, err := client.Models(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Failed to list models"))
		return fmt.Errorf("failed to list models: %w", err)
	}

	if len(models) == 0 {
		fmt.Println("No models installed. Pull one with 'ollama pull <name>'.")
		return nil
	}

	// Sprint instead of Print so the rows land on the same writer as the
	// headers when stdout is redirected
	header := color.New(color.FgCyan, color.Bold).SprintfFunc()
	fmt.Println(header("%-34s %10s %10s  %s", "NAME", "SIZE", "PARAMS", "MODIFIED"))

	for _, m := range models {
		fmt.Printf("%-34s %10s %10s  %s\n",
			m.Name,
			formatBytes(m.Size),
			m.Details.ParameterSize,
			m.ModifiedAt.Format("2006-01-02 15:04"),
		)
	}

	return nil
}

func runShowModel(name string) error {
	cfg, _ := config.LoadConfig()
	client := newAPIClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	details, err := client.ShowModel(ctx, name)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Failed to show model"))
		return fmt.Errorf("failed to show model: %w", err)
	}

	title := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(title(details.Name))

	printDetail("Family", details.Family)
	printDetail("Parameters", details.ParameterSize)
	printDetail("Quantization", details.Quantization)
	printDetail("Format", details.Format)
	printDetail("Architecture", details.Architecture)
	if details.ContextLength > 0 {
		printDetail("Context length", fmt.Sprintf("%d", details.ContextLength))
	}
	if len(details.Capabilities) > 0 {
		printDetail("Capabilities", strings.Join(details.Capabilities, ", "))
	}

	return nil
}

// printDetail prints one aligned key/value row, skipping empty values
func printDetail(key, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %-16s %s\n", key+":", value)
}

// formatBytes renders a byte count in human units
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
