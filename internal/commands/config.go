package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"llamachat/internal/config"
	"llamachat/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Print the effective configuration, including environment overrides.

Use 'config set' to change a value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShowConfig()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one configuration value",
	Long: `Change one configuration value and write it back to the config file.

Keys:
  model          Default model name
  host           Server base URL
  system         System prompt sent with every request
  temperature    Sampling temperature (float)
  top_p          Nucleus sampling cutoff (float)
  num_predict    Max tokens to generate (0 uses the model default)
  theme          Chat UI color theme (tokyonight, catppuccin, nord, dracula)
  style          Markdown style (dark, light, auto, or a JSON file path)
  clipboard      Copy replies to the clipboard (true/false)
  resources      Show the CPU/MEM readout in the chat UI (true/false)
  verbose        Debug logging for non-interactive commands (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetConfig(args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runShowConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	path, _ := config.GetConfigPath()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dim := color.New(color.FgHiBlack).SprintfFunc()
	fmt.Println(dim("# %s", path))
	fmt.Println(string(data))
	return nil
}

func runSetConfig(key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	switch strings.ToLower(key) {
	case "model":
		cfg.DefaultModel = value
	case "host":
		cfg.Host = config.NormalizeHost(value)
	case "system":
		cfg.SystemPrompt = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "top_p":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("top_p must be a number: %w", err)
		}
		cfg.TopP = f
	case "num_predict":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("num_predict must be an integer: %w", err)
		}
		cfg.NumPredict = n
	case "theme":
		if _, ok := render.TUIThemeByName(value); !ok {
			return fmt.Errorf("unknown theme %q (available: %s)",
				value, strings.Join(render.TUIThemeNames(), ", "))
		}
		cfg.TUITheme = value
	case "style":
		cfg.Markdown.Style = render.NormalizeStyle(value)
	case "clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("clipboard must be true or false: %w", err)
		}
		cfg.CopyToClipboard = b
	case "resources":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("resources must be true or false: %w", err)
		}
		cfg.Resources.Enabled = b
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false: %w", err)
		}
		cfg.Verbose = b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintfFunc()
	fmt.Println(green("✓ %s set", key))
	return nil
}
