package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"llamachat/internal/config"
	"llamachat/internal/engine"
)

var demoFlag bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with a local model.

The chat keeps conversation context across messages, streams replies
token by token, and renders markdown once a reply is complete.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().BoolVar(&demoFlag, "demo", false, "Chat against a canned in-process engine (no server needed)")
}

func runChat() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	modelName := getModel()

	if demoFlag {
		return deps.RunChat(demoEngine(), cfg, modelName+" (demo)")
	}

	eng := deps.buildEngine(cfg, modelName)

	// Check the server before taking over the terminal
	if client, ok := eng.(*engine.Client); ok {
		spin := newSpinner("Connecting to " + config.NormalizeHost(cfg.Host))
		spin.start()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		version, err := client.Ping(ctx)
		cancel()
		if err != nil {
			spin.stopWithError()
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Cannot reach the server"))
			return fmt.Errorf("server unreachable: %w", err)
		}
		spin.stopWithSuccess("Connected (server " + version + ")")
	}

	return deps.RunChat(eng, cfg, modelName)
}

// demoEngine replays a canned reply so the UI can be tried without a server.
func demoEngine() engine.Engine {
	reply := "Hello! I'm a **canned** reply, here so you can poke at the interface " +
		"without a running server.\n\n" +
		"- Streaming, markdown rendering, and the status bar behave exactly as they do live.\n" +
		"- The CPU/MEM readout in the corner is real, not canned.\n\n" +
		"Start `ollama serve` and rerun `llamachat chat` to talk to an actual model.\n"

	var script []engine.Event
	for _, fragment := range strings.SplitAfter(reply, " ") {
		script = append(script, engine.TokensEvent(fragment))
	}
	script = append(script,
		engine.StatsEvent(engine.Stats{
			PromptTokens:       12,
			OutputTokens:       64,
			PromptTokensPerSec: 188.4,
			TokensPerSec:       23.7,
		}),
		engine.DoneEvent(),
	)

	return &engine.MockEngine{Script: script, Delay: 35 * time.Millisecond}
}
