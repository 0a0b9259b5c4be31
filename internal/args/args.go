package args

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/plumekit/plume/internal/config"
)

// Arguments represents the command-line arguments structure.
type Arguments struct {
	Prompts      []string
	Model        string
	Command      string
	EventsID     string
	ListModels   bool
	UsePlainText bool
}

// ParseArgs parses command-line arguments and stdin input, returning an Arguments struct.
// It uses Cobra to handle commands and flags, allowing for both predefined prompt
// presets and direct prompts. It reads from stdin if available.
func ParseArgs(ctx context.Context, cfg config.Config) (Arguments, error) {
	args := Arguments{}

	rootCmd := &cobra.Command{
		Use:   "plume [command] [flags] [prompt]",
		Short: "A CLI for the Plume generation API",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			// Handle direct prompts (when no command is specified)
			if len(cmdArgs) > 0 {
				args.Prompts = append(args.Prompts, cmdArgs[0])
			}
			return nil
		},
		SilenceErrors: true, // We'll handle error reporting
		SilenceUsage:  true, // We'll handle usage display
	}
	rootCmd.SetContext(ctx)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&args.Model, "model", cfg.Model, "The model to use")
	rootCmd.PersistentFlags().BoolVar(&args.UsePlainText, "plain", shouldUsePlainText(cfg), "Disable markdown rendering")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "List the models available to the account",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			args.Command = "models"
			args.ListModels = true
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "events <generation-id>",
		Short: "Follow the event feed of a generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			args.Command = "events"
			args.EventsID = cmdArgs[0]
			return nil
		},
	})

	// Add predefined prompt presets
	for name, preset := range cfg.Prompts {
		preset := preset // Create a local copy for the closure
		cmd := &cobra.Command{
			Use:   name + " [input]",
			Short: summarizePrompt(preset.Prompt),
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				args.Command = name
				if len(cmdArgs) > 0 {
					args.Prompts = append(args.Prompts, cmdArgs[0])
				}
				args.Prompts = append(args.Prompts, preset.Prompt)
				if preset.Model != "" {
					args.Model = preset.Model
				}
				return nil
			},
		}
		rootCmd.AddCommand(cmd)
	}

	// Read from stdin if available
	if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max buffer
		var buf strings.Builder
		for scanner.Scan() {
			buf.WriteString(scanner.Text())
			buf.WriteByte('\n')
		}
		if err := scanner.Err(); err != nil {
			return Arguments{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		prompt := strings.TrimSpace(buf.String())
		if prompt != "" {
			args.Prompts = append(args.Prompts, prompt)
		}
	}

	// Execute the command
	if err := rootCmd.Execute(); err != nil {
		return Arguments{}, err
	}

	// Check if we have anything to do
	if len(args.Prompts) == 0 && !args.ListModels && args.EventsID == "" {
		return Arguments{}, errors.New("no prompt provided")
	}

	return args, nil
}

// shouldUsePlainText determines if plain text output should be used based on environment and terminal settings.
func shouldUsePlainText(cfg config.Config) bool {
	// Check if the rendering format is set to plain
	if cfg.Render.Format == "plain" {
		return true
	}

	// Markdown only makes sense on a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return true
	}

	// Check for NO_COLOR environment variable
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}

	// Check for TERM=dumb
	if term := os.Getenv("TERM"); term == "dumb" {
		return true
	}

	return false
}

// summarizePrompt trims and limits the length of the prompt summary.
func summarizePrompt(prompt string) string {
	summary := strings.TrimSpace(prompt)
	if len(summary) > 60 {
		summary = summary[:57] + "..."
	}
	return summary
}
