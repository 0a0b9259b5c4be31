package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/plumekit/plume/internal/args"
	"github.com/plumekit/plume/internal/client"
	"github.com/plumekit/plume/internal/config"
	"github.com/plumekit/plume/internal/render"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	parsed, err := args.ParseArgs(ctx, *cfg)
	if err != nil {
		return err
	}

	switch {
	case parsed.ListModels:
		return listModels(ctx, *cfg)
	case parsed.EventsID != "":
		return followEvents(ctx, *cfg, parsed.EventsID)
	default:
		return generate(ctx, *cfg, parsed)
	}
}

// generate issues one streaming generation call and renders it to the
// terminal as it arrives.
func generate(ctx context.Context, cfg config.Config, parsed args.Arguments) error {
	req := client.GenerationRequest{
		Prompt: strings.Join(parsed.Prompts, "\n\n"),
		Model:  parsed.Model,
	}

	results, err := client.StreamGeneration(ctx, cfg, req)
	if err != nil {
		return err
	}

	renderer := render.NewTerminalRenderer(cfg.Render.Wrap, parsed.UsePlainText)
	return renderer.Render(results)
}

// followEvents prints a generation's event feed one line per event.
func followEvents(ctx context.Context, cfg config.Config, id string) error {
	results, err := client.StreamEvents(ctx, cfg, id)
	if err != nil {
		return err
	}

	for r := range results {
		if r.Err != nil {
			return fmt.Errorf("stream error: %w", r.Err)
		}
		fmt.Printf("%s\t%s\n", r.Value.Type, string(r.Value.Payload))
	}
	return nil
}

// listModels prints the models available to the account.
func listModels(ctx context.Context, cfg config.Config) error {
	models, err := client.ListModels(ctx, cfg)
	if err != nil {
		return err
	}

	for _, m := range models {
		fmt.Printf("%s\t%s\n", m.ID, m.Name)
	}
	return nil
}
