package args

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumekit/plume/internal/config"
)

// TestSummarizePrompt verifies long prompt presets are shortened for the
// command listing.
func TestSummarizePrompt(t *testing.T) {
	require.Equal(t, "short", summarizePrompt("  short  "))

	long := "This is a very long prompt preset that should be truncated for display purposes"
	summary := summarizePrompt(long)
	require.Len(t, summary, 60)
	require.Equal(t, "...", summary[57:])
}

// TestShouldUsePlainTextConfig verifies the render format setting forces
// plain output regardless of terminal state.
func TestShouldUsePlainTextConfig(t *testing.T) {
	cfg := config.Config{}
	cfg.Render.Format = "plain"

	require.True(t, shouldUsePlainText(cfg))
}

// TestShouldUsePlainTextNoColor verifies NO_COLOR disables markdown
// rendering.
func TestShouldUsePlainTextNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	cfg := config.Config{}
	cfg.Render.Format = "markdown"

	require.True(t, shouldUsePlainText(cfg))
}
