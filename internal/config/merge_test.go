package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/marketdash/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleFieldOverride(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
api:
  base_url: https://dash.example.com
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "https://dash.example.com", target.API.BaseURL)
	assert.Equal(t, config.DefaultStocksPath, target.API.StocksPath)
	assert.Equal(t, config.DefaultTimeoutSeconds, target.API.TimeoutSeconds)
	assert.Equal(t, "warn", target.Logging.Level)
}

func TestShallowMergeYAML_MultipleSections(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
refresh:
  schedule: "@every 1m"
logging:
  level: debug
display:
  markdown: false
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "@every 1m", target.Refresh.Schedule)
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Equal(t, "json", target.Logging.Format)
	assert.False(t, target.Display.Markdown)
	assert.Equal(t, config.DefaultLocation, target.Display.Location)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
plugins:
  foo: bar
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, config.New(), target)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, "# only a comment\n")

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, config.New(), target)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		err := config.ShallowMergeYAML(nil, "whatever.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil target")
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading overlay file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		overlay := writeOverlay(t, "api: [unterminated")
		err := config.ShallowMergeYAML(config.New(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})

	t.Run("type mismatch", func(t *testing.T) {
		overlay := writeOverlay(t, "api:\n  timeout_seconds: soon\n")
		err := config.ShallowMergeYAML(config.New(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `applying overlay section "api"`)
	})
}
