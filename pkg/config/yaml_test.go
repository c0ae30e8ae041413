package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdfmt/pkg/config"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.Equal(t, config.FlavorCommonMark, cfg.Flavor)
	assert.Equal(t, config.DefaultWidth, cfg.Width)
	assert.Equal(t, config.OnUnsupportedError, cfg.OnUnsupported)
	assert.Equal(t, config.DefaultExtensions, cfg.Extensions)
	assert.Equal(t, config.FormatText, cfg.Format)

	cfg.Extensions[0] = ".txt"
	assert.Equal(t, ".md", config.DefaultExtensions[0])
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()

		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies slices", func(t *testing.T) {
		t.Parallel()

		original := &config.Config{
			Ignore:     []string{"vendor/**"},
			Extensions: []string{".md"},
			Write:      true,
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, original, clone)
		assert.True(t, clone.Write)

		clone.Ignore[0] = "changed"
		clone.Extensions[0] = ".txt"
		assert.Equal(t, "vendor/**", original.Ignore[0])
		assert.Equal(t, ".md", original.Extensions[0])
	})
}

func TestFromYAML(t *testing.T) {
	t.Parallel()

	t.Run("all keys", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromYAML([]byte(`
flavor: gfm
width: 72
on_unsupported: ignore
jobs: 4
log_level: debug
extensions: [".md", ".mdx"]
ignore:
  - "vendor/**"
`))
		require.NoError(t, err)
		assert.Equal(t, config.FlavorGFM, cfg.Flavor)
		assert.Equal(t, 72, cfg.Width)
		assert.Equal(t, config.OnUnsupportedIgnore, cfg.OnUnsupported)
		assert.Equal(t, 4, cfg.Jobs)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, []string{".md", ".mdx"}, cfg.Extensions)
		assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromYAML([]byte("  \n"))
		require.NoError(t, err)
		assert.Equal(t, &config.Config{}, cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		_, err := config.FromYAML([]byte("widht: 80\n"))
		require.Error(t, err)
	})

	t.Run("cli-only fields are not read", func(t *testing.T) {
		t.Parallel()

		_, err := config.FromYAML([]byte("write: true\n"))
		require.Error(t, err)
	})
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	t.Run("minimal yaml parses to defaults", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{})
		require.NoError(t, err)
		assert.Contains(t, string(data), "# on_unsupported: error")

		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, config.FlavorCommonMark, cfg.Flavor)
		assert.Equal(t, 80, cfg.Width)
		assert.Empty(t, cfg.OnUnsupported)
	})

	t.Run("full yaml sets every key", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{Full: true, Format: "yaml"})
		require.NoError(t, err)

		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, config.OnUnsupportedError, cfg.OnUnsupported)
		assert.Equal(t, []string{".md", ".markdown"}, cfg.Extensions)
		assert.Equal(t, []string{"vendor/**", "node_modules/**"}, cfg.Ignore)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{Format: "json"})
		require.NoError(t, err)

		var cfg config.Config
		require.NoError(t, json.Unmarshal(data, &cfg))
		assert.Equal(t, config.DefaultWidth, cfg.Width)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := config.GenerateTemplate(config.TemplateOptions{Format: "toml"})
		require.Error(t, err)
	})
}
