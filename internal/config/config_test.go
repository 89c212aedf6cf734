// File: internal/config/config_test.go
package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "boxflow", cfg.Logger().ServiceName)
	assert.Equal(t, 800.0, cfg.Layout().ViewportWidth)
	assert.Equal(t, 600.0, cfg.Layout().ViewportHeight)
	assert.Equal(t, 1.0, cfg.Layout().HiDPIFactor())
	assert.Equal(t, "sans-serif", cfg.Layout().DefaultFontFamily)
	assert.Equal(t, 4.0, cfg.Text().TabWidth)
	assert.Equal(t, "left", cfg.Text().DefaultJustify)
	assert.Equal(t, 5, cfg.Events().MaxFocusRecursion)
	assert.Equal(t, 4, cfg.Resources().FontLoadParallelism)
	assert.NoError(t, cfg.Validate())
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetViewport(1024, 768)
	cfg.SetPageHeight(100)

	var iface Interface = cfg
	assert.Equal(t, 1024.0, iface.Layout().ViewportWidth)
	assert.Equal(t, 768.0, iface.Layout().ViewportHeight)
	assert.Equal(t, 100.0, iface.Layout().PageHeight)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"negative viewport", func(c *Config) { c.layout.ViewportWidth = -1 }, "layout viewport must not be negative"},
		{"zero font size", func(c *Config) { c.layout.DefaultFontSize = 0 }, "layout.default_font_size must be positive"},
		{"negative tab width", func(c *Config) { c.text.TabWidth = -2 }, "text.tab_width must not be negative"},
		{"unknown justify", func(c *Config) { c.text.DefaultJustify = "distribute" }, `text.default_justify "distribute"`},
		{"zero focus recursion", func(c *Config) { c.events.MaxFocusRecursion = 0 }, "events.max_focus_recursion must be a positive integer"},
		{"zero parallelism", func(c *Config) { c.resources.FontLoadParallelism = 0 }, "resources.font_load_parallelism must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("justify is case insensitive", func(t *testing.T) {
		tc := TextConfig{DefaultJustify: "Justify"}
		assert.NoError(t, tc.Validate())
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
layout:
  viewport_width: 400
  dpi: 192
text:
  default_justify: justify
events:
  max_focus_recursion: 3
fonts:
  families:
    Body: ["/usr/share/fonts/body.ttf"]
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, 400.0, cfg.Layout().ViewportWidth)
		assert.Equal(t, 600.0, cfg.Layout().ViewportHeight, "defaults fill the gaps")
		assert.Equal(t, 2.0, cfg.Layout().HiDPIFactor())
		assert.Equal(t, "justify", cfg.Text().DefaultJustify)
		assert.Equal(t, 3, cfg.Events().MaxFocusRecursion)
		// viper lower-cases map keys
		assert.Equal(t, []string{"/usr/share/fonts/body.ttf"}, cfg.Fonts().Families["body"])
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("events.max_focus_recursion", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "events.max_focus_recursion must be a positive integer")
	})

	t.Run("Environment Variable Override", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("layout:\n  viewport_width: 300\n")))

		t.Setenv("BOXFLOW_LAYOUT_VIEWPORT_WIDTH", "1280")
		t.Setenv("BOXFLOW_LOGGER_LEVEL", "debug")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 1280.0, cfg.Layout().ViewportWidth, "the environment wins over the file")
		assert.Equal(t, "debug", cfg.Logger().Level)
	})

	t.Run("Font Paths Are Expanded", func(t *testing.T) {
		home, err := homedir.Dir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}
		v := viper.New()
		SetDefaults(v)
		v.Set("fonts.families", map[string][]string{"mono": {"~/fonts/mono.ttf"}})

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(home, "fonts", "mono.ttf")}, cfg.Fonts().Families["mono"])
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/boxflow.log
  colors:
    info: blue
resources:
  font_load_parallelism: 8
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	cfg, err := unmarshal(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "/var/log/boxflow.log", cfg.Logger().LogFile)
	assert.Equal(t, "blue", cfg.Logger().Colors.Info)
	assert.Equal(t, "red", cfg.Logger().Colors.Error)
	assert.Equal(t, 8, cfg.Resources().FontLoadParallelism)
}
