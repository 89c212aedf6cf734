// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config keys,
// e.g. BOXFLOW_LAYOUT_VIEWPORT_WIDTH.
const EnvPrefix = "BOXFLOW"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Layout() LayoutConfig
	Text() TextConfig
	Events() EventsConfig
	Fonts() FontsConfig
	Resources() ResourcesConfig

	// Layout Setters
	SetViewport(width, height float64)
	SetPageHeight(h float64)
}

// Config holds the entire application configuration.
// It uses private fields to enforce access through the Interface's getter methods.
type Config struct {
	logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	layout    LayoutConfig    `mapstructure:"layout" yaml:"layout"`
	text      TextConfig      `mapstructure:"text" yaml:"text"`
	events    EventsConfig    `mapstructure:"events" yaml:"events"`
	fonts     FontsConfig     `mapstructure:"fonts" yaml:"fonts"`
	resources ResourcesConfig `mapstructure:"resources" yaml:"resources"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig       { return c.logger }
func (c *Config) Layout() LayoutConfig       { return c.layout }
func (c *Config) Text() TextConfig           { return c.text }
func (c *Config) Events() EventsConfig       { return c.events }
func (c *Config) Fonts() FontsConfig         { return c.fonts }
func (c *Config) Resources() ResourcesConfig { return c.resources }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetViewport(width, height float64) {
	c.layout.ViewportWidth = width
	c.layout.ViewportHeight = height
}
func (c *Config) SetPageHeight(h float64) { c.layout.PageHeight = h }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LayoutConfig sizes the root viewport and the fallback text style.
type LayoutConfig struct {
	ViewportWidth     float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    float64 `mapstructure:"viewport_height" yaml:"viewport_height"`
	DPI               float64 `mapstructure:"dpi" yaml:"dpi"`
	DefaultFontFamily string  `mapstructure:"default_font_family" yaml:"default_font_family"`
	DefaultFontSize   float64 `mapstructure:"default_font_size" yaml:"default_font_size"`
	// PageHeight is used by pagination; zero or less disables it.
	PageHeight float64 `mapstructure:"page_height" yaml:"page_height"`
}

// HiDPIFactor is DPI relative to 96.
func (l LayoutConfig) HiDPIFactor() float64 {
	if l.DPI <= 0 {
		return 1
	}
	return l.DPI / 96
}

// TextConfig holds defaults for text layout.
type TextConfig struct {
	// TabWidth is the width of a tab in multiples of the space advance.
	TabWidth float64 `mapstructure:"tab_width" yaml:"tab_width"`
	// DefaultJustify is one of left, center, right, justify.
	DefaultJustify string `mapstructure:"default_justify" yaml:"default_justify"`
}

// EventsConfig tunes callback dispatch.
type EventsConfig struct {
	MaxFocusRecursion int `mapstructure:"max_focus_recursion" yaml:"max_focus_recursion"`
}

// FontsConfig maps font family names to font files.
type FontsConfig struct {
	Families map[string][]string `mapstructure:"families" yaml:"families"`
}

// ResourcesConfig configures the renderer resource cache.
type ResourcesConfig struct {
	FontLoadParallelism int `mapstructure:"font_load_parallelism" yaml:"font_load_parallelism"`
}

var justifyValues = []string{"left", "center", "right", "justify"}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := unmarshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "boxflow")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Layout --
	v.SetDefault("layout.viewport_width", 800.0)
	v.SetDefault("layout.viewport_height", 600.0)
	v.SetDefault("layout.dpi", 96.0)
	v.SetDefault("layout.default_font_family", "sans-serif")
	v.SetDefault("layout.default_font_size", 16.0)
	v.SetDefault("layout.page_height", 0.0)

	// -- Text --
	v.SetDefault("text.tab_width", 4.0)
	v.SetDefault("text.default_justify", "left")

	// -- Events --
	v.SetDefault("events.max_focus_recursion", 5)

	// -- Fonts --
	v.SetDefault("fonts.families", map[string][]string{})

	// -- Resources --
	v.SetDefault("resources.font_load_parallelism", 4)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
// Environment variables prefixed with BOXFLOW_ override file values.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandFontPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sections mirrors Config with exported fields so viper can decode into it.
type sections struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	Text      TextConfig      `mapstructure:"text"`
	Events    EventsConfig    `mapstructure:"events"`
	Fonts     FontsConfig     `mapstructure:"fonts"`
	Resources ResourcesConfig `mapstructure:"resources"`
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var s sections
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &Config{
		logger:    s.Logger,
		layout:    s.Layout,
		text:      s.Text,
		events:    s.Events,
		fonts:     s.Fonts,
		resources: s.Resources,
	}, nil
}

// expandFontPaths resolves a leading ~ in every configured font file.
func (c *Config) expandFontPaths() error {
	for family, paths := range c.fonts.Families {
		for i, p := range paths {
			expanded, err := homedir.Expand(p)
			if err != nil {
				return fmt.Errorf("font family %q: expand %q: %w", family, p, err)
			}
			paths[i] = expanded
		}
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.layout.ViewportWidth < 0 || c.layout.ViewportHeight < 0 {
		return fmt.Errorf("%w: layout viewport must not be negative", ErrInvalidConfig)
	}
	if c.layout.DefaultFontSize <= 0 {
		return fmt.Errorf("%w: layout.default_font_size must be positive", ErrInvalidConfig)
	}
	if c.text.TabWidth < 0 {
		return fmt.Errorf("%w: text.tab_width must not be negative", ErrInvalidConfig)
	}
	if err := c.text.Validate(); err != nil {
		return err
	}
	if c.events.MaxFocusRecursion <= 0 {
		return fmt.Errorf("%w: events.max_focus_recursion must be a positive integer", ErrInvalidConfig)
	}
	if c.resources.FontLoadParallelism <= 0 {
		return fmt.Errorf("%w: resources.font_load_parallelism must be a positive integer", ErrInvalidConfig)
	}
	return nil
}

// Validate checks the text section.
func (t *TextConfig) Validate() error {
	for _, j := range justifyValues {
		if strings.EqualFold(t.DefaultJustify, j) {
			return nil
		}
	}
	return fmt.Errorf("%w: text.default_justify %q is not one of %s",
		ErrInvalidConfig, t.DefaultJustify, strings.Join(justifyValues, ", "))
}
