package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/session"
)

// Screen sources.
const (
	ScreenStatic   = "static"
	ScreenX11      = "x11"
	ScreenTerminal = "terminal"
)

// ScreenConfig is the fixed screen size used by the static source.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Validate validates the screen size.
func (c ScreenConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Width, validation.Required, validation.Min(1)),
		validation.Field(&c.Height, validation.Required, validation.Min(1)),
	)
}

// ContentConfig overrides the title or default size of a content tag.
type ContentConfig struct {
	Title  string `yaml:"title,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
}

// Validate validates a content override. Width and height go together.
func (c ContentConfig) Validate() error {
	if (c.Width == 0) != (c.Height == 0) {
		return fmt.Errorf("width and height must be set together")
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Width, validation.Min(0)),
		validation.Field(&c.Height, validation.Min(0)),
	)
}

// TUIConfig maps terminal cells to screen coordinates.
type TUIConfig struct {
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`
}

// Validate validates the cell size.
func (c TUIConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CellWidth, validation.Required, validation.Min(1)),
		validation.Field(&c.CellHeight, validation.Required, validation.Min(1)),
	)
}

// MCPConfig controls the MCP tool server.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the effective snapdesk configuration.
type Config struct {
	Screen          ScreenConfig             `yaml:"screen"`
	ScreenSource    string                   `yaml:"screen_source"`
	Display         string                   `yaml:"display,omitempty"`
	ScreenPoll      time.Duration            `yaml:"screen_poll_interval"`
	TaskbarHeight   int                      `yaml:"taskbar_height"`
	TaskbarLabelMax int                      `yaml:"taskbar_label_max"`
	SnapThreshold   int                      `yaml:"snap_threshold"`
	MinWidth        int                      `yaml:"min_width"`
	MinHeight       int                      `yaml:"min_height"`
	DefaultPosition geometry.Point           `yaml:"default_position"`
	DefaultExtent   geometry.Extent          `yaml:"default_extent"`
	Content         map[string]ContentConfig `yaml:"content,omitempty"`
	Launcher        []desktop.Icon           `yaml:"launcher"`
	TUI             TUIConfig                `yaml:"tui"`
	LogLevel        string                   `yaml:"log_level"`
	MCP             MCPConfig                `yaml:"mcp"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	opts := desktop.DefaultOptions()
	icons := make([]desktop.Icon, len(desktop.DefaultIcons))
	copy(icons, desktop.DefaultIcons)
	return &Config{
		Screen:          ScreenConfig{Width: opts.Screen.Width, Height: opts.Screen.Height},
		ScreenSource:    ScreenStatic,
		ScreenPoll:      10 * time.Second,
		TaskbarHeight:   opts.Screen.Taskbar,
		TaskbarLabelMax: 16,
		SnapThreshold:   20,
		MinWidth:        opts.Min.Width,
		MinHeight:       opts.Min.Height,
		DefaultPosition: opts.DefaultPosition,
		DefaultExtent:   opts.DefaultExtent,
		Launcher:        icons,
		TUI:             TUIConfig{CellWidth: 8, CellHeight: 16},
		LogLevel:        "info",
		MCP:             MCPConfig{Enabled: true},
	}
}

// Validate performs strict validation of the effective configuration. The
// returned error is a *ValidationError naming the offending YAML path.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Screen),
		validation.Field(&c.ScreenSource, validation.Required, validation.In(ScreenStatic, ScreenX11, ScreenTerminal)),
		validation.Field(&c.ScreenPoll, validation.Min(time.Duration(0))),
		validation.Field(&c.TaskbarHeight, validation.Min(0)),
		validation.Field(&c.TaskbarLabelMax, validation.Min(0)),
		validation.Field(&c.SnapThreshold, validation.Min(0)),
		validation.Field(&c.MinWidth, validation.Required, validation.Min(1)),
		validation.Field(&c.MinHeight, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultExtent, validation.By(func(any) error {
			if c.DefaultExtent.Width < c.MinWidth || c.DefaultExtent.Height < c.MinHeight {
				return fmt.Errorf("must be at least %dx%d", c.MinWidth, c.MinHeight)
			}
			return nil
		})),
		validation.Field(&c.Content),
		validation.Field(&c.Launcher, validation.Each(validation.By(validateIcon))),
		validation.Field(&c.TUI),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warning", "error")),
	)
	if err != nil {
		return toValidationError(err)
	}
	if c.TaskbarHeight >= c.Screen.Height {
		return &ValidationError{Path: "taskbar_height", Err: fmt.Errorf("must be less than screen.height (%d)", c.Screen.Height)}
	}
	return nil
}

func validateIcon(v any) error {
	icon, ok := v.(desktop.Icon)
	if !ok {
		return fmt.Errorf("unexpected launcher entry %T", v)
	}
	if strings.TrimSpace(icon.Label) == "" {
		return fmt.Errorf("label is required")
	}
	if strings.TrimSpace(icon.Tag) == "" {
		return fmt.Errorf("tag is required")
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ScreenBound returns the static screen with the taskbar reservation.
func (c *Config) ScreenBound() geometry.Screen {
	return geometry.Screen{Width: c.Screen.Width, Height: c.Screen.Height, Taskbar: c.TaskbarHeight}
}

// Settings converts the configuration into desktop session settings for the
// given screen.
func (c *Config) Settings(screen geometry.Screen) session.Settings {
	return session.Settings{
		Manager: desktop.Options{
			Screen:          screen,
			DefaultPosition: c.DefaultPosition,
			DefaultExtent:   c.DefaultExtent,
			Min:             geometry.Extent{Width: c.MinWidth, Height: c.MinHeight},
		},
		Threshold:    c.SnapThreshold,
		Icons:        c.Launcher,
		TaskbarLabel: c.TaskbarLabelMax,
	}
}

// Registry returns the stock content registry with the configured title and
// size overrides applied. Overrides for unknown tags register new contents
// that render the placeholder body.
func (c *Config) Registry() *desktop.Registry {
	reg := desktop.DefaultRegistry()
	for tag, override := range c.Content {
		content := reg.Lookup(tag)
		if !reg.Known(tag) {
			content.Render = nil
		}
		if override.Title != "" {
			content.Title = override.Title
		}
		if override.Width > 0 && override.Height > 0 {
			content.Extent = geometry.Extent{Width: override.Width, Height: override.Height}
		}
		reg.Register(content)
	}
	return reg
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
