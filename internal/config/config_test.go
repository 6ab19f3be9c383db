package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	s := cfg.Settings(cfg.ScreenBound())
	if s.Manager.Min != (geometry.Extent{Width: 200, Height: 150}) {
		t.Fatalf("min = %s", s.Manager.Min)
	}
	if s.Manager.Screen.Usable() != (geometry.Extent{Width: 1280, Height: 760}) {
		t.Fatalf("usable = %s", s.Manager.Screen.Usable())
	}
	if s.Threshold != 20 || len(s.Icons) != 5 {
		t.Fatalf("settings = %+v", s)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" || res.Config.SnapThreshold != 20 {
		t.Fatalf("result = %+v", res)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ScreenSource != ScreenStatic {
		t.Fatalf("screen_source = %q", res.Config.ScreenSource)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"screen:",
		"  width: 1920",
		"  height: 1080",
		"snap_threshold: 32",
		"default_position: {x: 40, y: 60}",
		"content:",
		"  text:",
		"    title: Notes",
		"    width: 500",
		"    height: 400",
		"launcher:",
		"  - label: Notes",
		"    tag: text",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Screen.Width != 1920 || cfg.SnapThreshold != 32 {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.MinWidth != 200 {
		t.Fatalf("unset min_width lost its default: %d", cfg.MinWidth)
	}
	if len(cfg.Launcher) != 1 || cfg.Launcher[0].Label != "Notes" {
		t.Fatalf("launcher = %+v", cfg.Launcher)
	}

	text := cfg.Registry().Lookup("text")
	if text.Title != "Notes" || text.Extent != (geometry.Extent{Width: 500, Height: 400}) || text.Render == nil {
		t.Fatalf("text content = %+v", text)
	}
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "snap_treshold: 10\n"))
	if err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"log_level: info",
		"screen:",
		"  width: 0",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Path != "screen.width" {
		t.Fatalf("path = %q, want screen.width", verr.Path)
	}
	if verr.Source.Kind != SourceFile || verr.Source.Line != 3 {
		t.Fatalf("source = %+v, want line 3", verr.Source)
	}
	if !strings.HasPrefix(err.Error(), path+":3:") {
		t.Fatalf("message %q lacks file position", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"screen source", func(c *Config) { c.ScreenSource = "wayland" }, "screen_source"},
		{"negative screen poll", func(c *Config) { c.ScreenPoll = -time.Second }, "screen_poll_interval"},
		{"negative threshold", func(c *Config) { c.SnapThreshold = -1 }, "snap_threshold"},
		{"zero min width", func(c *Config) { c.MinWidth = 0 }, "min_width"},
		{"default below floor", func(c *Config) { c.DefaultExtent.Width = 100 }, "default_extent"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"icon without tag", func(c *Config) { c.Launcher[1].Tag = "" }, "launcher.1"},
		{"half content size", func(c *Config) {
			c.Content = map[string]ContentConfig{"image": {Width: 10}}
		}, "content.image"},
		{"cell size", func(c *Config) { c.TUI.CellWidth = 0 }, "tui.cell_width"},
		{"taskbar taller than screen", func(c *Config) { c.TaskbarHeight = 900 }, "taskbar_height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q (%v)", verr.Path, tt.path, err)
			}
		})
	}
}

func TestLoadFromPath_ScreenPollDuration(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "screen_source: x11\nscreen_poll_interval: 30s\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ScreenPoll != 30*time.Second {
		t.Fatalf("screen_poll_interval = %s", res.Config.ScreenPoll)
	}
}

func TestExplain(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "snap_threshold: 12\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "snap_threshold")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 12 || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("snap_threshold = %v from %+v", val, src)
	}

	val, src, err = Explain(res, "launcher.0.tag")
	if err != nil {
		t.Fatalf("explain launcher: %v", err)
	}
	if val != "computer" || src.Kind != SourceDefault {
		t.Fatalf("launcher.0.tag = %v from %+v", val, src)
	}

	if _, _, err := Explain(res, "screen.depth"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.SnapThreshold = 5
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapThreshold != 5 {
		t.Fatalf("snap_threshold = %d", res.Config.SnapThreshold)
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(PathEnv, "/tmp/custom.yaml")
	got, err := DefaultConfigPath()
	if err != nil || got != "/tmp/custom.yaml" {
		t.Fatalf("DefaultConfigPath() = %q, %v", got, err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "snap_threshold: 10\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *LoadResult, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(res *LoadResult) { reloaded <- res })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("snap_threshold: 30\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case res := <-reloaded:
		if res.Config.SnapThreshold != 30 {
			t.Fatalf("reloaded threshold = %d, want 30", res.Config.SnapThreshold)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no reload after write")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}
