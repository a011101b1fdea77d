// Package config loads and saves the viewer settings file.
//
// The file is TOML. A missing file yields Default(); keys absent from the
// file keep their default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"shadergrid/internal/grid"
	"shadergrid/internal/looptime"
)

// Config is the whole settings file.
type Config struct {
	Window     Window               `toml:"window"`
	Grid       Grid                 `toml:"grid"`
	Params     map[string]float64   `toml:"params"`
	Variations map[string][]float64 `toml:"variations"`
	Capture    Capture              `toml:"capture"`
	Library    Library              `toml:"library"`
}

// Window describes the canvas shared by both views.
type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// Grid holds the grid configuration.
type Grid struct {
	Cols          int       `toml:"cols"`
	Rows          int       `toml:"rows"`
	LoopDuration  float64   `toml:"loop_duration"`
	PlaybackSpeed float64   `toml:"playback_speed"`
	LoopMode      string    `toml:"loop_mode"`
	OffsetMode    string    `toml:"offset_mode"`
	Offsets       []float64 `toml:"offsets,omitempty"`
}

// Capture configures PNG frame capture.
type Capture struct {
	Dir      string  `toml:"dir"`
	FPS      int     `toml:"fps"`
	Duration float64 `toml:"duration"`
	AutoStop bool    `toml:"auto_stop"`
	StartAt  float64 `toml:"start_at"`
}

// Library locates the saved shader store.
type Library struct {
	Path string `toml:"path"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Window: Window{
			Width:  1920,
			Height: 1080,
			Title:  "Shader Grid",
			VSync:  true,
		},
		Grid: Grid{
			Cols:          3,
			Rows:          3,
			LoopDuration:  3,
			PlaybackSpeed: 1,
			LoopMode:      string(looptime.PingPong),
			OffsetMode:    string(looptime.OffsetNone),
		},
		Params:     map[string]float64{},
		Variations: map[string][]float64{},
		Capture: Capture{
			Dir:      "captures",
			FPS:      30,
			Duration: 5,
			AutoStop: true,
		},
		Library: Library{
			Path: defaultLibraryPath(),
		},
	}
}

func defaultLibraryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shaders.json"
	}
	return filepath.Join(dir, "shadergrid", "shaders.json")
}

// Load reads path over the defaults and validates the result. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML into cfg, which should already hold defaults, and
// validates the result.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if cfg.Params == nil {
		cfg.Params = map[string]float64{}
	}
	if cfg.Variations == nil {
		cfg.Variations = map[string][]float64{}
	}
	return cfg.Validate()
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}

// Validate reports the first invalid key.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if err := c.Size().Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if _, err := c.Timing(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if _, err := looptime.ParseOffsetMode(c.Grid.OffsetMode); err != nil {
		return fmt.Errorf("grid.offset_mode: %w", err)
	}
	for _, v := range c.Grid.Offsets {
		if !finite(v) {
			return fmt.Errorf("grid.offsets: value must be finite, got %v", v)
		}
	}
	for name, v := range c.Params {
		if !finite(v) {
			return fmt.Errorf("params.%s: value must be finite, got %v", name, v)
		}
	}
	for name, vals := range c.Variations {
		for _, v := range vals {
			if !finite(v) {
				return fmt.Errorf("variations.%s: value must be finite, got %v", name, v)
			}
		}
	}
	if c.Capture.FPS <= 0 {
		return fmt.Errorf("capture.fps must be positive, got %d", c.Capture.FPS)
	}
	if c.Capture.Duration < 0 || c.Capture.StartAt < 0 {
		return errors.New("capture: duration and start_at must not be negative")
	}
	if c.Library.Path == "" {
		return errors.New("library.path must be set")
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Size returns the grid dimensions.
func (c Config) Size() grid.Size {
	return grid.Size{Cols: c.Grid.Cols, Rows: c.Grid.Rows}
}

// Timing returns validated loop settings.
func (c Config) Timing() (looptime.Settings, error) {
	mode, err := looptime.ParseLoopMode(c.Grid.LoopMode)
	if err != nil {
		return looptime.Settings{}, err
	}
	t := looptime.Settings{
		LoopDuration: c.Grid.LoopDuration,
		Speed:        c.Grid.PlaybackSpeed,
		Mode:         mode,
	}
	return t, t.Validate()
}

// VariationNames returns the configured variation names, sorted.
func (c Config) VariationNames() []string {
	names := make([]string, 0, len(c.Variations))
	for name := range c.Variations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
