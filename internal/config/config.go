package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"pc-showcase/internal/pose"
)

// Config holds asset paths, render settings and choreography settings.
type Config struct {
	// Paths
	BaseDir     string `json:"base_dir" yaml:"base_dir"`
	Asset       string `json:"asset" yaml:"asset"`
	Products    string `json:"products" yaml:"products"`
	FallbackImg string `json:"fallback_image" yaml:"fallback_image"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`

	// Render settings
	Width       int `json:"width" yaml:"width"`
	Height      int `json:"height" yaml:"height"`
	Supersample int `json:"supersample" yaml:"supersample"`
	WebPQuality int `json:"webp_quality" yaml:"webp_quality"`
	Workers     int `json:"workers" yaml:"workers"`
	FPS         int `json:"fps" yaml:"fps"`

	// Cinematic
	Duration float64 `json:"duration_seconds" yaml:"duration_seconds"`
	Loop     *bool   `json:"loop" yaml:"loop"`
	Loops    int     `json:"loops" yaml:"loops"`

	// Interactive
	Intensity *float64   `json:"intensity" yaml:"intensity"`
	Offsets   pose.Table `json:"offsets" yaml:"offsets"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Asset != "" {
		c.Asset = flags.Asset
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Quality > 0 {
		c.WebPQuality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Duration > 0 {
		c.Duration = flags.Duration
	}
	if flags.Intensity != nil {
		c.Intensity = floatPtr(*flags.Intensity)
	}
	if flags.NoLoop {
		c.Loop = boolPtr(false)
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}
	c.Asset = c.Locate(c.Asset)
	c.Products = c.Locate(c.Products)
	c.FallbackImg = c.Locate(c.FallbackImg)
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "renders")
	} else {
		c.OutputDir = c.Locate(c.OutputDir)
	}

	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 360
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Duration <= 0 {
		c.Duration = 11.5
	}
	if c.Loop == nil {
		c.Loop = boolPtr(true)
	}
	if c.Loops <= 0 {
		c.Loops = 1
	}
	if c.Intensity == nil {
		c.Intensity = floatPtr(1)
	}
}

// Looping reports the resolved loop setting.
func (c *Config) Looping() bool {
	return c.Loop == nil || *c.Loop
}

// ExplodeIntensity reports the resolved offset multiplier. An explicit 0 is
// kept.
func (c *Config) ExplodeIntensity() float64 {
	if c.Intensity == nil {
		return 1
	}
	return *c.Intensity
}

// Locate resolves p against BaseDir unless it is empty, absolute or a URL.
func (c *Config) Locate(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Asset     string
	OutputDir string
	Width     int
	Height    int
	Quality   int
	Workers   int
	FPS       int
	Duration  float64
	Intensity *float64
	NoLoop    bool
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
