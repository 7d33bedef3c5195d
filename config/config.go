package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file inside the data directory.
const FileName = "nameplate.yaml"

// EnvPrefix prefixes environment overrides, e.g. NAMEPLATE_LISTEN_ADDR.
const EnvPrefix = "NAMEPLATE_"

type Config struct {
	DataDir    string `yaml:"data_dir" koanf:"data_dir"`
	ListenAddr string `yaml:"listen_addr" koanf:"listen_addr"`
	AppURL     string `yaml:"app_url" koanf:"app_url"`

	Document   string `yaml:"document" koanf:"document"`
	FrameImage string `yaml:"frame_image" koanf:"frame_image"`
	FontPath   string `yaml:"font_path" koanf:"font_path"`

	ThemeDir     string `yaml:"theme_dir" koanf:"theme_dir"`
	DefaultTheme string `yaml:"default_theme" koanf:"default_theme"`

	ExportFrameScale float64       `yaml:"export_frame_scale" koanf:"export_frame_scale"`
	CapturePadding   float64       `yaml:"capture_padding" koanf:"capture_padding"`
	CaptureTimeout   time.Duration `yaml:"capture_timeout" koanf:"capture_timeout"`
	ChromePath       string        `yaml:"chrome_path" koanf:"chrome_path"`

	ArchiveExports  bool          `yaml:"archive_exports" koanf:"archive_exports"`
	ExportRetention time.Duration `yaml:"export_retention" koanf:"export_retention"`

	ViewportWidth    float64 `yaml:"viewport_width" koanf:"viewport_width"`
	ViewportHeight   float64 `yaml:"viewport_height" koanf:"viewport_height"`
	DevicePixelRatio float64 `yaml:"device_pixel_ratio" koanf:"device_pixel_ratio"`

	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	LogLevel        string `yaml:"log_level" koanf:"log_level"`
}

func Default() Config {
	return Config{
		DataDir:          ".",
		ListenAddr:       ":8080",
		Document:         "nametap.pdf",
		FrameImage:       "trans.png",
		DefaultTheme:     "holographic",
		ExportFrameScale: 0.78,
		CapturePadding:   50,
		CaptureTimeout:   15 * time.Second,
		ExportRetention:  30 * 24 * time.Hour,
		ViewportWidth:    1280,
		ViewportHeight:   800,
		DevicePixelRatio: 1,
		LogLevel:         "info",
	}
}

// Path returns the configuration file path for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load reads the configuration file in dataDir, if any, on top of the
// defaults and overlays NAMEPLATE_* environment variables.
func Load(dataDir string) (Config, error) {
	cfg := Default()
	cfg.DataDir = dataDir

	k := koanf.New(".")

	cfgPath := Path(dataDir)
	if _, err := os.Stat(cfgPath); err == nil {
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", cfgPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("accessing config %s: %w", cfgPath, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	return cfg, nil
}

// Save writes cfg to its data directory, replacing any existing file
// atomically.
func Save(cfg Config) error {
	cfgPath := Path(cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	tmp := cfgPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains usable values.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.Document == "" {
		return fmt.Errorf("document is required")
	}
	if c.ExportFrameScale <= 0 || c.ExportFrameScale > 1 {
		return fmt.Errorf("export_frame_scale must be in (0, 1], got %v", c.ExportFrameScale)
	}
	if c.CapturePadding < 0 {
		return fmt.Errorf("capture_padding must be non-negative")
	}
	if c.CaptureTimeout <= 0 {
		return fmt.Errorf("capture_timeout must be positive")
	}
	if c.ExportRetention < 0 {
		return fmt.Errorf("export_retention must be non-negative")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport_width and viewport_height must be positive")
	}
	if c.DevicePixelRatio <= 0 {
		return fmt.Errorf("device_pixel_ratio must be positive")
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// Resolve makes a path relative to the data directory absolute. URLs and
// absolute paths are returned unchanged.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
