package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/dream/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX int `toml:"start_pos_x" yaml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY int `toml:"start_pos_y" yaml:"start_pos_y"`
	// Window starting width. Zero takes the size from the project.
	StartWidth int `toml:"start_width" yaml:"start_width"`
	// Window starting height. Zero takes the size from the project.
	StartHeight int `toml:"start_height" yaml:"start_height"`
	// The application name used in windowing, if applicable.
	Name     string `toml:"name" yaml:"name"`
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Loader goroutines and the size of their queue.
	Workers      int `toml:"workers" yaml:"workers"`
	JobQueueSize int `toml:"job_queue_size" yaml:"job_queue_size"`

	ProjectDir   string `toml:"project_dir" yaml:"project_dir"`
	TemplatesDir string `toml:"templates_dir" yaml:"templates_dir"`
	// Keep the asset index of the project current while running.
	WatchAssets bool `toml:"watch_assets" yaml:"watch_assets"`

	// Frames per second to aim for, zero runs unthrottled.
	TargetFrameRate int `toml:"target_frame_rate" yaml:"target_frame_rate"`
	// Headless runs without opening a window. MaxFrames stops a headless run
	// after that many frames, zero means never.
	Headless  bool `toml:"headless" yaml:"headless"`
	MaxFrames int  `toml:"max_frames" yaml:"max_frames"`
	MaxBodies int  `toml:"max_bodies" yaml:"max_bodies"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:       100,
		StartPosY:       100,
		Name:            "Dream",
		LogLevel:        "info",
		Workers:         4,
		JobQueueSize:    256,
		TemplatesDir:    "templates",
		TargetFrameRate: 60,
		MaxBodies:       1024,
	}
}

type configFormat int

const (
	configTOML configFormat = iota
	configYAML
)

func formatOf(path string) (configFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return configTOML, nil
	case ".yaml", ".yml":
		return configYAML, nil
	}
	return 0, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

// LoadConfig reads path over the defaults. A missing file gives the defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		core.LogInfo("no config at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	switch format {
	case configTOML:
		err = toml.Unmarshal(data, cfg)
	case configYAML:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *ApplicationConfig) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch format {
	case configTOML:
		data, err = toml.Marshal(cfg)
	case configYAML:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first setting the engine cannot start with.
func (c *ApplicationConfig) Validate() error {
	switch {
	case c.Workers < 1:
		return core.ErrNoWorkers
	case c.JobQueueSize < 0:
		return core.ErrNegativeChannelSize
	case c.TargetFrameRate < 0:
		return fmt.Errorf("target frame rate cannot be negative, got %d", c.TargetFrameRate)
	case c.StartWidth < 0 || c.StartHeight < 0:
		return fmt.Errorf("window size cannot be negative, got %dx%d", c.StartWidth, c.StartHeight)
	}
	return nil
}
