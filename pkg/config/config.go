// Package config provides configuration loading and management for crackvector.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"crackvector/pkg/cvm"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Measurement parameters
	Measurement struct {
		// PixelLength is the physical size of one pixel in mm
		PixelLength float64 `yaml:"pixelLength"`

		// MaxWidthExpand bounds a width scan to this many half-pixel steps per direction
		MaxWidthExpand int `yaml:"maxWidthExpand"`

		// WidthIntensityThreshold is the intensity a sample must exceed to count as crack
		WidthIntensityThreshold struct {
			Segmentation float64 `yaml:"segmentation"`
			Range        float64 `yaml:"range"`
		} `yaml:"widthIntensityThreshold"`
	} `yaml:"measurement"`

	// Input parameters
	Input struct {
		// BinarizeThreshold is the gray value above which a segmentation pixel is crack
		BinarizeThreshold float64 `yaml:"binarizeThreshold"`
	} `yaml:"input"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many workers a batch run uses
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose logs every topology diagnostic
		Verbose bool `yaml:"verbose"`

		// Overlay renders an overlay image per batch job
		Overlay bool `yaml:"overlay"`

		// OverlayFormat is the overlay file format: png, jpg or webp
		OverlayFormat string `yaml:"overlayFormat"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	opts := cvm.DefaultOptions()

	// Set default measurement parameters
	cfg.Measurement.PixelLength = opts.PixelLength
	cfg.Measurement.MaxWidthExpand = opts.MaxWidthExpand
	cfg.Measurement.WidthIntensityThreshold.Segmentation = opts.SegmentationThreshold
	cfg.Measurement.WidthIntensityThreshold.Range = opts.RangeThreshold

	cfg.Input.BinarizeThreshold = opts.BinarizeThreshold

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default output parameters
	cfg.Output.Verbose = false
	cfg.Output.Overlay = false
	cfg.Output.OverlayFormat = "png"

	return cfg
}

// Validate rejects values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Measurement.PixelLength <= 0 {
		return fmt.Errorf("measurement.pixelLength must be positive, got %g", c.Measurement.PixelLength)
	}
	if c.Measurement.MaxWidthExpand <= 0 {
		return fmt.Errorf("measurement.maxWidthExpand must be positive, got %d", c.Measurement.MaxWidthExpand)
	}
	if c.Processing.NumCores <= 0 {
		return fmt.Errorf("processing.numCores must be positive, got %d", c.Processing.NumCores)
	}
	switch c.Output.OverlayFormat {
	case "png", "jpg", "webp":
	default:
		return fmt.Errorf("output.overlayFormat must be png, jpg or webp, got %q", c.Output.OverlayFormat)
	}
	return nil
}

// Options converts the measurement settings to builder options
func (c *Config) Options() cvm.Options {
	return cvm.Options{
		PixelLength:           c.Measurement.PixelLength,
		MaxWidthExpand:        c.Measurement.MaxWidthExpand,
		SegmentationThreshold: c.Measurement.WidthIntensityThreshold.Segmentation,
		RangeThreshold:        c.Measurement.WidthIntensityThreshold.Range,
		BinarizeThreshold:     c.Input.BinarizeThreshold,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
