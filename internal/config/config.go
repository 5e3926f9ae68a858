package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration. It is immutable after
// Validate has run.
type Config struct {
	InputPath string // path to the recorded .mkv session (required)
	Scaling   bool   // rescale depth/infrared rasters to 8-bit before writing
	Transform bool   // remap depth into the color camera before export
	Quality   int    // JPEG encoding quality for infrared output [0,100]
	Display   bool   // show preview windows while exporting
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Quality: 95,
	}
}

// Validate checks the input file and clamps numeric options into range.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input mkv file is required")
	}

	info, err := os.Stat(c.InputPath)
	if err != nil {
		return fmt.Errorf("can't find input mkv file %q: %w", c.InputPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input %q is not a regular file", c.InputPath)
	}
	if strings.ToLower(filepath.Ext(c.InputPath)) != ".mkv" {
		return fmt.Errorf("input %q is not an mkv file", c.InputPath)
	}

	// Quality is clamped rather than rejected
	if c.Quality < 0 {
		c.Quality = 0
	}
	if c.Quality > 100 {
		c.Quality = 100
	}

	return nil
}

// OutputRoot returns "<input dir>/<input stem>", the directory that receives
// one subdirectory per exported modality.
func (c *Config) OutputRoot() string {
	base := filepath.Base(c.InputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(c.InputPath), stem)
}
