// Package config prepares the folders and the TOML configuration file the
// application works from.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FileName is the configuration file, relative to the working root.
	FileName = "config/config.toml"
	// InputFolder holds the gameplay recordings.
	InputFolder = "input"
	// OutputFolder holds the saved chart files.
	OutputFolder = "output"

	// SoftwareAccelerator selects decoding without hardware assistance.
	SoftwareAccelerator = "software"
)

// Config is the application configuration.
type Config struct {
	// Steps are the seek-shift button labels, signed frame counts.
	Steps []string `toml:"steps"`
	// FileType is the container type of the gameplay recordings.
	FileType string `toml:"filetype"`
	// Accelerator is the decode accelerator: "software", or a device
	// type like "cuda", "vaapi", "vdpau" or "vulkan".
	Accelerator string `toml:"accelerator"`
}

// Default returns the configuration written on first start.
func Default() Config {
	return Config{
		Steps:       []string{"-300", "-60", "-10", "-5", "-1", "+1", "+5", "+10", "+60", "+300"},
		FileType:    "mp4",
		Accelerator: "cuda",
	}
}

// Hardware maps the accelerator setting to the video engine's hardware
// option: empty for software decoding, the device type name otherwise.
func (c Config) Hardware() string {
	if c.Accelerator == "" || c.Accelerator == SoftwareAccelerator {
		return ""
	}

	return c.Accelerator
}

// Load reads a configuration file.
func Load(path string) (Config, error) {
	var c Config

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("couldn't load the config: %w", err)
	}

	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("couldn't load the config: %w", err)
	}

	return c, nil
}

// Save writes the configuration, creating parent directories as needed.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("couldn't save the config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("couldn't save the config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("couldn't save the config: %w", err)
	}

	return nil
}

// Setup prepares the working root: the input, output and config folders
// exist afterwards, and a default configuration file is written when none
// is present yet. The effective configuration is returned.
func Setup(root string) (Config, error) {
	for _, dir := range []string{InputFolder, OutputFolder} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return Config{}, fmt.Errorf("couldn't prepare %s: %w", dir, err)
		}
	}

	path := filepath.Join(root, FileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c := Default()
		if err := c.Save(path); err != nil {
			return Config{}, err
		}

		return c, nil
	}

	return Load(path)
}
