// Package config holds the settings shared by the analysis commands.
//
// Values come from Default(), optionally overlaid by a YAML file (Load), and finally by
// any command-line flags the user set explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDBPath        = "testsAnts.db"
	DefaultParameterName = "NumClients"
	DefaultTitle         = "Run time and best value vs number of clients 20Cl 20Ants 200I"
	DefaultWidth         = 600
	DefaultHeight        = 400
)

// Config is the effective configuration for one analysis run.
type Config struct {
	DBPath        string `yaml:"db"`
	ParameterName string `yaml:"parameter"`
	Title         string `yaml:"title"`
	OutDir        string `yaml:"out_dir"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Report        string `yaml:"report"`
	LogLevel      string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		DBPath:        DefaultDBPath,
		ParameterName: DefaultParameterName,
		Title:         DefaultTitle,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Report:        "md",
		LogLevel:      "info",
	}
}

// Load reads a YAML file and overlays it on Default(). Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside the pipeline.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db path is empty"))
	}
	if strings.TrimSpace(c.ParameterName) == "" {
		errs = append(errs, errors.New("parameter name is empty"))
	}
	if c.Width < 100 || c.Height < 100 {
		errs = append(errs, fmt.Errorf("chart size %dx%d too small (min 100x100)", c.Width, c.Height))
	}
	switch c.Report {
	case "md", "json", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown report format %q (md|json|none)", c.Report))
	}
	return errors.Join(errs...)
}
