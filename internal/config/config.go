// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package config loads the optional YAML configuration file that overrides
// the orchestrator's default output layout and worker count.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the orchestrator's tunable settings. Default() returns the
// documented default layout from spec.md §6.
type Config struct {
	OutputDir      string `yaml:"output_dir"`
	RMEConfigDir   string `yaml:"rme_config_dir"`
	LogsDir        string `yaml:"logs_dir"`
	SectorWorkers  int    `yaml:"sector_workers"`
	PlacementRingCap int  `yaml:"placement_ring_cap"`
}

// Default returns the configuration used when no config file is supplied.
func Default() Config {
	return Config{
		OutputDir:        "output",
		RMEConfigDir:     "output/rme_config/data/770-cipsoft",
		LogsDir:          "logs",
		SectorWorkers:    0, // 0 = use runtime.NumCPU()
		PlacementRingCap: 50,
	}
}

// Load reads and merges a YAML config file over Default(). Missing fields
// keep their default value; a missing file is not an error (the pipeline
// only fails on missing *mandatory* game-data inputs, per spec.md §7).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
