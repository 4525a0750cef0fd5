package vox

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// GridConfig holds the construction-time parameters of a signed-distance
// grid: the index-to-world scale, the narrow band half width (in voxels),
// and the per-level log2 branching factors of the tree.
type GridConfig struct {
	VoxelSize float64 `toml:"voxel_size"`
	HalfWidth float64 `toml:"half_width"`
	LeafLog2  int     `toml:"leaf_log2"`
	LowerLog2 int     `toml:"lower_log2"`
	UpperLog2 int     `toml:"upper_log2"`
}

// Config is the top-level TOML configuration.
type Config struct {
	Grid GridConfig `toml:"grid"`
	Log  LogConfig  `toml:"log"`
}

// DefaultGridConfig returns the standard 8³ leaf, 16³ lower, 32³ upper
// configuration with unit voxels and a three voxel half width.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		VoxelSize: 1.0,
		HalfWidth: 3.0,
		LeafLog2:  3,
		LowerLog2: 4,
		UpperLog2: 5,
	}
}

// Validate checks the grid parameters that are not covered by tree shape
// validation.
func (c GridConfig) Validate() error {
	if c.VoxelSize <= 0 {
		return fmt.Errorf("voxel_size must be positive, got %g", c.VoxelSize)
	}
	if c.HalfWidth < 1 {
		return fmt.Errorf("half_width must be at least 1 voxel, got %g", c.HalfWidth)
	}
	return nil
}

// LoadConfig reads a TOML configuration file, fills unset grid fields with
// defaults, and installs the configured logger.
func LoadConfig(filename string) (*Config, error) {
	c := Config{Grid: DefaultGridConfig()}
	if _, err := toml.DecodeFile(filename, &c); err != nil {
		return nil, fmt.Errorf("could not decode TOML config %q: %w", filename, err)
	}
	if err := c.Grid.Validate(); err != nil {
		return nil, fmt.Errorf("bad config %q: %w", filename, err)
	}
	c.Log.SetLogger()
	return &c, nil
}
