package vox

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[grid]
voxel_size = 0.25
half_width = 2.0
leaf_log2 = 2
lower_log2 = 3
upper_log2 = 4
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := GridConfig{VoxelSize: 0.25, HalfWidth: 2.0, LeafLog2: 2, LowerLog2: 3, UpperLog2: 4}
	if c.Grid != want {
		t.Errorf("grid config = %+v, want %+v", c.Grid, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// Unset fields keep their defaults.
	path := writeConfig(t, `
[grid]
voxel_size = 0.5
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultGridConfig()
	if c.Grid.VoxelSize != 0.5 {
		t.Errorf("voxel_size = %g, want 0.5", c.Grid.VoxelSize)
	}
	if c.Grid.HalfWidth != def.HalfWidth || c.Grid.LeafLog2 != def.LeafLog2 {
		t.Errorf("defaults not preserved: %+v", c.Grid)
	}
}

func TestLoadConfigRejectsBadGrid(t *testing.T) {
	for _, body := range []string{
		"[grid]\nvoxel_size = 0.0\n",
		"[grid]\nvoxel_size = -1.0\n",
		"[grid]\nhalf_width = 0.5\n",
	} {
		path := writeConfig(t, body)
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("config %q should be rejected", body)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing config file should error")
	}
}

func TestGridConfigValidate(t *testing.T) {
	if err := DefaultGridConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}
