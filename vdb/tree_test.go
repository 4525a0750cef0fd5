package vdb

import (
	"testing"

	"github.com/solidvox/solidvox/vox"
)

const outside = float32(3.0) // background for SDF test trees

func TestBackgroundReads(t *testing.T) {
	tree := New[float32](outside)
	coords := []vox.Coord{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: -1000, Y: 2000, Z: -3000}, {X: 1 << 20, Y: -(1 << 20), Z: 0},
	}
	for _, c := range coords {
		if got := tree.Sample(c); got != outside {
			t.Errorf("Sample(%s) = %g, want background %g", c, got, outside)
		}
		if tree.IsActive(c) {
			t.Errorf("IsActive(%s) = true on empty tree", c)
		}
	}
	if !tree.IsEmpty() {
		t.Error("fresh tree should be empty")
	}
}

func TestSetThenSample(t *testing.T) {
	tree := New[float32](outside)
	coords := []vox.Coord{
		{X: 0, Y: 0, Z: 0}, {X: 7, Y: 7, Z: 7}, {X: 8, Y: 8, Z: 8}, {X: -1, Y: -1, Z: -1},
		{X: 127, Y: 0, Z: -128}, {X: 4096, Y: -4096, Z: 12345},
	}
	for i, c := range coords {
		v := float32(i) - 2.5
		tree.Set(c, v)
		if got := tree.Sample(c); got != v {
			t.Errorf("Sample(%s) = %g immediately after Set, want %g", c, got, v)
		}
		if !tree.IsActive(c) {
			t.Errorf("IsActive(%s) = false after Set", c)
		}
	}
	if got := tree.ActiveVoxelCount(); got != uint64(len(coords)) {
		t.Errorf("ActiveVoxelCount = %d, want %d", got, len(coords))
	}
	// Neighbors of written voxels still read background.
	if got := tree.Sample(vox.Coord{X: 1, Y: 0, Z: 0}); got != outside {
		t.Errorf("unwritten neighbor = %g, want background", got)
	}
}

func TestSetBackgroundValueStaysActive(t *testing.T) {
	tree := New[float32](outside)
	c := vox.Coord{X: 3, Y: 4, Z: 5}
	tree.Set(c, outside)
	if !tree.IsActive(c) {
		t.Error("setting a voxel to the background value must still activate it")
	}
	if got := tree.ActiveVoxelCount(); got != 1 {
		t.Errorf("ActiveVoxelCount = %d, want 1", got)
	}
}

func TestErase(t *testing.T) {
	tree := New[float32](outside)
	c := vox.Coord{X: 10, Y: 20, Z: 30}
	tree.Set(c, -1)
	tree.Erase(c)
	if tree.IsActive(c) {
		t.Error("voxel still active after Erase")
	}
	if got := tree.Sample(c); got != outside {
		t.Errorf("erased voxel = %g, want background", got)
	}
	if got := tree.ActiveVoxelCount(); got != 0 {
		t.Errorf("ActiveVoxelCount = %d, want 0", got)
	}
	// Erasing one voxel of a tile subdivides it; the rest keeps the value.
	tree.FillTile(vox.Coord{X: 64, Y: 64, Z: 64}, -2)
	tree.Erase(vox.Coord{X: 64, Y: 64, Z: 64})
	if tree.IsActive(vox.Coord{X: 64, Y: 64, Z: 64}) {
		t.Error("erased tile voxel still active")
	}
	if got := tree.Sample(vox.Coord{X: 65, Y: 64, Z: 64}); got != -2 {
		t.Errorf("neighbor in subdivided tile = %g, want -2", got)
	}
}

func TestFillTile(t *testing.T) {
	tree := New[float32](outside)
	sh := tree.Shape()
	origin := vox.Coord{X: 16, Y: -8, Z: 0}
	tree.FillTile(origin, -1)

	want := uint64(sh.leafRegionVoxels())
	if got := tree.ActiveVoxelCount(); got != want {
		t.Errorf("ActiveVoxelCount = %d, want %d", got, want)
	}
	leafOrigin := sh.LeafOrigin(origin)
	last := leafOrigin.Add(vox.Coord{X: 7, Y: 7, Z: 7})
	for _, c := range []vox.Coord{leafOrigin, last, {X: 16, Y: -8, Z: 0}} {
		if got := tree.Sample(c); got != -1 {
			t.Errorf("tile voxel %s = %g, want -1", c, got)
		}
	}
	if tree.IsActive(leafOrigin.Add(vox.Coord{X: -1, Y: 0, Z: 0})) {
		t.Error("voxel outside tile is active")
	}
	// No dense leaf was allocated for the tile.
	if s := tree.Stats(); s.LeafNodes != 0 || s.LowerTiles != 1 {
		t.Errorf("stats after FillTile: %+v, want 0 leaves and 1 lower tile", s)
	}

	// Writing into the tile subdivides it, preserving prior reads.
	tree.Set(origin, 0.5)
	if got := tree.Sample(origin); got != 0.5 {
		t.Errorf("written tile voxel = %g, want 0.5", got)
	}
	if got := tree.Sample(last); got != -1 {
		t.Errorf("untouched tile voxel after subdivision = %g, want -1", got)
	}
	if got := tree.ActiveVoxelCount(); got != want {
		t.Errorf("ActiveVoxelCount after subdivision = %d, want %d", got, want)
	}
}

func TestFillUpperTile(t *testing.T) {
	tree := New[float32](outside)
	sh := tree.Shape()
	tree.FillUpperTile(vox.Coord{X: 200, Y: 200, Z: 200}, -1)

	want := uint64(sh.lowerRegionVoxels())
	if got := tree.ActiveVoxelCount(); got != want {
		t.Errorf("ActiveVoxelCount = %d, want %d", got, want)
	}
	if got := tree.Sample(vox.Coord{X: 128, Y: 128, Z: 128}); got != -1 {
		t.Errorf("upper tile region corner = %g, want -1", got)
	}
	if s := tree.Stats(); s.LowerNodes != 0 || s.UpperTiles != 1 {
		t.Errorf("stats after FillUpperTile: %+v, want 0 lower nodes and 1 upper tile", s)
	}
	// Setting one voxel subdivides the tile into a lower node of tiles.
	tree.Set(vox.Coord{X: 128, Y: 128, Z: 128}, 0.25)
	if got := tree.Sample(vox.Coord{X: 255, Y: 255, Z: 255}); got != -1 {
		t.Errorf("far corner after subdivision = %g, want -1", got)
	}
	if got := tree.ActiveVoxelCount(); got != want {
		t.Errorf("ActiveVoxelCount after subdivision = %d, want %d", got, want)
	}
}

// Node count after pruning a uniform region depends on the number of
// distinct-value regions, not on the region's volume.
func TestSparsityBound(t *testing.T) {
	nodesForCube := func(n int32) int {
		tree := New[float32](outside)
		for z := int32(0); z < n; z++ {
			for y := int32(0); y < n; y++ {
				for x := int32(0); x < n; x++ {
					tree.Set(vox.Coord{X: x, Y: y, Z: z}, -1)
				}
			}
		}
		tree.Prune(nil)
		return tree.Stats().NodeCount()
	}
	small := nodesForCube(16)
	large := nodesForCube(64)
	if small != large {
		t.Errorf("node count grew with uniform region size: 16³ -> %d nodes, 64³ -> %d nodes", small, large)
	}
}

func TestCloneIndependence(t *testing.T) {
	tree := New[float32](outside)
	tree.Set(vox.Coord{X: 1, Y: 2, Z: 3}, -1)
	tree.FillTile(vox.Coord{X: 100, Y: 100, Z: 100}, -2)

	cp := tree.Clone()
	cp.Set(vox.Coord{X: 1, Y: 2, Z: 3}, 9)
	cp.Erase(vox.Coord{X: 100, Y: 100, Z: 100})

	if got := tree.Sample(vox.Coord{X: 1, Y: 2, Z: 3}); got != -1 {
		t.Errorf("original mutated through clone: %g", got)
	}
	if !tree.IsActive(vox.Coord{X: 100, Y: 100, Z: 100}) {
		t.Error("original tile erased through clone")
	}
}

func TestMapValues(t *testing.T) {
	tree := New[float32](outside)
	tree.Set(vox.Coord{X: 0, Y: 0, Z: 0}, -1.5)
	tree.FillTile(vox.Coord{X: 64, Y: 0, Z: 0}, -2)
	tree.FillUpperTile(vox.Coord{X: 4096, Y: 0, Z: 0}, -3)

	Negate(tree)

	if got := tree.Background(); got != -outside {
		t.Errorf("background after negate = %g, want %g", got, -outside)
	}
	checks := map[vox.Coord]float32{
		{X: 0, Y: 0, Z: 0}:    1.5,
		{X: 64, Y: 0, Z: 0}:   2,
		{X: 4096, Y: 0, Z: 0}: 3,
	}
	for c, want := range checks {
		if got := tree.Sample(c); got != want {
			t.Errorf("Sample(%s) after negate = %g, want %g", c, got, want)
		}
	}
}

func TestActiveBBox(t *testing.T) {
	tree := New[float32](outside)
	tree.Set(vox.Coord{X: -5, Y: 0, Z: 2}, -1)
	tree.Set(vox.Coord{X: 10, Y: 3, Z: -7}, -1)
	bbox := tree.ActiveBBox()
	want := vox.BBox{Min: vox.Coord{X: -5, Y: 0, Z: -7}, Max: vox.Coord{X: 10, Y: 3, Z: 2}}
	if bbox != want {
		t.Errorf("ActiveBBox = %s, want %s", bbox, want)
	}
}
