package vdb

import (
	"errors"
	"testing"

	"github.com/solidvox/solidvox/vox"
)

func TestShapeValidate(t *testing.T) {
	if err := DefaultShape().Validate(); err != nil {
		t.Fatalf("default shape should validate: %v", err)
	}

	bad := []Shape{
		{LeafLog2: 0, LowerLog2: 4, UpperLog2: 5},
		{LeafLog2: 3, LowerLog2: 7, UpperLog2: 5},
		{LeafLog2: 3, LowerLog2: 4, UpperLog2: -1},
		{LeafLog2: 6, LowerLog2: 6, UpperLog2: 6}, // total extent too large
	}
	for _, sh := range bad {
		err := sh.Validate()
		if err == nil {
			t.Errorf("shape %+v should fail validation", sh)
		} else if !errors.Is(err, ErrBadShape) {
			t.Errorf("shape %+v: error %v should wrap ErrBadShape", sh, err)
		}
	}
}

func TestShapeExtents(t *testing.T) {
	sh := DefaultShape()
	if sh.LeafExtent() != 8 || sh.LowerExtent() != 128 || sh.UpperExtent() != 4096 {
		t.Errorf("default extents = %d/%d/%d, want 8/128/4096",
			sh.LeafExtent(), sh.LowerExtent(), sh.UpperExtent())
	}
	if sh.leafSize() != 512 || sh.lowerSize() != 4096 || sh.upperSize() != 32768 {
		t.Errorf("default slot counts = %d/%d/%d, want 512/4096/32768",
			sh.leafSize(), sh.lowerSize(), sh.upperSize())
	}
}

func TestOriginsFloorNegatives(t *testing.T) {
	sh := DefaultShape()
	tests := []struct {
		c                  vox.Coord
		leaf, lower, upper vox.Coord
	}{
		{vox.Coord{X: 0, Y: 0, Z: 0}, vox.Coord{X: 0, Y: 0, Z: 0}, vox.Coord{X: 0, Y: 0, Z: 0}, vox.Coord{X: 0, Y: 0, Z: 0}},
		{vox.Coord{X: 7, Y: 8, Z: 15}, vox.Coord{X: 0, Y: 8, Z: 8}, vox.Coord{X: 0, Y: 0, Z: 0}, vox.Coord{X: 0, Y: 0, Z: 0}},
		{vox.Coord{X: -1, Y: -1, Z: -1}, vox.Coord{X: -8, Y: -8, Z: -8}, vox.Coord{X: -128, Y: -128, Z: -128}, vox.Coord{X: -4096, Y: -4096, Z: -4096}},
		{vox.Coord{X: -8, Y: -129, Z: 4096}, vox.Coord{X: -8, Y: -136, Z: 4096}, vox.Coord{X: -128, Y: -256, Z: 4096}, vox.Coord{X: -4096, Y: -4096, Z: 4096}},
	}
	for _, tc := range tests {
		if got := sh.LeafOrigin(tc.c); got != tc.leaf {
			t.Errorf("LeafOrigin(%s) = %s, want %s", tc.c, got, tc.leaf)
		}
		if got := sh.LowerOrigin(tc.c); got != tc.lower {
			t.Errorf("LowerOrigin(%s) = %s, want %s", tc.c, got, tc.lower)
		}
		if got := sh.UpperOrigin(tc.c); got != tc.upper {
			t.Errorf("UpperOrigin(%s) = %s, want %s", tc.c, got, tc.upper)
		}
	}
}

// Addressing must be reversible: slot index plus the ancestor origin
// reconstructs the global coordinate at every level.
func TestAddressingRoundTrip(t *testing.T) {
	sh := DefaultShape()
	coords := []vox.Coord{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}, {X: 7, Y: 7, Z: 7}, {X: 8, Y: 0, Z: 127}, {X: 4095, Y: 4095, Z: 4095},
		{X: -1, Y: -2, Z: -3}, {X: -8, Y: -128, Z: -4096}, {X: -4097, Y: 513, Z: -77},
	}
	for _, c := range coords {
		leafOrig := sh.LeafOrigin(c)
		if got := sh.leafCoord(leafOrig, sh.leafOffset(c)); got != c {
			t.Errorf("leaf round trip for %s: got %s", c, got)
		}
		lowerOrig := sh.LowerOrigin(c)
		if got := sh.lowerSlotOrigin(lowerOrig, sh.lowerSlot(c)); got != leafOrig {
			t.Errorf("lower round trip for %s: got %s, want %s", c, got, leafOrig)
		}
		upperOrig := sh.UpperOrigin(c)
		if got := sh.upperSlotOrigin(upperOrig, sh.upperSlot(c)); got != lowerOrig {
			t.Errorf("upper round trip for %s: got %s, want %s", c, got, lowerOrig)
		}
	}
}

func TestAddressingNonDefaultShape(t *testing.T) {
	sh := Shape{LeafLog2: 2, LowerLog2: 3, UpperLog2: 2}
	if err := sh.Validate(); err != nil {
		t.Fatalf("shape should validate: %v", err)
	}
	if sh.LeafExtent() != 4 || sh.LowerExtent() != 32 || sh.UpperExtent() != 128 {
		t.Fatalf("extents = %d/%d/%d, want 4/32/128",
			sh.LeafExtent(), sh.LowerExtent(), sh.UpperExtent())
	}
	c := vox.Coord{X: -37, Y: 100, Z: 5}
	if got := sh.leafCoord(sh.LeafOrigin(c), sh.leafOffset(c)); got != c {
		t.Errorf("leaf round trip for %s: got %s", c, got)
	}
}
