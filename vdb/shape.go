// Package vdb implements a sparse hierarchical voxel grid: a fixed-depth
// tree storing per-voxel values over an unbounded signed integer lattice
// with memory proportional to the occupied region.
//
// The hierarchy follows the VDB layout: a dynamically growing root maps
// coarse origins to upper internal nodes, which branch into lower internal
// nodes and finally dense leaf nodes.  With the default shape a leaf spans
// 8³ voxels, a lower node 128³ and an upper node 4096³.  Internal node
// slots are either a child subtree, a constant active "tile", or empty
// (the tree's background value).
//
// Trees are single-writer: at most one accessor or combine operation may
// mutate a tree at a time, while concurrent reads of an immutable tree are
// safe.
package vdb

import (
	"errors"
	"fmt"

	"github.com/solidvox/solidvox/vox"
)

var (
	// ErrBadShape is wrapped by errors returned for invalid tree
	// configurations.
	ErrBadShape = errors.New("invalid tree shape")

	// ErrShapeMismatch is returned when combining trees built with
	// different shapes.
	ErrShapeMismatch = errors.New("tree shapes do not match")
)

// Shape fixes the branching factor of each tree level as a log2 dimension.
// All nodes at a given depth share the same branching; leaves all sit at
// the same depth.  The shape is set at tree construction and never changes.
type Shape struct {
	LeafLog2  int // log2 voxels per leaf side
	LowerLog2 int // log2 leaf slots per lower-node side
	UpperLog2 int // log2 lower slots per upper-node side
}

// DefaultShape is the standard NanoVDB-style 8³ leaf, 16³ lower, 32³ upper
// configuration.
func DefaultShape() Shape {
	return Shape{LeafLog2: 3, LowerLog2: 4, UpperLog2: 5}
}

// Validate rejects configurations whose branching factors are out of range
// before any node is allocated.
func (s Shape) Validate() error {
	for _, d := range []struct {
		name string
		log2 int
	}{
		{"leaf_log2", s.LeafLog2},
		{"lower_log2", s.LowerLog2},
		{"upper_log2", s.UpperLog2},
	} {
		if d.log2 < 1 || d.log2 > 6 {
			return fmt.Errorf("%w: %s = %d, must be in [1, 6]", ErrBadShape, d.name, d.log2)
		}
	}
	if total := s.LeafLog2 + s.LowerLog2 + s.UpperLog2; total > 16 {
		return fmt.Errorf("%w: total extent 2^%d voxels per side exceeds 2^16", ErrBadShape, total)
	}
	return nil
}

// Per-level spatial extents in voxels per side.

func (s Shape) LeafExtent() int  { return 1 << s.LeafLog2 }
func (s Shape) LowerExtent() int { return 1 << (s.LeafLog2 + s.LowerLog2) }
func (s Shape) UpperExtent() int { return 1 << (s.LeafLog2 + s.LowerLog2 + s.UpperLog2) }

// Slot counts per node.

func (s Shape) leafSize() int  { return 1 << (3 * s.LeafLog2) }
func (s Shape) lowerSize() int { return 1 << (3 * s.LowerLog2) }
func (s Shape) upperSize() int { return 1 << (3 * s.UpperLog2) }

// Active voxels contained by a full tile at each internal level.

func (s Shape) leafRegionVoxels() int  { return 1 << (3 * s.LeafLog2) }
func (s Shape) lowerRegionVoxels() int { return 1 << (3 * (s.LeafLog2 + s.LowerLog2)) }

// maskOrigin masks each component down to a multiple of 2^log2.  The AND
// with a sign-extended mask floors negative coordinates correctly, unlike
// truncating division.
func maskOrigin(c vox.Coord, log2 int) vox.Coord {
	mask := int32(-1) << log2
	return vox.Coord{X: c.X & mask, Y: c.Y & mask, Z: c.Z & mask}
}

// LeafOrigin returns the origin of the leaf node containing c.
func (s Shape) LeafOrigin(c vox.Coord) vox.Coord {
	return maskOrigin(c, s.LeafLog2)
}

// LowerOrigin returns the origin of the lower internal node containing c.
func (s Shape) LowerOrigin(c vox.Coord) vox.Coord {
	return maskOrigin(c, s.LeafLog2+s.LowerLog2)
}

// UpperOrigin returns the origin of the upper internal node containing c.
// This is also the root key of c.
func (s Shape) UpperOrigin(c vox.Coord) vox.Coord {
	return maskOrigin(c, s.LeafLog2+s.LowerLog2+s.UpperLog2)
}

// slotIndex linearizes per-component slot indices in z-major order.
func slotIndex(x, y, z int32, log2 int) int {
	return (int(z) << (2 * log2)) | (int(y) << log2) | int(x)
}

// leafOffset returns the linear index of c within its leaf node.
func (s Shape) leafOffset(c vox.Coord) int {
	m := int32(1<<s.LeafLog2 - 1)
	return slotIndex(c.X&m, c.Y&m, c.Z&m, s.LeafLog2)
}

// lowerSlot returns the slot index of c's leaf within its lower node.
func (s Shape) lowerSlot(c vox.Coord) int {
	m := int32(1<<s.LowerLog2 - 1)
	return slotIndex(
		(c.X>>s.LeafLog2)&m,
		(c.Y>>s.LeafLog2)&m,
		(c.Z>>s.LeafLog2)&m,
		s.LowerLog2)
}

// upperSlot returns the slot index of c's lower node within its upper node.
func (s Shape) upperSlot(c vox.Coord) int {
	shift := s.LeafLog2 + s.LowerLog2
	m := int32(1<<s.UpperLog2 - 1)
	return slotIndex(
		(c.X>>shift)&m,
		(c.Y>>shift)&m,
		(c.Z>>shift)&m,
		s.UpperLog2)
}

// slotLocal decodes a z-major slot index back into per-component indices.
func slotLocal(slot, log2 int) (x, y, z int32) {
	dim := int32(1<<log2 - 1)
	x = int32(slot) & dim
	y = int32(slot>>log2) & dim
	z = int32(slot>>(2*log2)) & dim
	return
}

// leafCoord reconstructs the global coordinate of a voxel offset within a
// leaf at the given origin.  Inverse of leafOffset.
func (s Shape) leafCoord(origin vox.Coord, offset int) vox.Coord {
	x, y, z := slotLocal(offset, s.LeafLog2)
	return vox.Coord{X: origin.X + x, Y: origin.Y + y, Z: origin.Z + z}
}

// lowerSlotOrigin reconstructs the leaf origin for a slot of a lower node.
// Inverse of lowerSlot.
func (s Shape) lowerSlotOrigin(origin vox.Coord, slot int) vox.Coord {
	x, y, z := slotLocal(slot, s.LowerLog2)
	return vox.Coord{
		X: origin.X + x<<s.LeafLog2,
		Y: origin.Y + y<<s.LeafLog2,
		Z: origin.Z + z<<s.LeafLog2,
	}
}

// upperSlotOrigin reconstructs the lower-node origin for a slot of an
// upper node.  Inverse of upperSlot.
func (s Shape) upperSlotOrigin(origin vox.Coord, slot int) vox.Coord {
	shift := s.LeafLog2 + s.LowerLog2
	x, y, z := slotLocal(slot, s.UpperLog2)
	return vox.Coord{
		X: origin.X + x<<shift,
		Y: origin.Y + y<<shift,
		Z: origin.Z + z<<shift,
	}
}
