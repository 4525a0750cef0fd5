/*
Package vox holds the core types shared across the solidvox packages:
integer lattice coordinates, coordinate bounding boxes, logging, and
TOML-based configuration.
*/
package vox

import (
	"fmt"
	"math"
)

// Coord is a 3D signed integer coordinate on the voxel lattice.
type Coord struct {
	X, Y, Z int32
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns the component-wise sum of two coordinates.
func (c Coord) Add(d Coord) Coord {
	return Coord{c.X + d.X, c.Y + d.Y, c.Z + d.Z}
}

// Sub returns the component-wise difference of two coordinates.
func (c Coord) Sub(d Coord) Coord {
	return Coord{c.X - d.X, c.Y - d.Y, c.Z - d.Z}
}

// Less reports whether c sorts before d in Z, Y, X order.  This is the
// ordering used for deterministic traversal of node sets.
func (c Coord) Less(d Coord) bool {
	if c.Z != d.Z {
		return c.Z < d.Z
	}
	if c.Y != d.Y {
		return c.Y < d.Y
	}
	return c.X < d.X
}

// BBox is an inclusive axis-aligned bounding box of lattice coordinates.
type BBox struct {
	Min, Max Coord
}

// EmptyBBox returns a bounding box in the canonical empty state, where
// Min > Max on every axis.
func EmptyBBox() BBox {
	return BBox{
		Min: Coord{math.MaxInt32, math.MaxInt32, math.MaxInt32},
		Max: Coord{math.MinInt32, math.MinInt32, math.MinInt32},
	}
}

// IsEmpty reports whether the bounding box contains no coordinates.
func (b *BBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Expand grows the bounding box to include c.
func (b *BBox) Expand(c Coord) {
	if c.X < b.Min.X {
		b.Min.X = c.X
	}
	if c.Y < b.Min.Y {
		b.Min.Y = c.Y
	}
	if c.Z < b.Min.Z {
		b.Min.Z = c.Z
	}
	if c.X > b.Max.X {
		b.Max.X = c.X
	}
	if c.Y > b.Max.Y {
		b.Max.Y = c.Y
	}
	if c.Z > b.Max.Z {
		b.Max.Z = c.Z
	}
}

// ExpandBBox grows the bounding box to include all of b2.
func (b *BBox) ExpandBBox(b2 BBox) {
	if b2.IsEmpty() {
		return
	}
	b.Expand(b2.Min)
	b.Expand(b2.Max)
}

// Contains reports whether c lies inside the bounding box.
func (b *BBox) Contains(c Coord) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X &&
		c.Y >= b.Min.Y && c.Y <= b.Max.Y &&
		c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

func (b BBox) String() string {
	return fmt.Sprintf("[%s %s]", b.Min, b.Max)
}
