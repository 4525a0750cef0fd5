package vdb

import (
	"fmt"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"
)

// Stats summarizes the structure and memory footprint of a tree.
type Stats struct {
	UpperNodes   int
	LowerNodes   int
	LeafNodes    int
	UpperTiles   int // active tiles held in upper-node slots
	LowerTiles   int // active tiles held in lower-node slots
	ActiveVoxels uint64
	MemBytes     uint64
}

// Stats walks the tree and measures its deep memory usage.
func (t *Tree[T]) Stats() Stats {
	s := Stats{
		ActiveVoxels: t.ActiveVoxelCount(),
		MemBytes:     uint64(size.Of(t)),
	}
	for _, upper := range t.root {
		s.UpperNodes++
		s.UpperTiles += upper.tileMask.countOn()
		for slot, lower := range upper.children {
			if !upper.childMask.isOn(slot) {
				continue
			}
			s.LowerNodes++
			s.LowerTiles += lower.tileMask.countOn()
			s.LeafNodes += lower.childMask.countOn()
		}
	}
	return s
}

// NodeCount returns the total number of allocated nodes at all levels.
func (s Stats) NodeCount() int {
	return s.UpperNodes + s.LowerNodes + s.LeafNodes
}

func (s Stats) String() string {
	return fmt.Sprintf("%d upper / %d lower / %d leaf nodes, %d tiles, %s active voxels, %s",
		s.UpperNodes, s.LowerNodes, s.LeafNodes, s.UpperTiles+s.LowerTiles,
		humanize.Comma(int64(s.ActiveVoxels)), humanize.Bytes(s.MemBytes))
}
