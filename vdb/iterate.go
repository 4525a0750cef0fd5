package vdb

import "github.com/solidvox/solidvox/vox"

// Leaf is one element of a leaf-level traversal: either a dense leaf node
// or a constant tile covering Extent³ voxels.
type Leaf[T comparable] struct {
	Origin vox.Coord
	Extent int
	Tile   bool
	Value  T            // tile value, when Tile
	Node   *LeafNode[T] // dense leaf, when !Tile
}

// LeafIterator is a restartable pull iterator over the occupied leaves and
// tiles of a tree, in deterministic Z, Y, X order.  It is a pure traversal
// with no side effects on the tree; the tree must not be mutated while an
// iterator is in use.
type LeafIterator[T comparable] struct {
	tree *Tree[T]
	keys []vox.Coord

	ki        int
	upperSlot int
	lowerSlot int
	inLower   bool
	cur       Leaf[T]
}

// Leaves returns an iterator over all dense leaves and constant tiles.
func (t *Tree[T]) Leaves() *LeafIterator[T] {
	return &LeafIterator[T]{tree: t, keys: t.sortedRootKeys()}
}

// Reset restarts the iterator from the beginning.
func (it *LeafIterator[T]) Reset() {
	it.ki, it.upperSlot, it.lowerSlot = 0, 0, 0
	it.inLower = false
}

// Leaf returns the current element.  Valid only after a Next call that
// returned true.
func (it *LeafIterator[T]) Leaf() Leaf[T] { return it.cur }

// Next advances to the next occupied leaf or tile, reporting whether one
// exists.
func (it *LeafIterator[T]) Next() bool {
	sh := it.tree.shape
	for it.ki < len(it.keys) {
		upper := it.tree.root[it.keys[it.ki]]
		for it.upperSlot < sh.upperSize() {
			if it.inLower {
				lower := upper.children[it.upperSlot]
				for it.lowerSlot < sh.lowerSize() {
					slot := it.lowerSlot
					it.lowerSlot++
					if lower.childMask.isOn(slot) {
						node := lower.children[slot]
						it.cur = Leaf[T]{
							Origin: node.Origin(),
							Extent: sh.LeafExtent(),
							Node:   node,
						}
						return true
					}
					if lower.tileMask.isOn(slot) {
						it.cur = Leaf[T]{
							Origin: sh.lowerSlotOrigin(lower.origin, slot),
							Extent: sh.LeafExtent(),
							Tile:   true,
							Value:  lower.tiles[slot],
						}
						return true
					}
				}
				it.inLower = false
				it.upperSlot++
				continue
			}
			slot := it.upperSlot
			if upper.childMask.isOn(slot) {
				it.inLower = true
				it.lowerSlot = 0
				continue
			}
			it.upperSlot++
			if upper.tileMask.isOn(slot) {
				it.cur = Leaf[T]{
					Origin: sh.upperSlotOrigin(upper.origin, slot),
					Extent: sh.LowerExtent(),
					Tile:   true,
					Value:  upper.tiles[slot],
				}
				return true
			}
		}
		it.ki++
		it.upperSlot = 0
	}
	return false
}

// ForEachActive calls f for every active voxel, optionally restricted to
// bbox (nil means everywhere).  Iteration stops early if f returns false.
func (t *Tree[T]) ForEachActive(bbox *vox.BBox, f func(c vox.Coord, v T) bool) {
	it := t.Leaves()
	for it.Next() {
		leaf := it.Leaf()
		if bbox != nil && !leafIntersects(leaf.Origin, leaf.Extent, bbox) {
			continue
		}
		if leaf.Tile {
			if !forEachTileVoxel(leaf, bbox, f) {
				return
			}
			continue
		}
		done := leaf.Node.ForEachActive(func(c vox.Coord, v T) bool {
			if bbox != nil && !bbox.Contains(c) {
				return true
			}
			return f(c, v)
		})
		if !done {
			return
		}
	}
}

func leafIntersects(origin vox.Coord, extent int, bbox *vox.BBox) bool {
	n := int32(extent - 1)
	return origin.X+n >= bbox.Min.X && origin.X <= bbox.Max.X &&
		origin.Y+n >= bbox.Min.Y && origin.Y <= bbox.Max.Y &&
		origin.Z+n >= bbox.Min.Z && origin.Z <= bbox.Max.Z
}

func forEachTileVoxel[T comparable](leaf Leaf[T], bbox *vox.BBox, f func(c vox.Coord, v T) bool) bool {
	n := int32(leaf.Extent - 1)
	min, max := leaf.Origin, leaf.Origin.Add(vox.Coord{X: n, Y: n, Z: n})
	if bbox != nil {
		min = vox.Coord{X: max32(min.X, bbox.Min.X), Y: max32(min.Y, bbox.Min.Y), Z: max32(min.Z, bbox.Min.Z)}
		max = vox.Coord{X: min32(max.X, bbox.Max.X), Y: min32(max.Y, bbox.Max.Y), Z: min32(max.Z, bbox.Max.Z)}
	}
	for z := min.Z; z <= max.Z; z++ {
		for y := min.Y; y <= max.Y; y++ {
			for x := min.X; x <= max.X; x++ {
				if !f(vox.Coord{X: x, Y: y, Z: z}, leaf.Value) {
					return false
				}
			}
		}
	}
	return true
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
