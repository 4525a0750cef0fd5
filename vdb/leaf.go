package vdb

import "github.com/solidvox/solidvox/vox"

// LeafNode is the deepest node level: a dense block of voxel values plus an
// active bit per voxel.  Unlike tiles, a leaf allocates storage for every
// voxel in its region, so per-voxel access within a leaf is O(1).
// Inactive voxels hold the tree's background value.
type LeafNode[T comparable] struct {
	origin vox.Coord
	log2   uint8
	values []T
	active bitmask
}

func newLeaf[T comparable](sh Shape, origin vox.Coord, background T) *LeafNode[T] {
	n := &LeafNode[T]{
		origin: origin,
		log2:   uint8(sh.LeafLog2),
		values: make([]T, sh.leafSize()),
		active: newBitmask(sh.leafSize()),
	}
	if background != *new(T) {
		for i := range n.values {
			n.values[i] = background
		}
	}
	return n
}

// newLeafFilled returns a leaf with every voxel active and holding v.  Used
// when a tile is subdivided: the tile value is pushed down as the initial
// fill so prior reads are preserved.
func newLeafFilled[T comparable](sh Shape, origin vox.Coord, v T) *LeafNode[T] {
	n := &LeafNode[T]{
		origin: origin,
		log2:   uint8(sh.LeafLog2),
		values: make([]T, sh.leafSize()),
		active: newBitmask(sh.leafSize()),
	}
	for i := range n.values {
		n.values[i] = v
	}
	n.active.fill(sh.leafSize())
	return n
}

// Origin returns the minimum corner of the leaf's region.
func (n *LeafNode[T]) Origin() vox.Coord { return n.origin }

// Extent returns the leaf's size in voxels per side.
func (n *LeafNode[T]) Extent() int { return 1 << n.log2 }

// ActiveCount returns the number of active voxels in the leaf.
func (n *LeafNode[T]) ActiveCount() int { return n.active.countOn() }

// ValueAt returns the value and active state of the voxel at c, which must
// lie inside the leaf's region.
func (n *LeafNode[T]) ValueAt(c vox.Coord) (T, bool) {
	i := n.offset(c)
	return n.values[i], n.active.isOn(i)
}

// ForEachActive calls f for every active voxel in ascending z-major order.
// Iteration stops early if f returns false.
func (n *LeafNode[T]) ForEachActive(f func(c vox.Coord, v T) bool) bool {
	for i := range n.values {
		if n.active.isOn(i) {
			if !f(n.coordAt(i), n.values[i]) {
				return false
			}
		}
	}
	return true
}

func (n *LeafNode[T]) offset(c vox.Coord) int {
	m := int32(1<<n.log2 - 1)
	return slotIndex(c.X&m, c.Y&m, c.Z&m, int(n.log2))
}

func (n *LeafNode[T]) coordAt(offset int) vox.Coord {
	x, y, z := slotLocal(offset, int(n.log2))
	return vox.Coord{X: n.origin.X + x, Y: n.origin.Y + y, Z: n.origin.Z + z}
}

// set writes v and activates the voxel, returning the change in active
// count (0 or 1).
func (n *LeafNode[T]) set(c vox.Coord, v T) int {
	i := n.offset(c)
	n.values[i] = v
	if n.active.isOn(i) {
		return 0
	}
	n.active.on(i)
	return 1
}

// erase deactivates the voxel and resets it to the background value,
// returning the change in active count (0 or -1).
func (n *LeafNode[T]) erase(c vox.Coord, background T) int {
	i := n.offset(c)
	if !n.active.isOn(i) {
		return 0
	}
	n.active.off(i)
	n.values[i] = background
	return -1
}

func (n *LeafNode[T]) isEmpty() bool { return n.active.isEmpty() }

// constant reports whether the leaf is fully active with all values equal
// under approx, returning the representative value.
func (n *LeafNode[T]) constant(approx func(a, b T) bool) (T, bool) {
	var zero T
	if !n.active.isFull(len(n.values)) {
		return zero, false
	}
	rep := n.values[0]
	for _, v := range n.values[1:] {
		if !approx(rep, v) {
			return zero, false
		}
	}
	return rep, true
}

func (n *LeafNode[T]) clone() *LeafNode[T] {
	out := &LeafNode[T]{
		origin: n.origin,
		log2:   n.log2,
		values: make([]T, len(n.values)),
		active: n.active.clone(),
	}
	copy(out.values, n.values)
	return out
}
