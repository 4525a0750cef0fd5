package vdb

import "github.com/solidvox/solidvox/vox"

// Internal nodes hold a fixed-size array of slots.  Each slot is in exactly
// one of three states, discriminated by the two masks:
//
//	childMask on             - an owned child subtree
//	childMask off, tileMask on  - a constant active tile covering the slot
//	both off                 - empty; the slot reads as the background value
//
// activeCount is the total number of active voxels below the node,
// counting full-region contributions for tiles.  It makes occupancy
// queries O(1) per level instead of requiring a descent.

type lowerNode[T comparable] struct {
	origin      vox.Coord
	childMask   bitmask
	tileMask    bitmask
	children    []*LeafNode[T]
	tiles       []T
	activeCount int
}

func newLower[T comparable](sh Shape, origin vox.Coord) *lowerNode[T] {
	size := sh.lowerSize()
	return &lowerNode[T]{
		origin:    origin,
		childMask: newBitmask(size),
		tileMask:  newBitmask(size),
		children:  make([]*LeafNode[T], size),
		tiles:     make([]T, size),
	}
}

// newLowerFromTile subdivides a constant region: every slot becomes an
// active tile holding v, so reads below keep their prior value.
func newLowerFromTile[T comparable](sh Shape, origin vox.Coord, v T) *lowerNode[T] {
	n := newLower[T](sh, origin)
	n.tileMask.fill(sh.lowerSize())
	for i := range n.tiles {
		n.tiles[i] = v
	}
	n.activeCount = sh.lowerRegionVoxels()
	return n
}

func (n *lowerNode[T]) isEmpty() bool {
	return n.childMask.isEmpty() && n.tileMask.isEmpty()
}

func (n *lowerNode[T]) get(sh Shape, c vox.Coord, background T) (T, bool) {
	slot := sh.lowerSlot(c)
	if n.childMask.isOn(slot) {
		return n.children[slot].ValueAt(c)
	}
	if n.tileMask.isOn(slot) {
		return n.tiles[slot], true
	}
	return background, false
}

// leafAt returns the dense leaf containing c, or nil if the slot is a tile
// or empty.
func (n *lowerNode[T]) leafAt(sh Shape, c vox.Coord) *LeafNode[T] {
	slot := sh.lowerSlot(c)
	if n.childMask.isOn(slot) {
		return n.children[slot]
	}
	return nil
}

func (n *lowerNode[T]) set(sh Shape, c vox.Coord, v T, background T) int {
	slot := sh.lowerSlot(c)
	switch {
	case n.childMask.isOn(slot):
		d := n.children[slot].set(c, v)
		n.activeCount += d
		return d
	case n.tileMask.isOn(slot):
		tv := n.tiles[slot]
		if tv == v {
			// Voxel already active with this value; no subdivision needed.
			return 0
		}
		leaf := newLeafFilled(sh, sh.LeafOrigin(c), tv)
		n.attachLeaf(slot, leaf)
		d := leaf.set(c, v)
		n.activeCount += d
		return d
	default:
		leaf := newLeaf(sh, sh.LeafOrigin(c), background)
		n.attachLeaf(slot, leaf)
		d := leaf.set(c, v)
		n.activeCount += d
		return d
	}
}

func (n *lowerNode[T]) erase(sh Shape, c vox.Coord, background T) int {
	slot := sh.lowerSlot(c)
	switch {
	case n.childMask.isOn(slot):
		d := n.children[slot].erase(c, background)
		n.activeCount += d
		return d
	case n.tileMask.isOn(slot):
		leaf := newLeafFilled(sh, sh.LeafOrigin(c), n.tiles[slot])
		n.attachLeaf(slot, leaf)
		d := leaf.erase(c, background)
		n.activeCount += d
		return d
	default:
		return 0
	}
}

// fillTile replaces the slot containing c with a constant active tile,
// discarding any child below it.  Returns the change in active count.
func (n *lowerNode[T]) fillTile(sh Shape, c vox.Coord, v T) int {
	slot := sh.lowerSlot(c)
	prior := 0
	if n.childMask.isOn(slot) {
		prior = n.children[slot].ActiveCount()
		n.children[slot] = nil
		n.childMask.off(slot)
	} else if n.tileMask.isOn(slot) {
		prior = sh.leafRegionVoxels()
	}
	n.tileMask.on(slot)
	n.tiles[slot] = v
	d := sh.leafRegionVoxels() - prior
	n.activeCount += d
	return d
}

func (n *lowerNode[T]) attachLeaf(slot int, leaf *LeafNode[T]) {
	n.childMask.on(slot)
	n.tileMask.off(slot)
	var zero T
	n.tiles[slot] = zero
	n.children[slot] = leaf
}

// constant reports whether the node is a single homogeneous region: no
// children, every slot an active tile, all tile values equal under approx.
func (n *lowerNode[T]) constant(approx func(a, b T) bool) (T, bool) {
	var zero T
	if !n.childMask.isEmpty() || !n.tileMask.isFull(len(n.tiles)) {
		return zero, false
	}
	rep := n.tiles[0]
	for _, v := range n.tiles[1:] {
		if !approx(rep, v) {
			return zero, false
		}
	}
	return rep, true
}

func (n *lowerNode[T]) clone() *lowerNode[T] {
	out := &lowerNode[T]{
		origin:      n.origin,
		childMask:   n.childMask.clone(),
		tileMask:    n.tileMask.clone(),
		children:    make([]*LeafNode[T], len(n.children)),
		tiles:       make([]T, len(n.tiles)),
		activeCount: n.activeCount,
	}
	copy(out.tiles, n.tiles)
	for i, child := range n.children {
		if child != nil {
			out.children[i] = child.clone()
		}
	}
	return out
}

type upperNode[T comparable] struct {
	origin      vox.Coord
	childMask   bitmask
	tileMask    bitmask
	children    []*lowerNode[T]
	tiles       []T
	activeCount int
}

func newUpper[T comparable](sh Shape, origin vox.Coord) *upperNode[T] {
	size := sh.upperSize()
	return &upperNode[T]{
		origin:    origin,
		childMask: newBitmask(size),
		tileMask:  newBitmask(size),
		children:  make([]*lowerNode[T], size),
		tiles:     make([]T, size),
	}
}

func (n *upperNode[T]) isEmpty() bool {
	return n.childMask.isEmpty() && n.tileMask.isEmpty()
}

func (n *upperNode[T]) get(sh Shape, c vox.Coord, background T) (T, bool) {
	slot := sh.upperSlot(c)
	if n.childMask.isOn(slot) {
		return n.children[slot].get(sh, c, background)
	}
	if n.tileMask.isOn(slot) {
		return n.tiles[slot], true
	}
	return background, false
}

func (n *upperNode[T]) set(sh Shape, c vox.Coord, v T, background T) int {
	slot := sh.upperSlot(c)
	switch {
	case n.childMask.isOn(slot):
		d := n.children[slot].set(sh, c, v, background)
		n.activeCount += d
		return d
	case n.tileMask.isOn(slot):
		tv := n.tiles[slot]
		if tv == v {
			return 0
		}
		lower := newLowerFromTile(sh, sh.LowerOrigin(c), tv)
		n.attachLower(slot, lower)
		d := lower.set(sh, c, v, background)
		n.activeCount += d
		return d
	default:
		lower := newLower[T](sh, sh.LowerOrigin(c))
		n.attachLower(slot, lower)
		d := lower.set(sh, c, v, background)
		n.activeCount += d
		return d
	}
}

func (n *upperNode[T]) erase(sh Shape, c vox.Coord, background T) int {
	slot := sh.upperSlot(c)
	switch {
	case n.childMask.isOn(slot):
		d := n.children[slot].erase(sh, c, background)
		n.activeCount += d
		return d
	case n.tileMask.isOn(slot):
		lower := newLowerFromTile(sh, sh.LowerOrigin(c), n.tiles[slot])
		n.attachLower(slot, lower)
		d := lower.erase(sh, c, background)
		n.activeCount += d
		return d
	default:
		return 0
	}
}

// fillLeafTile descends to the lower node containing c, creating or
// subdividing it as needed, and replaces the leaf-extent slot there with a
// constant active tile.
func (n *upperNode[T]) fillLeafTile(sh Shape, c vox.Coord, v T) int {
	slot := sh.upperSlot(c)
	var lower *lowerNode[T]
	switch {
	case n.childMask.isOn(slot):
		lower = n.children[slot]
	case n.tileMask.isOn(slot):
		if n.tiles[slot] == v {
			return 0
		}
		lower = newLowerFromTile(sh, sh.LowerOrigin(c), n.tiles[slot])
		n.attachLower(slot, lower)
	default:
		lower = newLower[T](sh, sh.LowerOrigin(c))
		n.attachLower(slot, lower)
	}
	d := lower.fillTile(sh, c, v)
	n.activeCount += d
	return d
}

// fillTile replaces the lower-extent slot containing c with a constant
// active tile, discarding any subtree below it.
func (n *upperNode[T]) fillTile(sh Shape, c vox.Coord, v T) int {
	slot := sh.upperSlot(c)
	prior := 0
	if n.childMask.isOn(slot) {
		prior = n.children[slot].activeCount
		n.children[slot] = nil
		n.childMask.off(slot)
	} else if n.tileMask.isOn(slot) {
		prior = sh.lowerRegionVoxels()
	}
	n.tileMask.on(slot)
	n.tiles[slot] = v
	d := sh.lowerRegionVoxels() - prior
	n.activeCount += d
	return d
}

func (n *upperNode[T]) attachLower(slot int, lower *lowerNode[T]) {
	n.childMask.on(slot)
	n.tileMask.off(slot)
	var zero T
	n.tiles[slot] = zero
	n.children[slot] = lower
}

func (n *upperNode[T]) clone() *upperNode[T] {
	out := &upperNode[T]{
		origin:      n.origin,
		childMask:   n.childMask.clone(),
		tileMask:    n.tileMask.clone(),
		children:    make([]*lowerNode[T], len(n.children)),
		tiles:       make([]T, len(n.tiles)),
		activeCount: n.activeCount,
	}
	copy(out.tiles, n.tiles)
	for i, child := range n.children {
		if child != nil {
			out.children[i] = child.clone()
		}
	}
	return out
}
