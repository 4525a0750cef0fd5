package vdb

import "github.com/solidvox/solidvox/vox"

// Accessor is a cached traversal cursor over a tree.  It remembers the
// node visited at each level together with the coordinate range it covers,
// so spatially coherent access sequences skip most of the root-to-leaf
// descent.  An accessor owns no tree data, must not outlive its tree, and
// follows the tree's single-writer discipline: any number of accessors may
// read an immutable tree concurrently, but only one may write.
//
// Structural mutations made outside the accessor (Prune, Clear, fills)
// invalidate its cache; call Invalidate or create a fresh accessor after
// such operations.
type Accessor[T comparable] struct {
	tree *Tree[T]

	upperKey vox.Coord
	upper    *upperNode[T]
	lowerKey vox.Coord
	lower    *lowerNode[T]
	leafKey  vox.Coord
	leaf     *LeafNode[T]
}

// Accessor returns a new cursor positioned nowhere.
func (t *Tree[T]) Accessor() *Accessor[T] {
	return &Accessor[T]{tree: t}
}

// Invalidate discards all cached path segments.
func (a *Accessor[T]) Invalidate() {
	a.upper = nil
	a.lower = nil
	a.leaf = nil
}

// Get returns the value at c.  Reads never allocate.
func (a *Accessor[T]) Get(c vox.Coord) T {
	v, _ := a.probe(c)
	return v
}

// IsActive reports whether the voxel at c is active.
func (a *Accessor[T]) IsActive(c vox.Coord) bool {
	_, active := a.probe(c)
	return active
}

func (a *Accessor[T]) probe(c vox.Coord) (T, bool) {
	sh := a.tree.shape
	if a.leaf != nil && a.leafKey == sh.LeafOrigin(c) {
		return a.leaf.ValueAt(c)
	}
	if a.lower != nil && a.lowerKey == sh.LowerOrigin(c) {
		return a.probeLower(sh, c)
	}
	if a.upper == nil || a.upperKey != sh.UpperOrigin(c) {
		key := sh.UpperOrigin(c)
		upper, found := a.tree.root[key]
		if !found {
			return a.tree.background, false
		}
		a.upper, a.upperKey = upper, key
		a.lower, a.leaf = nil, nil
	}
	return a.probeUpper(sh, c)
}

func (a *Accessor[T]) probeUpper(sh Shape, c vox.Coord) (T, bool) {
	slot := sh.upperSlot(c)
	if a.upper.childMask.isOn(slot) {
		a.lower, a.lowerKey = a.upper.children[slot], sh.LowerOrigin(c)
		a.leaf = nil
		return a.probeLower(sh, c)
	}
	a.lower, a.leaf = nil, nil
	if a.upper.tileMask.isOn(slot) {
		return a.upper.tiles[slot], true
	}
	return a.tree.background, false
}

func (a *Accessor[T]) probeLower(sh Shape, c vox.Coord) (T, bool) {
	slot := sh.lowerSlot(c)
	if a.lower.childMask.isOn(slot) {
		a.leaf, a.leafKey = a.lower.children[slot], sh.LeafOrigin(c)
		return a.leaf.ValueAt(c)
	}
	a.leaf = nil
	if a.lower.tileMask.isOn(slot) {
		return a.lower.tiles[slot], true
	}
	return a.tree.background, false
}

// Set writes v at c and marks the voxel active, allocating nodes lazily
// and pushing tile values down on subdivision.  The cache is updated to
// the new path.
func (a *Accessor[T]) Set(c vox.Coord, v T) {
	sh := a.tree.shape
	if a.leaf != nil && a.leafKey == sh.LeafOrigin(c) {
		// Cached leaf hit: write directly and propagate the active-count
		// delta to the cached ancestors, which cover c by construction.
		if d := a.leaf.set(c, v); d != 0 {
			a.lower.activeCount += d
			a.upper.activeCount += d
		}
		return
	}
	if a.lower != nil && a.lowerKey == sh.LowerOrigin(c) {
		d := a.lower.set(sh, c, v, a.tree.background)
		a.upper.activeCount += d
		a.cacheLeaf(sh, c)
		return
	}
	if a.upper == nil || a.upperKey != sh.UpperOrigin(c) {
		a.upper, a.upperKey = a.tree.ensureUpper(c), sh.UpperOrigin(c)
	}
	a.upper.set(sh, c, v, a.tree.background)
	a.cacheLower(sh, c)
	a.cacheLeaf(sh, c)
}

// Erase deactivates the voxel at c, subdividing a covering tile so the
// remainder of its region keeps reading the tile value.
func (a *Accessor[T]) Erase(c vox.Coord) {
	sh := a.tree.shape
	if a.leaf != nil && a.leafKey == sh.LeafOrigin(c) {
		if d := a.leaf.erase(c, a.tree.background); d != 0 {
			a.lower.activeCount += d
			a.upper.activeCount += d
		}
		return
	}
	if a.lower != nil && a.lowerKey == sh.LowerOrigin(c) {
		d := a.lower.erase(sh, c, a.tree.background)
		a.upper.activeCount += d
		a.cacheLeaf(sh, c)
		return
	}
	if a.upper == nil || a.upperKey != sh.UpperOrigin(c) {
		key := sh.UpperOrigin(c)
		upper, found := a.tree.root[key]
		if !found {
			return
		}
		a.upper, a.upperKey = upper, key
	}
	a.upper.erase(sh, c, a.tree.background)
	a.cacheLower(sh, c)
	a.cacheLeaf(sh, c)
}

func (a *Accessor[T]) cacheLower(sh Shape, c vox.Coord) {
	slot := sh.upperSlot(c)
	if a.upper.childMask.isOn(slot) {
		a.lower, a.lowerKey = a.upper.children[slot], sh.LowerOrigin(c)
	} else {
		a.lower = nil
	}
}

func (a *Accessor[T]) cacheLeaf(sh Shape, c vox.Coord) {
	if a.lower == nil {
		a.leaf = nil
		return
	}
	if leaf := a.lower.leafAt(sh, c); leaf != nil {
		a.leaf, a.leafKey = leaf, sh.LeafOrigin(c)
	} else {
		a.leaf = nil
	}
}
