package vdb

import (
	"sort"

	"github.com/solidvox/solidvox/vox"
)

// Tree is a sparse voxel grid over the infinite int32 lattice.  Every
// coordinate never explicitly written reads as the tree's background
// value.  The root is the only dynamically growing level: it maps
// upper-node origins to exclusively owned subtrees.
//
// Tree methods perform a fresh root-to-leaf descent on every call; use an
// Accessor for spatially coherent access sequences.
type Tree[T comparable] struct {
	shape      Shape
	background T
	root       map[vox.Coord]*upperNode[T]
}

// New returns an empty tree with the default shape.
func New[T comparable](background T) *Tree[T] {
	t, _ := NewWithShape(DefaultShape(), background)
	return t
}

// NewWithShape returns an empty tree with the given shape, rejecting an
// invalid configuration before any node is allocated.
func NewWithShape[T comparable](sh Shape, background T) (*Tree[T], error) {
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	return &Tree[T]{
		shape:      sh,
		background: background,
		root:       make(map[vox.Coord]*upperNode[T]),
	}, nil
}

// Shape returns the tree's branching configuration.
func (t *Tree[T]) Shape() Shape { return t.shape }

// Background returns the implicit value of unwritten coordinates.
func (t *Tree[T]) Background() T { return t.background }

// Sample returns the value at c, which is the background value for any
// coordinate not explicitly stored.
func (t *Tree[T]) Sample(c vox.Coord) T {
	v, _ := t.probe(c)
	return v
}

// IsActive reports whether the voxel at c is active.
func (t *Tree[T]) IsActive(c vox.Coord) bool {
	_, active := t.probe(c)
	return active
}

func (t *Tree[T]) probe(c vox.Coord) (T, bool) {
	if upper, found := t.root[t.shape.UpperOrigin(c)]; found {
		return upper.get(t.shape, c, t.background)
	}
	return t.background, false
}

// Set writes v at c and marks the voxel active, allocating nodes along the
// path as needed.  Setting a voxel to the background value stores it like
// any other value; collapsing homogeneous regions is Prune's job.
func (t *Tree[T]) Set(c vox.Coord, v T) {
	t.ensureUpper(c).set(t.shape, c, v, t.background)
}

// Erase deactivates the voxel at c and resets it to the background value.
func (t *Tree[T]) Erase(c vox.Coord) {
	if upper, found := t.root[t.shape.UpperOrigin(c)]; found {
		upper.erase(t.shape, c, t.background)
	}
}

// FillTile replaces the leaf-extent region containing c with a constant
// active tile, without allocating a dense leaf.  Any previous contents of
// the region are discarded.
func (t *Tree[T]) FillTile(c vox.Coord, v T) {
	t.ensureUpper(c).fillLeafTile(t.shape, c, v)
}

// FillUpperTile replaces the lower-extent region containing c (128³ voxels
// with the default shape) with a constant active tile.  Intended for bulk
// initialization of large homogeneous regions.
func (t *Tree[T]) FillUpperTile(c vox.Coord, v T) {
	t.ensureUpper(c).fillTile(t.shape, c, v)
}

func (t *Tree[T]) ensureUpper(c vox.Coord) *upperNode[T] {
	key := t.shape.UpperOrigin(c)
	upper, found := t.root[key]
	if !found {
		upper = newUpper[T](t.shape, key)
		t.root[key] = upper
	}
	return upper
}

// ActiveVoxelCount returns the total number of active voxels.  It sums the
// per-subtree active counts, so cost is proportional to the number of root
// entries, not to the voxel count.
func (t *Tree[T]) ActiveVoxelCount() uint64 {
	var total uint64
	for _, upper := range t.root {
		total += uint64(upper.activeCount)
	}
	return total
}

// IsEmpty reports whether the tree has no active voxels.
func (t *Tree[T]) IsEmpty() bool {
	for _, upper := range t.root {
		if upper.activeCount > 0 {
			return false
		}
	}
	return true
}

// Clear removes all stored nodes, leaving an empty tree with the same
// shape and background.
func (t *Tree[T]) Clear() {
	t.root = make(map[vox.Coord]*upperNode[T])
}

// Clone returns a deep copy sharing no nodes with the original.
func (t *Tree[T]) Clone() *Tree[T] {
	out := &Tree[T]{
		shape:      t.shape,
		background: t.background,
		root:       make(map[vox.Coord]*upperNode[T], len(t.root)),
	}
	for key, upper := range t.root {
		out.root[key] = upper.clone()
	}
	return out
}

// MapValues applies f in place to every stored value: tile values, leaf
// voxel values, and the background.  Activity is unchanged.
func (t *Tree[T]) MapValues(f func(T) T) {
	t.background = f(t.background)
	for _, upper := range t.root {
		for slot := range upper.children {
			switch {
			case upper.childMask.isOn(slot):
				lower := upper.children[slot]
				for ls := range lower.children {
					switch {
					case lower.childMask.isOn(ls):
						leaf := lower.children[ls]
						for i := range leaf.values {
							leaf.values[i] = f(leaf.values[i])
						}
					case lower.tileMask.isOn(ls):
						lower.tiles[ls] = f(lower.tiles[ls])
					}
				}
			case upper.tileMask.isOn(slot):
				upper.tiles[slot] = f(upper.tiles[slot])
			}
		}
	}
}

// ActiveBBox returns the inclusive bounding box of all active voxels,
// conservative to tile granularity for tiles.
func (t *Tree[T]) ActiveBBox() vox.BBox {
	bbox := vox.EmptyBBox()
	it := t.Leaves()
	for it.Next() {
		leaf := it.Leaf()
		if leaf.Tile {
			bbox.Expand(leaf.Origin)
			n := int32(leaf.Extent - 1)
			bbox.Expand(leaf.Origin.Add(vox.Coord{X: n, Y: n, Z: n}))
			continue
		}
		leaf.Node.ForEachActive(func(c vox.Coord, _ T) bool {
			bbox.Expand(c)
			return true
		})
	}
	return bbox
}

// sortedRootKeys returns the root origins in Z, Y, X order for
// deterministic traversal.
func (t *Tree[T]) sortedRootKeys() []vox.Coord {
	keys := make([]vox.Coord, 0, len(t.root))
	for key := range t.root {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}
