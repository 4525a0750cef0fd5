package vdb

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/solidvox/solidvox/vox"
)

// CombineRule defines how two trees merge into one.  Combine is applied
// per value pair; the absorb predicates let the engine short-circuit: when
// a constant on one side fixes the result of the whole region regardless
// of the other operand, the engine emits a tile instead of descending into
// the other side's subtree.  This keeps combination proportional to the
// operands' combined sparsity rather than to a dense bounding box.
type CombineRule[T comparable] struct {
	// Combine merges a value from the left tree with one from the right.
	Combine func(a, b T) T

	// AbsorbLeft reports whether a constant a on the left side fixes the
	// combined region to the returned tile value for any right operand.
	AbsorbLeft func(a T) (T, bool)

	// AbsorbRight is the right-side analogue of AbsorbLeft.
	AbsorbRight func(b T) (T, bool)
}

// Combine merges trees a and b into a new tree under rule, leaving both
// operands unmodified.  The result background is Combine(a.bg, b.bg).
// Trees with different shapes cannot be combined; the mismatch is reported
// before any work is done so callers never observe a partial result.
//
// Top-level subtrees never share nodes, so root regions combine in
// parallel.
func Combine[T comparable](a, b *Tree[T], rule CombineRule[T]) (*Tree[T], error) {
	if a.shape != b.shape {
		return nil, fmt.Errorf("%w: %+v vs %+v", ErrShapeMismatch, a.shape, b.shape)
	}
	sh := a.shape
	out := &Tree[T]{
		shape:      sh,
		background: rule.Combine(a.background, b.background),
		root:       make(map[vox.Coord]*upperNode[T]),
	}

	keys := unionRootKeys(a, b)
	results := make([]*upperNode[T], len(keys))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			results[i] = combineUpper(sh, key, a.root[key], b.root[key],
				a.background, b.background, out.background, rule)
			return nil
		})
	}
	g.Wait() // no goroutine returns an error; the group only bounds parallelism

	for i, key := range keys {
		if results[i] != nil {
			out.root[key] = results[i]
		}
	}
	out.Prune(nil)
	return out, nil
}

func unionRootKeys[T comparable](a, b *Tree[T]) []vox.Coord {
	seen := make(map[vox.Coord]struct{}, len(a.root)+len(b.root))
	keys := make([]vox.Coord, 0, len(a.root)+len(b.root))
	for key := range a.root {
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for key := range b.root {
		if _, dup := seen[key]; !dup {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}

// slotConst is the constant view of a non-child slot: its value and
// whether it is an active tile.  An empty slot reads as the side's
// background, inactive.
func slotConstLower[T comparable](n *lowerNode[T], slot int, background T) (T, bool) {
	if n != nil && n.tileMask.isOn(slot) {
		return n.tiles[slot], true
	}
	return background, false
}

func slotConstUpper[T comparable](n *upperNode[T], slot int, background T) (T, bool) {
	if n != nil && n.tileMask.isOn(slot) {
		return n.tiles[slot], true
	}
	return background, false
}

func combineUpper[T comparable](sh Shape, origin vox.Coord, ua, ub *upperNode[T],
	bgA, bgB, bgOut T, rule CombineRule[T]) *upperNode[T] {

	out := newUpper[T](sh, origin)
	for slot := 0; slot < sh.upperSize(); slot++ {
		aChild := ua != nil && ua.childMask.isOn(slot)
		bChild := ub != nil && ub.childMask.isOn(slot)

		switch {
		case aChild && bChild:
			child := combineLower(sh, sh.upperSlotOrigin(origin, slot),
				ua.children[slot], ub.children[slot], bgA, bgB, bgOut, rule)
			attachCombinedLower(sh, out, slot, child)

		case aChild:
			vb, bActive := slotConstUpper(ub, slot, bgB)
			if tile, ok := rule.AbsorbRight(vb); ok {
				emitUpperTile(sh, out, slot, tile, bgOut)
				continue
			}
			child := mapLower(sh, ua.children[slot],
				func(x T) T { return rule.Combine(x, vb) }, bActive, bgA, bgOut)
			attachCombinedLower(sh, out, slot, child)

		case bChild:
			va, aActive := slotConstUpper(ua, slot, bgA)
			if tile, ok := rule.AbsorbLeft(va); ok {
				emitUpperTile(sh, out, slot, tile, bgOut)
				continue
			}
			child := mapLower(sh, ub.children[slot],
				func(x T) T { return rule.Combine(va, x) }, aActive, bgB, bgOut)
			attachCombinedLower(sh, out, slot, child)

		default:
			va, aActive := slotConstUpper(ua, slot, bgA)
			vb, bActive := slotConstUpper(ub, slot, bgB)
			if !aActive && !bActive {
				continue
			}
			emitUpperTile(sh, out, slot, rule.Combine(va, vb), bgOut)
		}
	}
	if out.isEmpty() {
		return nil
	}
	return out
}

func attachCombinedLower[T comparable](sh Shape, out *upperNode[T], slot int, child *lowerNode[T]) {
	if child == nil {
		return
	}
	out.attachLower(slot, child)
	out.activeCount += child.activeCount
}

// emitUpperTile places a constant tile result in an upper-node slot.  A
// tile equal to the result background carries no information and stays an
// empty slot.
func emitUpperTile[T comparable](sh Shape, out *upperNode[T], slot int, v, bgOut T) {
	if v == bgOut {
		return
	}
	out.tileMask.on(slot)
	out.tiles[slot] = v
	out.activeCount += sh.lowerRegionVoxels()
}

func emitLowerTile[T comparable](sh Shape, out *lowerNode[T], slot int, v, bgOut T) {
	if v == bgOut {
		return
	}
	out.tileMask.on(slot)
	out.tiles[slot] = v
	out.activeCount += sh.leafRegionVoxels()
}

func combineLower[T comparable](sh Shape, origin vox.Coord, la, lb *lowerNode[T],
	bgA, bgB, bgOut T, rule CombineRule[T]) *lowerNode[T] {

	out := newLower[T](sh, origin)
	for slot := 0; slot < sh.lowerSize(); slot++ {
		aChild := la != nil && la.childMask.isOn(slot)
		bChild := lb != nil && lb.childMask.isOn(slot)

		switch {
		case aChild && bChild:
			leaf := combineLeaf(sh, sh.lowerSlotOrigin(origin, slot),
				la.children[slot], lb.children[slot], bgOut, rule)
			attachCombinedLeaf(out, slot, leaf)

		case aChild:
			vb, bActive := slotConstLower(lb, slot, bgB)
			if tile, ok := rule.AbsorbRight(vb); ok {
				emitLowerTile(sh, out, slot, tile, bgOut)
				continue
			}
			leaf := mapLeaf(sh, la.children[slot],
				func(x T) T { return rule.Combine(x, vb) }, bActive, bgOut)
			attachCombinedLeaf(out, slot, leaf)

		case bChild:
			va, aActive := slotConstLower(la, slot, bgA)
			if tile, ok := rule.AbsorbLeft(va); ok {
				emitLowerTile(sh, out, slot, tile, bgOut)
				continue
			}
			leaf := mapLeaf(sh, lb.children[slot],
				func(x T) T { return rule.Combine(va, x) }, aActive, bgOut)
			attachCombinedLeaf(out, slot, leaf)

		default:
			va, aActive := slotConstLower(la, slot, bgA)
			vb, bActive := slotConstLower(lb, slot, bgB)
			if !aActive && !bActive {
				continue
			}
			emitLowerTile(sh, out, slot, rule.Combine(va, vb), bgOut)
		}
	}
	if out.isEmpty() {
		return nil
	}
	return out
}

func attachCombinedLeaf[T comparable](out *lowerNode[T], slot int, leaf *LeafNode[T]) {
	if leaf == nil {
		return
	}
	out.attachLeaf(slot, leaf)
	out.activeCount += leaf.ActiveCount()
}

// combineLeaf merges two co-located dense leaves per voxel.  A voxel is
// active in the result when it was active on either side.
func combineLeaf[T comparable](sh Shape, origin vox.Coord, la, lb *LeafNode[T],
	bgOut T, rule CombineRule[T]) *LeafNode[T] {

	out := newLeaf(sh, origin, bgOut)
	for i := range out.values {
		if la.active.isOn(i) || lb.active.isOn(i) {
			out.values[i] = rule.Combine(la.values[i], lb.values[i])
			out.active.on(i)
		}
	}
	if out.isEmpty() {
		return nil
	}
	return out
}

// mapLeaf combines a dense leaf with a constant from the other side.
// constActive forces every result voxel active, used when the constant is
// an active tile.
func mapLeaf[T comparable](sh Shape, leaf *LeafNode[T], f func(T) T,
	constActive bool, bgOut T) *LeafNode[T] {

	out := newLeaf(sh, leaf.origin, bgOut)
	for i := range out.values {
		if constActive || leaf.active.isOn(i) {
			out.values[i] = f(leaf.values[i])
			out.active.on(i)
		}
	}
	if out.isEmpty() {
		return nil
	}
	return out
}

// mapLower combines a lower subtree with a constant from the other side,
// descending into its leaves and mapping its tiles.  bgSide is the
// subtree's own background, read at its empty slots.
func mapLower[T comparable](sh Shape, lower *lowerNode[T], f func(T) T,
	constActive bool, bgSide, bgOut T) *lowerNode[T] {

	out := newLower[T](sh, lower.origin)
	for slot := 0; slot < sh.lowerSize(); slot++ {
		switch {
		case lower.childMask.isOn(slot):
			leaf := mapLeaf(sh, lower.children[slot], f, constActive, bgOut)
			attachCombinedLeaf(out, slot, leaf)
		case lower.tileMask.isOn(slot):
			emitLowerTile(sh, out, slot, f(lower.tiles[slot]), bgOut)
		case constActive:
			// Empty on the subtree side, active constant on the other:
			// the whole slot region combines with the subtree background.
			emitLowerTile(sh, out, slot, f(bgSide), bgOut)
		}
	}
	if out.isEmpty() {
		return nil
	}
	return out
}
