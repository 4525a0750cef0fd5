package vdb

// Prune collapses homogeneous subtrees back into tiles and removes empty
// nodes, bottom-up.  A fully active leaf whose values all match under
// approx becomes a tile in its lower parent; a lower node made entirely of
// equal tiles becomes a tile in its upper parent; empty nodes are removed.
// Passing a nil approx prunes under exact equality.
//
// Insertion never prunes implicitly: coalescing eagerly during a write
// sequence is wasted work when adjacent writes immediately re-diverge the
// region.  Prune is idempotent, and only removes structure proven
// homogeneous within the tolerance, so no data is lost.
func (t *Tree[T]) Prune(approx func(a, b T) bool) {
	if approx == nil {
		approx = func(a, b T) bool { return a == b }
	}
	for key, upper := range t.root {
		pruneUpper(t.shape, upper, approx)
		if upper.isEmpty() {
			delete(t.root, key)
		}
	}
}

func pruneUpper[T comparable](sh Shape, n *upperNode[T], approx func(a, b T) bool) {
	for slot := 0; slot < sh.upperSize(); slot++ {
		if !n.childMask.isOn(slot) {
			continue
		}
		lower := n.children[slot]
		pruneLower(sh, lower, approx)
		if lower.isEmpty() {
			n.childMask.off(slot)
			n.children[slot] = nil
			continue
		}
		if v, ok := lower.constant(approx); ok {
			// The subtree contributes a full region either way, so the
			// active count is unchanged by the collapse.
			n.childMask.off(slot)
			n.children[slot] = nil
			n.tileMask.on(slot)
			n.tiles[slot] = v
		}
	}
}

func pruneLower[T comparable](sh Shape, n *lowerNode[T], approx func(a, b T) bool) {
	for slot := 0; slot < sh.lowerSize(); slot++ {
		if !n.childMask.isOn(slot) {
			continue
		}
		leaf := n.children[slot]
		if leaf.isEmpty() {
			n.childMask.off(slot)
			n.children[slot] = nil
			continue
		}
		if v, ok := leaf.constant(approx); ok {
			n.childMask.off(slot)
			n.children[slot] = nil
			n.tileMask.on(slot)
			n.tiles[slot] = v
		}
	}
}
