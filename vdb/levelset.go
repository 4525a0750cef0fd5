package vdb

// Combine rules for signed-distance (level set) grids.  Convention:
// negative values are inside the solid, the background is the positive
// "outside" far value, and flood-filled interior tiles hold the negated
// background.  Absorb short-circuits assume operands follow that
// convention, i.e. constant tiles away from the narrow band are ±background.

// UnionRule merges level sets by per-voxel minimum.  A full "inside" tile
// absorbs: min(-far, x) is -far for any x in range.
func UnionRule(background float32) CombineRule[float32] {
	inside := -background
	return CombineRule[float32]{
		Combine: func(a, b float32) float32 { return min(a, b) },
		AbsorbLeft: func(a float32) (float32, bool) {
			return a, a <= inside
		},
		AbsorbRight: func(b float32) (float32, bool) {
			return b, b <= inside
		},
	}
}

// IntersectRule merges level sets by per-voxel maximum.  A full "outside"
// tile absorbs to outside.
func IntersectRule(background float32) CombineRule[float32] {
	return CombineRule[float32]{
		Combine: func(a, b float32) float32 { return max(a, b) },
		AbsorbLeft: func(a float32) (float32, bool) {
			return a, a >= background
		},
		AbsorbRight: func(b float32) (float32, bool) {
			return b, b >= background
		},
	}
}

// SubtractRule computes a minus b as max(a, -b): the intersection of a
// with b's complement.  An outside tile in a stays outside regardless of
// b; an inside tile in b erases a to outside.
func SubtractRule(background float32) CombineRule[float32] {
	inside := -background
	return CombineRule[float32]{
		Combine: func(a, b float32) float32 { return max(a, -b) },
		AbsorbLeft: func(a float32) (float32, bool) {
			return a, a >= background
		},
		AbsorbRight: func(b float32) (float32, bool) {
			return -b, b <= inside
		},
	}
}

// Union returns the boolean union of two signed-distance trees as a new
// tree, leaving the operands unmodified.
func Union(a, b *Tree[float32]) (*Tree[float32], error) {
	return Combine(a, b, UnionRule(a.background))
}

// Intersect returns the boolean intersection of two signed-distance trees.
func Intersect(a, b *Tree[float32]) (*Tree[float32], error) {
	return Combine(a, b, IntersectRule(a.background))
}

// Subtract returns a minus b for two signed-distance trees.
func Subtract(a, b *Tree[float32]) (*Tree[float32], error) {
	return Combine(a, b, SubtractRule(a.background))
}

// Negate flips a level set inside out in place.
func Negate(t *Tree[float32]) {
	t.MapValues(func(v float32) float32 { return -v })
}

// AbsTolerance returns an approximate-equality predicate for Prune that
// coalesces values within tol of each other.
func AbsTolerance(tol float32) func(a, b float32) bool {
	return func(a, b float32) bool {
		d := a - b
		if d < 0 {
			d = -d
		}
		return d <= tol
	}
}
