package volume

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r3"

	"github.com/solidvox/solidvox/vdb"
)

// SDF3Field adapts an analytic sdf.SDF3 solid into a DistanceFunc.
func SDF3Field(s sdf.SDF3) DistanceFunc {
	return func(p r3.Vector) float64 {
		return s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	}
}

// FromSDF3 voxelizes an analytic solid over its own bounding box.
func (b *Builder) FromSDF3(s sdf.SDF3) (*vdb.Tree[float32], error) {
	bb := s.BoundingBox()
	return b.Build(SDF3Field(s),
		r3.Vector{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		r3.Vector{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z})
}
