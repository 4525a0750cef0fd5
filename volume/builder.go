// Package volume converts signed-distance fields into sparse voxel trees.
// A Builder samples a distance source over a world-space region, stores
// exact distances inside the narrow band, fills fully interior regions
// with constant inside tiles, and leaves everything else as the outside
// background.
package volume

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/solidvox/solidvox/vdb"
	"github.com/solidvox/solidvox/vox"
)

// DistanceFunc reports the signed distance from p to the nearest surface
// point of a solid, negative inside.  This is the interface consumed from
// nearest-point query engines and analytic SDF sources.
type DistanceFunc func(p r3.Vector) float64

// Builder voxelizes distance fields into vdb trees.
type Builder struct {
	shape     vdb.Shape
	voxelSize float64
	halfWidth float64 // narrow band half width, in voxels
	origin    r3.Vector
}

// NewBuilder returns a builder for the given grid configuration.
func NewBuilder(cfg vox.GridConfig) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bad grid config: %w", err)
	}
	sh := vdb.Shape{LeafLog2: cfg.LeafLog2, LowerLog2: cfg.LowerLog2, UpperLog2: cfg.UpperLog2}
	if err := sh.Validate(); err != nil {
		return nil, fmt.Errorf("bad grid config: %w", err)
	}
	return &Builder{
		shape:     sh,
		voxelSize: cfg.VoxelSize,
		halfWidth: cfg.HalfWidth,
	}, nil
}

// SetOrigin places the world-space position of voxel (0,0,0)'s minimum
// corner.  Default is the world origin.
func (b *Builder) SetOrigin(origin r3.Vector) *Builder {
	b.origin = origin
	return b
}

// VoxelSize returns the world-space edge length of one voxel.
func (b *Builder) VoxelSize() float64 { return b.voxelSize }

// IndexToWorld returns the world-space center of voxel c.
func (b *Builder) IndexToWorld(c vox.Coord) r3.Vector {
	return r3.Vector{
		X: b.origin.X + (float64(c.X)+0.5)*b.voxelSize,
		Y: b.origin.Y + (float64(c.Y)+0.5)*b.voxelSize,
		Z: b.origin.Z + (float64(c.Z)+0.5)*b.voxelSize,
	}
}

// WorldToIndex returns the voxel containing the world-space point p.
func (b *Builder) WorldToIndex(p r3.Vector) vox.Coord {
	return vox.Coord{
		X: int32(math.Floor((p.X - b.origin.X) / b.voxelSize)),
		Y: int32(math.Floor((p.Y - b.origin.Y) / b.voxelSize)),
		Z: int32(math.Floor((p.Z - b.origin.Z) / b.voxelSize)),
	}
}

// Build samples dist over the world-space box [worldMin, worldMax],
// expanded by the narrow band, and returns a signed-distance tree.
// Values are stored in voxel units, clamped to ±background where
// background is the band half width; leaf regions that lie entirely
// inside the solid become constant inside tiles instead of dense leaves.
func (b *Builder) Build(dist DistanceFunc, worldMin, worldMax r3.Vector) (*vdb.Tree[float32], error) {
	background := float32(b.halfWidth)
	tree, err := vdb.NewWithShape(b.shape, background)
	if err != nil {
		return nil, err
	}

	tlog := vox.NewTimeLog()

	pad := int32(math.Ceil(b.halfWidth)) + 1
	imin := b.WorldToIndex(worldMin).Sub(vox.Coord{X: pad, Y: pad, Z: pad})
	imax := b.WorldToIndex(worldMax).Add(vox.Coord{X: pad, Y: pad, Z: pad})

	leafExt := int32(b.shape.LeafExtent())
	// Conservative classification radius for a whole leaf region: half its
	// world diagonal plus the band width.
	leafRadius := 0.5 * b.voxelSize * float64(leafExt) * math.Sqrt(3)
	band := b.halfWidth * b.voxelSize

	acc := tree.Accessor()
	first := b.shape.LeafOrigin(imin)
	for lz := first.Z; lz <= imax.Z; lz += leafExt {
		for ly := first.Y; ly <= imax.Y; ly += leafExt {
			for lx := first.X; lx <= imax.X; lx += leafExt {
				leafOrigin := vox.Coord{X: lx, Y: ly, Z: lz}
				center := b.leafCenter(leafOrigin, leafExt)
				d := dist(center)
				switch {
				case d > leafRadius+band:
					// Entirely outside the band: stays background.
				case d < -(leafRadius + band):
					tree.FillTile(leafOrigin, -background)
					acc.Invalidate()
				default:
					b.fillLeafRegion(acc, dist, leafOrigin, leafExt, background)
				}
			}
		}
	}

	tree.Prune(nil)
	tlog.Infof("built level set from distance field: %s", tree.Stats())
	return tree, nil
}

func (b *Builder) leafCenter(origin vox.Coord, leafExt int32) r3.Vector {
	half := 0.5 * b.voxelSize * float64(leafExt)
	return r3.Vector{
		X: b.origin.X + float64(origin.X)*b.voxelSize + half,
		Y: b.origin.Y + float64(origin.Y)*b.voxelSize + half,
		Z: b.origin.Z + float64(origin.Z)*b.voxelSize + half,
	}
}

func (b *Builder) fillLeafRegion(acc *vdb.Accessor[float32], dist DistanceFunc,
	origin vox.Coord, leafExt int32, background float32) {

	for z := origin.Z; z < origin.Z+leafExt; z++ {
		for y := origin.Y; y < origin.Y+leafExt; y++ {
			for x := origin.X; x < origin.X+leafExt; x++ {
				c := vox.Coord{X: x, Y: y, Z: z}
				dv := dist(b.IndexToWorld(c)) / b.voxelSize
				switch {
				case dv >= float64(background):
					// Outside the band: implicit background.
				case dv <= float64(-background):
					acc.Set(c, -background)
				default:
					acc.Set(c, float32(dv))
				}
			}
		}
	}
}
