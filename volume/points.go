package volume

import (
	"github.com/golang/geo/r3"

	"github.com/solidvox/solidvox/vdb"
	"github.com/solidvox/solidvox/vox"
)

// SurfacePoints returns the world-space centers of the narrow-band voxels
// of a signed-distance tree: active voxels whose stored distance is
// strictly inside the band.  Interior fill tiles are skipped.
func (b *Builder) SurfacePoints(t *vdb.Tree[float32]) []r3.Vector {
	band := t.Background()
	var pts []r3.Vector
	it := t.Leaves()
	for it.Next() {
		leaf := it.Leaf()
		if leaf.Tile {
			continue
		}
		leaf.Node.ForEachActive(func(c vox.Coord, v float32) bool {
			if v > -band && v < band {
				pts = append(pts, b.IndexToWorld(c))
			}
			return true
		})
	}
	return pts
}
