// Package geo holds the projection and coordinate helpers shared by the
// scene and the map document codec.
//
// Graphics live in Web Mercator (EPSG:3857) while persisted documents and
// browser pointer positions use WGS84 longitude/latitude.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Position is a raw coordinate pair as found in stored documents. It may be
// malformed; use ValidPosition before trusting it.
type Position []float64

// IsWGS84 reports whether x,y lie inside the longitude/latitude range.
// Anything outside is treated as already projected.
func IsWGS84(x, y float64) bool {
	return x >= -180 && x <= 180 && y >= -90 && y <= 90
}

// BoundIsWGS84 reports whether the whole bound lies in longitude/latitude range.
func BoundIsWGS84(b orb.Bound) bool {
	return IsWGS84(b.Min[0], b.Min[1]) && IsWGS84(b.Max[0], b.Max[1])
}

// ValidPosition reports whether p is a finite longitude/latitude pair.
func ValidPosition(p Position) bool {
	if len(p) != 2 {
		return false
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return IsWGS84(p[0], p[1])
}

// ToMercator returns a Web Mercator copy of a WGS84 geometry.
func ToMercator(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	return project.Geometry(orb.Clone(g), project.WGS84.ToMercator)
}

// ToWGS84 returns a WGS84 copy of a Web Mercator geometry.
func ToWGS84(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84)
}

// PointToMercator projects a longitude/latitude point.
func PointToMercator(p orb.Point) orb.Point {
	return project.Point(p, project.WGS84.ToMercator)
}

// PointToWGS84 unprojects a Web Mercator point.
func PointToWGS84(p orb.Point) orb.Point {
	return project.Point(p, project.Mercator.ToWGS84)
}

// EnsureMercator projects g when its coordinates look like WGS84 and returns
// it unchanged (as a copy) otherwise.
func EnsureMercator(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	if BoundIsWGS84(g.Bound()) {
		return ToMercator(g)
	}
	return orb.Clone(g)
}

// Center returns the point itself for point geometries and the centre of the
// bounding box for everything else.
func Center(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}
	return g.Bound().Center()
}

// Resolution returns the Web Mercator ground resolution in meters per pixel
// at the given zoom level for 256px tiles.
func Resolution(zoom float64) float64 {
	return 156543.03392804097 / math.Pow(2, zoom)
}
