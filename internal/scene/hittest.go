package scene

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-sitemap/internal/geo"
)

// HitKind is the kind of entity a hit test matched.
type HitKind string

const (
	HitGraphic HitKind = "graphic"
	HitMedia   HitKind = "media"
)

// HitTolerance is the pick radius in screen pixels.
const HitTolerance = 6

// Hit is one entry of a hit test result. Attributes and GeometryType are
// copied when the hit test runs.
type Hit struct {
	Kind         HitKind
	Layer        Layer
	Graphic      *Graphic
	Attributes   Attributes
	GeometryType string
	Location     orb.Point // Web Mercator, only set for point graphics
}

// IsGraphic reports whether the hit matched a graphic.
func (h Hit) IsGraphic() bool {
	return h.Kind == HitGraphic && h.Graphic != nil
}

// IsPoint reports whether the hit graphic is point shaped.
func (h Hit) IsPoint() bool {
	return h.IsGraphic() && h.GeometryType == "Point"
}

// HitTest returns the visible graphics under a longitude/latitude position,
// front to back: view graphics first (most recently added on top), then the
// sketch layer.
func (s *Scene) HitTest(ctx context.Context, lonLat orb.Point) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pt := geo.PointToMercator(lonLat)

	s.mu.RLock()
	defer s.mu.RUnlock()

	tol := HitTolerance * geo.Resolution(s.camera.zoom)
	var hits []Hit
	for _, l := range []Layer{LayerView, LayerSketch} {
		coll := *s.collection(l)
		for i := len(coll) - 1; i >= 0; i-- {
			g := coll[i]
			if !g.Visible || g.Geometry == nil {
				continue
			}
			if !intersects(g.Geometry, pt, tol) {
				continue
			}
			h := Hit{
				Kind:         HitGraphic,
				Layer:        l,
				Graphic:      g,
				Attributes:   g.Attributes,
				GeometryType: g.GeometryType(),
			}
			if p, ok := g.Geometry.(orb.Point); ok {
				h.Location = p
			}
			hits = append(hits, h)
		}
	}
	return hits, nil
}

func intersects(g orb.Geometry, pt orb.Point, tol float64) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		if planar.PolygonContains(geom, pt) {
			return true
		}
	case orb.MultiPolygon:
		if planar.MultiPolygonContains(geom, pt) {
			return true
		}
	case orb.Bound:
		return geom.Pad(tol).Contains(pt)
	}
	return planar.DistanceFrom(g, pt) <= tol
}
