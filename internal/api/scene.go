package api

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-sitemap/internal/geo"
	"github.com/joeblew999/plat-sitemap/internal/scene"
)

type SceneInput struct {
	SessionInput
	Layer string `query:"layer" enum:"view,sketch" doc:"Only return graphics of this layer"`
}

// GetScene returns the session's graphics as a WGS84 FeatureCollection,
// view layer first.
func (h *APIHandler) GetScene(ctx context.Context, input *SceneInput) (*struct {
	Body *geojson.FeatureCollection
}, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct{ Body *geojson.FeatureCollection }{Body: featureCollection(s.Scene, input.Layer)}, nil
}

func featureCollection(sc *scene.Scene, layer string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range []scene.Layer{scene.LayerView, scene.LayerSketch} {
		if layer != "" && layer != l.String() {
			continue
		}
		for _, g := range sc.Graphics(l) {
			snap := sc.Snapshot(g)
			if snap.Geometry == nil {
				continue
			}
			f := geojson.NewFeature(geo.ToWGS84(snap.Geometry))
			f.ID = snap.UID
			f.Properties["layer"] = l.String()
			f.Properties["visible"] = snap.Visible
			f.Properties["symbol"] = snap.Symbol
			f.Properties["category"] = string(snap.Attributes.Category)
			f.Properties["itemId"] = snap.Attributes.ItemID
			if snap.Attributes.Title != "" {
				f.Properties["title"] = snap.Attributes.Title
			}
			if snap.Attributes.Index != nil {
				f.Properties["index"] = *snap.Attributes.Index
			}
			fc.Append(f)
		}
	}
	return fc
}
