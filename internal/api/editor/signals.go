// Package editor contains Datastar SSE handlers for the map UI.
package editor

import (
	"github.com/joeblew999/plat-sitemap/internal/geo"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/service"
)

// Signal names patched into the page. Signals are lowercase due to
// data-bind behavior.
const (
	sigSelected     = "selected"
	sigHovered      = "hovered"
	sigRightClicked = "rightclicked"
	sigSliderIndex  = "sliderindex"
	sigRoute        = "route"
	sigPopup        = "popup"
	sigCenter       = "center"
	sigZoom         = "zoom"
	sigReady        = "ready"
)

// stateSignals returns the interaction state of s as page signals. Empty
// slots are sent as empty strings so the client clears them.
func stateSignals(s *service.Session) map[string]any {
	state := s.Controller.Snapshot()
	signals := map[string]any{
		sigSelected:     itemID(s.Scene, state.Selected),
		sigHovered:      itemID(s.Scene, state.Hovered),
		sigRightClicked: itemID(s.Scene, state.RightClicked),
		sigSliderIndex:  nil,
		sigRoute:        s.Router.Params().Path,
		sigPopup:        s.Scene.Popup().Visible(),
	}
	if state.SliderIndex != nil {
		signals[sigSliderIndex] = *state.SliderIndex
	}
	return signals
}

func itemID(sc *scene.Scene, g *scene.Graphic) string {
	if g == nil {
		return ""
	}
	return sc.Snapshot(g).Attributes.ItemID
}

// cameraSignals returns the camera position carried by a camera event.
func cameraSignals(e *scene.Event) map[string]any {
	return map[string]any{
		sigCenter: []float64{e.Location[0], e.Location[1]},
		sigZoom:   e.Zoom,
	}
}

// popupAnchor returns the popup position as longitude/latitude.
func popupAnchor(s *service.Session) []float64 {
	at := geo.PointToWGS84(s.Scene.Popup().Location())
	return []float64{at[0], at[1]}
}
