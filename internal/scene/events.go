package scene

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/symbol"
)

// EventType names a visible change in the scene.
type EventType string

const (
	EventGraphicAdded      EventType = "graphic-added"
	EventGraphicRemoved    EventType = "graphic-removed"
	EventGraphicStyled     EventType = "graphic-styled"
	EventGraphicUpdated    EventType = "graphic-updated"
	EventGraphicVisibility EventType = "graphic-visibility"
	EventCamera            EventType = "camera"
	EventPopupOpened       EventType = "popup-opened"
	EventPopupMoved        EventType = "popup-moved"
	EventPopupClosed       EventType = "popup-closed"
	EventInit              EventType = "init"
)

// Event describes a scene change for clients that mirror the scene.
// Points are WGS84 longitude/latitude.
type Event struct {
	Type       EventType
	Layer      Layer
	UID        string
	Symbol     *symbol.Symbol
	State      symbol.State
	Attributes Attributes
	Visible    bool
	Location   orb.Point
	Zoom       float64
	Ready      bool
}

func graphicEvent(t EventType, l Layer, g *Graphic) Event {
	sym := g.Symbol
	return Event{
		Type:       t,
		Layer:      l,
		UID:        g.UID,
		Symbol:     &sym,
		Attributes: g.Attributes,
		Visible:    g.Visible,
	}
}
