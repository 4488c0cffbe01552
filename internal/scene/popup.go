package scene

import (
	"sync"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/geo"
)

// Popup is the single item popup of a view.
type Popup struct {
	mu       sync.Mutex
	visible  bool
	location orb.Point // Web Mercator
	emit     func(...Event)
}

// Popup returns the view popup.
func (s *Scene) Popup() *Popup {
	return s.popup
}

// Open shows the popup at a Web Mercator location, moving it if it is
// already open.
func (p *Popup) Open(location orb.Point) {
	p.mu.Lock()
	t := EventPopupOpened
	if p.visible {
		t = EventPopupMoved
	}
	p.visible = true
	p.location = location
	p.mu.Unlock()
	p.emit(Event{Type: t, Location: geo.PointToWGS84(location), Visible: true})
}

// Close hides the popup.
func (p *Popup) Close() {
	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()
	p.emit(Event{Type: EventPopupClosed})
}

// Visible reports whether the popup is shown.
func (p *Popup) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Location returns where the popup is anchored, in Web Mercator.
func (p *Popup) Location() orb.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}
