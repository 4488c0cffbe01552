// Package scene models the rendering layer of a map: the graphics shown in
// the view, the editable graphics layer, the camera and the popup.
//
// The scene owns every Graphic. Other packages hold non-owning pointers and
// register removal observers with OnRemove to drop them when a graphic goes
// away.
package scene

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/symbol"
)

// ErrNotInitialized is returned by destructive operations issued before the
// map, view and graphics layer are set up.
var ErrNotInitialized = errors.New("map has not been initialized yet")

// Layer identifies one of the two graphic collections.
type Layer int

const (
	// LayerView holds the display graphics (site icons, item outlines).
	LayerView Layer = iota
	// LayerSketch holds the graphic being edited.
	LayerSketch
)

func (l Layer) String() string {
	if l == LayerSketch {
		return "sketch"
	}
	return "view"
}

// Resolver looks up the symbol for a kind and state.
type Resolver interface {
	Resolve(kind symbol.Kind, state symbol.State) (symbol.Symbol, bool)
}

// Scene is the live collection of graphics plus view state.
type Scene struct {
	mu       sync.RWMutex
	view     []*Graphic
	sketch   []*Graphic
	camera   camera
	init     initFlags
	popup    *Popup
	resolver Resolver
	notify   func(Event)
	onRemove []func(*Graphic)
	log      *slog.Logger
}

type initFlags struct {
	mapAndLayer bool
	view        bool
	sketch      bool
}

// Option configures a Scene.
type Option func(*Scene)

// WithNotifier sets the function receiving scene events.
func WithNotifier(fn func(Event)) Option {
	return func(s *Scene) { s.notify = fn }
}

// WithLogger sets the scene logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scene) { s.log = log }
}

// New creates an empty scene styled by resolver.
func New(resolver Resolver, opts ...Option) *Scene {
	s := &Scene{
		resolver: resolver,
		camera:   newCamera(),
		notify:   func(Event) {},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.popup = &Popup{emit: s.emit}
	return s
}

func (s *Scene) emit(events ...Event) {
	for _, e := range events {
		s.notify(e)
	}
}

// OnRemove registers fn to be called for every graphic removed from the scene.
func (s *Scene) OnRemove(fn func(*Graphic)) {
	s.mu.Lock()
	s.onRemove = append(s.onRemove, fn)
	s.mu.Unlock()
}

func (s *Scene) collection(l Layer) *[]*Graphic {
	if l == LayerSketch {
		return &s.sketch
	}
	return &s.view
}

// Add appends graphics to a layer.
func (s *Scene) Add(l Layer, graphics ...*Graphic) {
	s.mu.Lock()
	coll := s.collection(l)
	events := make([]Event, 0, len(graphics))
	for _, g := range graphics {
		if g == nil {
			continue
		}
		*coll = append(*coll, g)
		events = append(events, graphicEvent(EventGraphicAdded, l, g))
	}
	s.mu.Unlock()
	s.emit(events...)
}

// Graphics returns a snapshot of a layer's graphics in drawing order.
func (s *Scene) Graphics(l Layer) []*Graphic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll := *s.collection(l)
	out := make([]*Graphic, len(coll))
	copy(out, coll)
	return out
}

// Len returns the number of graphics in a layer.
func (s *Scene) Len(l Layer) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(*s.collection(l))
}

// At returns the graphic at index i of a layer, or nil.
func (s *Scene) At(l Layer, i int) *Graphic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll := *s.collection(l)
	if i < 0 || i >= len(coll) {
		return nil
	}
	return coll[i]
}

// ByCategory returns the view graphics tagged with c.
func (s *Scene) ByCategory(c Category) []*Graphic {
	return s.filter(LayerView, func(g *Graphic) bool { return g.Attributes.Category == c })
}

// LayerByCategory returns the sketch layer graphics tagged with c.
func (s *Scene) LayerByCategory(c Category) []*Graphic {
	return s.filter(LayerSketch, func(g *Graphic) bool { return g.Attributes.Category == c })
}

func (s *Scene) filter(l Layer, keep func(*Graphic) bool) []*Graphic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Graphic
	for _, g := range *s.collection(l) {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

// FindByItemID returns the first graphic drawing itemID, searching the view
// before the sketch layer.
func (s *Scene) FindByItemID(itemID string) *Graphic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range []Layer{LayerView, LayerSketch} {
		for _, g := range *s.collection(l) {
			if g.Attributes.ItemID == itemID {
				return g
			}
		}
	}
	return nil
}

// LayerGraphic returns the sketch layer graphic with the given UID, or nil.
func (s *Scene) LayerGraphic(uid string) *Graphic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.sketch {
		if g.UID == uid {
			return g
		}
	}
	return nil
}

// Graphic returns the graphic with the given UID from either layer.
func (s *Scene) Graphic(uid string) *Graphic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range []Layer{LayerView, LayerSketch} {
		for _, g := range *s.collection(l) {
			if g.UID == uid {
				return g
			}
		}
	}
	return nil
}

// Remove deletes g from whichever layer holds it.
func (s *Scene) Remove(g *Graphic) bool {
	if g == nil {
		return false
	}
	removed := s.removeWhere(func(_ Layer, c *Graphic) bool { return c == g })
	return removed > 0
}

// RemoveByItemID deletes the first graphic drawing itemID.
func (s *Scene) RemoveByItemID(itemID string) bool {
	return s.Remove(s.FindByItemID(itemID))
}

// RemoveCategory deletes every view graphic tagged with c.
func (s *Scene) RemoveCategory(c Category) int {
	return s.removeWhere(func(l Layer, g *Graphic) bool {
		return l == LayerView && g.Attributes.Category == c
	})
}

// RemoveLayerCategory deletes every sketch layer graphic tagged with c.
func (s *Scene) RemoveLayerCategory(c Category) int {
	return s.removeWhere(func(l Layer, g *Graphic) bool {
		return l == LayerSketch && g.Attributes.Category == c
	})
}

// RemoveGeometryType deletes sketch layer graphics whose geometry has the
// given GeoJSON type, e.g. "Point".
func (s *Scene) RemoveGeometryType(geomType string) int {
	return s.removeWhere(func(l Layer, g *Graphic) bool {
		return l == LayerSketch && g.GeometryType() == geomType
	})
}

// ClearView removes every view graphic.
func (s *Scene) ClearView() {
	s.removeWhere(func(l Layer, _ *Graphic) bool { return l == LayerView })
}

// ClearLayer removes every sketch layer graphic. It refuses to run before
// the map is fully initialized.
func (s *Scene) ClearLayer() error {
	if !s.Initialized() {
		s.log.Error("cannot clear graphics layer", "error", ErrNotInitialized)
		return ErrNotInitialized
	}
	s.removeWhere(func(l Layer, _ *Graphic) bool { return l == LayerSketch })
	return nil
}

func (s *Scene) removeWhere(match func(Layer, *Graphic) bool) int {
	s.mu.Lock()
	var removed []*Graphic
	var events []Event
	for _, l := range []Layer{LayerView, LayerSketch} {
		coll := s.collection(l)
		kept := (*coll)[:0]
		for _, g := range *coll {
			if match(l, g) {
				removed = append(removed, g)
				events = append(events, graphicEvent(EventGraphicRemoved, l, g))
				continue
			}
			kept = append(kept, g)
		}
		for i := len(kept); i < len(*coll); i++ {
			(*coll)[i] = nil
		}
		*coll = kept
	}
	observers := make([]func(*Graphic), len(s.onRemove))
	copy(observers, s.onRemove)
	s.mu.Unlock()

	for _, g := range removed {
		for _, fn := range observers {
			fn(g)
		}
	}
	s.emit(events...)
	return len(removed)
}

// SetSymbol assigns sym to g directly.
func (s *Scene) SetSymbol(g *Graphic, sym symbol.Symbol) {
	s.mu.Lock()
	g.Symbol = sym
	ev := graphicEvent(EventGraphicStyled, s.layerOf(g), g)
	s.mu.Unlock()
	s.emit(ev)
}

// SetSymbolStyle restyles g for state. Graphics whose symbol kind has no
// registered styles keep their current symbol.
func (s *Scene) SetSymbolStyle(g *Graphic, state symbol.State) {
	if g == nil {
		return
	}
	s.mu.Lock()
	ev, ok := s.restyle(g, state)
	s.mu.Unlock()
	if ok {
		s.emit(ev)
	}
}

// SetSymbolStylesForAll restyles every view graphic for state, or only those
// in the given categories when any are passed.
func (s *Scene) SetSymbolStylesForAll(state symbol.State, categories ...Category) {
	s.mu.Lock()
	var events []Event
	for _, g := range s.view {
		if len(categories) > 0 && !containsCategory(categories, g.Attributes.Category) {
			continue
		}
		if ev, ok := s.restyle(g, state); ok {
			events = append(events, ev)
		}
	}
	s.mu.Unlock()
	s.emit(events...)
}

func (s *Scene) restyle(g *Graphic, state symbol.State) (Event, bool) {
	sym, ok := s.resolver.Resolve(g.Symbol.Kind, state)
	if !ok {
		return Event{}, false
	}
	g.Symbol = sym
	ev := graphicEvent(EventGraphicStyled, s.layerOf(g), g)
	ev.State = state
	return ev, true
}

// SetVisible shows or hides g.
func (s *Scene) SetVisible(g *Graphic, visible bool) {
	s.mu.Lock()
	g.Visible = visible
	ev := graphicEvent(EventGraphicVisibility, s.layerOf(g), g)
	s.mu.Unlock()
	s.emit(ev)
}

// ToggleVisible flips the visibility of g and returns the new value.
func (s *Scene) ToggleVisible(g *Graphic) bool {
	s.mu.Lock()
	g.Visible = !g.Visible
	visible := g.Visible
	ev := graphicEvent(EventGraphicVisibility, s.layerOf(g), g)
	s.mu.Unlock()
	s.emit(ev)
	return visible
}

// SetGeometry replaces the geometry of g.
func (s *Scene) SetGeometry(g *Graphic, geom orb.Geometry) {
	s.mu.Lock()
	g.Geometry = geom
	ev := graphicEvent(EventGraphicUpdated, s.layerOf(g), g)
	s.mu.Unlock()
	s.emit(ev)
}

// MergeAttributes applies the non-empty fields of attrs to g.
func (s *Scene) MergeAttributes(g *Graphic, attrs Attributes) {
	s.mu.Lock()
	g.Attributes = g.Attributes.Merge(attrs)
	ev := graphicEvent(EventGraphicUpdated, s.layerOf(g), g)
	s.mu.Unlock()
	s.emit(ev)
}

// UpdateAttributes calls fn on the attributes of every view graphic drawing
// itemID and returns how many were changed.
func (s *Scene) UpdateAttributes(itemID string, fn func(*Attributes)) int {
	s.mu.Lock()
	var events []Event
	for _, g := range s.view {
		if g.Attributes.ItemID != itemID {
			continue
		}
		fn(&g.Attributes)
		events = append(events, graphicEvent(EventGraphicUpdated, LayerView, g))
	}
	s.mu.Unlock()
	s.emit(events...)
	return len(events)
}

// Snapshot returns a copy of g taken under the scene lock.
func (s *Scene) Snapshot(g *Graphic) Graphic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *g
}

func (s *Scene) layerOf(g *Graphic) Layer {
	for _, c := range s.sketch {
		if c == g {
			return LayerSketch
		}
	}
	return LayerView
}

func containsCategory(cs []Category, c Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
