// Package interaction keeps track of which graphic is selected, hovered and
// right clicked, and turns pointer events into restyles, popups and
// navigation.
//
// Each pointer event is resolved through a hit test against the scene. Hit
// tests run without holding the controller lock, so events of different
// streams may overlap. Within one stream only the most recently issued event
// is applied: a result that arrives after a newer event of the same stream
// was issued is dropped with ErrStale.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/navigate"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/store"
	"github.com/joeblew999/plat-sitemap/internal/symbol"
)

// ErrStale is returned by an event handler whose hit test was overtaken by a
// newer event on the same stream. The handler made no changes.
var ErrStale = errors.New("interaction: superseded by a newer event")

// Scene is the part of the rendering layer the controller drives.
type Scene interface {
	HitTest(ctx context.Context, lonLat orb.Point) ([]scene.Hit, error)
	Graphic(uid string) *scene.Graphic
	LayerGraphic(uid string) *scene.Graphic
	SetSymbolStyle(g *scene.Graphic, state symbol.State)
	SetSymbolStylesForAll(state symbol.State, categories ...scene.Category)
}

// Popup is the item popup of the view.
type Popup interface {
	Open(location orb.Point)
	Close()
	Visible() bool
}

// Router reads the active route and requests navigations.
type Router interface {
	Params() navigate.Params
	Navigate(path string)
}

// Nested clears the nested item state below a level.
type Nested interface {
	ClearJobAndNested()
	ClearAreaAndNested()
	ClearAreasAndNested()
	JobStatus(id string) (store.JobStatus, bool)
}

// State holds the interaction slots. The graphics are owned by the scene.
type State struct {
	Selected     *scene.Graphic
	Hovered      *scene.Graphic
	RightClicked *scene.Graphic
	SliderIndex  *int

	hoveredItemID string
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Scene  Scene
	Popup  Popup
	Router Router
	Nested Nested
	Logger *slog.Logger
}

type stream int

const (
	streamClick stream = iota
	streamMove
	streamContext
	numStreams
)

// Controller applies pointer events to a State.
type Controller struct {
	mu     sync.Mutex
	state  *State
	scene  Scene
	popup  Popup
	router Router
	nested Nested
	log    *slog.Logger

	issued [numStreams]atomic.Uint64
}

// New creates a controller mutating state.
func New(state *State, deps Deps) *Controller {
	if state == nil {
		state = &State{}
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		state:  state,
		scene:  deps.Scene,
		popup:  deps.Popup,
		router: deps.Router,
		nested: deps.Nested,
		log:    log,
	}
}

// Snapshot returns a copy of the interaction state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := *c.state
	if s.SliderIndex != nil {
		i := *s.SliderIndex
		s.SliderIndex = &i
	}
	return s
}

func (c *Controller) begin(s stream) uint64 {
	return c.issued[s].Add(1)
}

// latest reports whether seq is still the newest event of its stream.
func (c *Controller) latest(s stream, seq uint64) bool {
	return c.issued[s].Load() == seq
}

// hitTest runs a hit test for a new event on s and returns with the
// controller locked unless an error is returned.
func (c *Controller) hitTest(ctx context.Context, s stream, lonLat orb.Point) ([]scene.Hit, error) {
	seq := c.begin(s)
	hits, err := c.scene.HitTest(ctx, lonLat)
	if err != nil {
		return nil, fmt.Errorf("hit test: %w", err)
	}
	c.mu.Lock()
	if !c.latest(s, seq) {
		c.mu.Unlock()
		c.log.Debug("dropping stale hit test", "stream", s, "seq", seq)
		return nil, ErrStale
	}
	return c.live(hits), nil
}

// live detaches hits whose graphic was removed from the scene while the hit
// test ran, so no slot picks up a graphic that Forget has already passed.
func (c *Controller) live(hits []scene.Hit) []scene.Hit {
	for i, h := range hits {
		if h.IsGraphic() && c.scene.Graphic(h.Graphic.UID) != h.Graphic {
			hits[i].Graphic = nil
		}
	}
	return hits
}

// Click handles a primary button click at a longitude/latitude position. It
// updates the selection and navigates to the clicked item.
func (c *Controller) Click(ctx context.Context, lonLat orb.Point) error {
	hits, err := c.hitTest(ctx, streamClick, lonLat)
	if err != nil {
		return err
	}
	defer c.mu.Unlock()

	c.selectFromHits(hits)
	c.navigateFromHits(hits)
	return nil
}

// The first hit is the display copy in the view; the editable copy sits
// below it in the sketch layer.
func (c *Controller) selectFromHits(hits []scene.Hit) {
	if len(hits) < 2 || !hits[1].IsGraphic() {
		c.setSelected(nil)
		return
	}
	c.setSelected(c.scene.LayerGraphic(hits[1].Graphic.UID))
}

func (c *Controller) navigateFromHits(hits []scene.Hit) {
	if len(hits) == 0 || !hits[0].IsGraphic() {
		return
	}
	attrs := hits[0].Attributes
	if attrs.ItemID == "" {
		return
	}
	if c.router.Params().ID == attrs.ItemID {
		return
	}
	t, ok := TargetFor(attrs)
	if !ok {
		c.log.Debug("no navigation target", "category", attrs.Category, "itemId", attrs.ItemID)
		return
	}
	c.dispatch(t)
}

func (c *Controller) dispatch(t Target) {
	switch t := t.(type) {
	case ConstructionSiteTarget:
		c.nested.ClearAreasAndNested()
		c.router.Navigate(navigate.ConstructionSitePath(t.ID))
		c.state.SliderIndex = t.Index
	case AreaTarget:
		c.nested.ClearAreaAndNested()
		c.router.Navigate(navigate.AreaPath(t.ID))
	case JobTarget:
		c.nested.ClearJobAndNested()
		if status, _ := c.nested.JobStatus(t.ID); status != store.JobCreateSucceeded {
			c.log.Debug("job not ready for navigation", "job", t.ID, "status", status)
			return
		}
		c.router.Navigate(navigate.JobPath(t.ID))
	case ImageLocationTarget, MeasurementTarget:
	default:
		c.log.Warn("unhandled navigation target", "category", t.Category())
	}
}

// Select makes g the selected graphic. A nil g clears the selection.
func (c *Controller) Select(g *scene.Graphic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSelected(g)
}

// The outgoing selection is styled as selected before the incoming one is
// styled as hovered.
func (c *Controller) setSelected(g *scene.Graphic) {
	if c.state.Selected != nil {
		c.scene.SetSymbolStyle(c.state.Selected, symbol.StateSelect)
	}
	if g != nil {
		c.scene.SetSymbolStyle(g, symbol.StateHover)
	}
	c.state.Selected = g
}

// RightClick handles a secondary button click. A point graphic on top opens
// the popup at that point; anything else closes the popup. The right click
// target is cleared before the hit test runs.
func (c *Controller) RightClick(ctx context.Context, lonLat orb.Point) error {
	c.mu.Lock()
	c.state.RightClicked = nil
	c.mu.Unlock()

	hits, err := c.hitTest(ctx, streamContext, lonLat)
	if err != nil {
		return err
	}
	defer c.mu.Unlock()

	if len(hits) == 0 || !hits[0].IsPoint() {
		if c.popup.Visible() {
			c.popup.Close()
		}
		c.state.RightClicked = nil
		return nil
	}
	c.state.RightClicked = hits[0].Graphic
	c.popup.Open(hits[0].Location)
	return nil
}

// PointerMove handles pointer movement and maintains the hover highlight.
func (c *Controller) PointerMove(ctx context.Context, lonLat orb.Point) error {
	hits, err := c.hitTest(ctx, streamMove, lonLat)
	if err != nil {
		return err
	}
	defer c.mu.Unlock()

	if len(hits) == 0 || !hits[0].IsGraphic() {
		if c.state.Hovered != nil {
			c.scene.SetSymbolStylesForAll(symbol.StateUnselect)
			c.setHovered(nil, "")
		}
		return nil
	}

	hit := hits[0]
	if !hit.Attributes.Identified() {
		if c.state.Hovered != nil {
			c.scene.SetSymbolStylesForAll(symbol.StateUnselect)
		}
		c.setHovered(nil, "")
		return nil
	}
	if c.state.Hovered != nil && hit.Attributes.ItemID == c.state.hoveredItemID {
		return nil
	}

	c.scene.SetSymbolStylesForAll(symbol.StateUnselect)
	c.setHovered(hit.Graphic, hit.Attributes.ItemID)
	if hit.Attributes.Category != scene.CategoryConstructionSite {
		c.scene.SetSymbolStyle(hit.Graphic, symbol.StateHover)
	}
	return nil
}

func (c *Controller) setHovered(g *scene.Graphic, itemID string) {
	c.state.Hovered = g
	c.state.hoveredItemID = itemID
}

// Forget clears every slot holding g. It is registered as a scene removal
// observer.
func (c *Controller) Forget(g *scene.Graphic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Selected == g {
		c.state.Selected = nil
	}
	if c.state.Hovered == g {
		c.setHovered(nil, "")
	}
	if c.state.RightClicked == g {
		c.state.RightClicked = nil
	}
}

// SetSliderIndex sets the construction site slider position.
func (c *Controller) SetSliderIndex(i *int) {
	c.mu.Lock()
	c.state.SliderIndex = i
	c.mu.Unlock()
}

func (s stream) String() string {
	switch s {
	case streamClick:
		return "click"
	case streamMove:
		return "pointer-move"
	case streamContext:
		return "context"
	}
	return "unknown"
}
