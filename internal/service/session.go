// Package service orchestrates map sessions: one scene, interaction
// controller, router and workspace per browser map.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/geo"
	"github.com/joeblew999/plat-sitemap/internal/interaction"
	"github.com/joeblew999/plat-sitemap/internal/mapdoc"
	"github.com/joeblew999/plat-sitemap/internal/navigate"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/store"
	"github.com/joeblew999/plat-sitemap/internal/symbol"
	"github.com/joeblew999/plat-sitemap/internal/workspace"
)

// Zoom levels used when the camera jumps to an item.
const (
	SitesZoom       = 5
	EditZoom        = 17
	ImagesZoom      = 15
	SingleImageZoom = 18
)

// Half sizes in meters of the default polygons drawn for new items.
var (
	siteHalfSize = [2]float64{200, 100}
	itemHalfSize = [2]float64{100, 50}
)

var (
	ErrSketchNotReady = errors.New("sketch tools are not initialized")
	ErrNoGraphic      = errors.New("no graphic to export")
	ErrNoGeometry     = errors.New("map holds no geometry")
	ErrNoParent       = errors.New("no parent graphic in view")
	ErrUnknownField   = errors.New("unknown attribute field")
	ErrImageNotFound  = errors.New("image location not found")
)

// ItemStore is the backend the session reads items from.
type ItemStore interface {
	workspace.Source
	ImagePoints(ctx context.Context, measurementID, id string) ([]store.ImageInfo, error)
	SaveMap(ctx context.Context, c scene.Category, id, m string) error
}

// Session is one map: its scene, interaction state, route and nested items.
type Session struct {
	ID         string
	Scene      *scene.Scene
	Controller *interaction.Controller
	Router     *navigate.Router
	Workspace  *workspace.Workspace

	styles *symbol.Table
	store  ItemStore
	bus    *EventBus
	log    *slog.Logger

	mu           sync.Mutex
	images       []store.ImageInfo
	imagesLoaded bool
	kmlFileName  string
}

// NewSession creates a session publishing its events on bus.
func NewSession(id string, st ItemStore, bus *EventBus, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("session", id)
	s := &Session{
		ID:     id,
		styles: symbol.Default(log),
		store:  st,
		bus:    bus,
		log:    log,
	}
	s.Scene = scene.New(s.styles,
		scene.WithLogger(log),
		scene.WithNotifier(s.publishScene),
	)
	s.Router = navigate.NewRouter(s.publishRoute)
	s.Workspace = workspace.New(st)
	s.Controller = interaction.New(&interaction.State{}, interaction.Deps{
		Scene:  s.Scene,
		Popup:  s.Scene.Popup(),
		Router: s.Router,
		Nested: s.Workspace,
		Logger: log,
	})
	s.Scene.OnRemove(s.Controller.Forget)
	return s
}

func (s *Session) publishScene(e scene.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(Event{Resource: ResourceScene, Action: string(e.Type), ID: s.ID, Scene: &e})
}

func (s *Session) publishRoute(p navigate.Params) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(Event{Resource: ResourceRoute, Action: "navigated", ID: s.ID, Route: &p})
}

// InitMap sets up the map and its graphics layer.
func (s *Session) InitMap() {
	s.Scene.SetMapInitialized(true)
	s.log.Info("map initialized", "ready", s.Scene.Initialized())
}

// InitView centers the view on the default location.
func (s *Session) InitView() {
	s.Scene.GoTo(scene.DefaultCenter, scene.DefaultZoom)
	s.Scene.SetViewInitialized(true)
	s.log.Info("view initialized", "ready", s.Scene.Initialized())
}

// InitSketch enables the sketch tools.
func (s *Session) InitSketch() {
	s.Scene.SetSketchInitialized(true)
	s.log.Info("sketch initialized", "ready", s.Scene.Initialized())
}

// ResetMapInit marks the map, view and sketch tools as not ready.
func (s *Session) ResetMapInit() {
	s.Scene.SetMapInitialized(false)
	s.Scene.SetSketchInitialized(false)
	s.Scene.SetViewInitialized(false)
}

// AddConstructionSiteIcons places an icon for every site whose map has a
// valid center and moves the camera to the mean of those centers. It returns
// the number of icons added.
func (s *Session) AddConstructionSiteIcons(sites []store.MapItem) int {
	var icons []*scene.Graphic
	var sumLon, sumLat float64
	for i, site := range sites {
		pos, err := mapdoc.Coordinates([]byte(site.Map))
		if err != nil {
			s.log.Warn("skipping construction site with unreadable map", "site", site.ID, "error", err)
			continue
		}
		if !geo.ValidPosition(pos) {
			continue
		}
		sumLon += pos[0]
		sumLat += pos[1]
		index := i
		icons = append(icons, scene.NewGraphic(
			geo.PointToMercator(orb.Point{pos[0], pos[1]}),
			symbol.ConstructionSiteIcon,
			scene.Attributes{
				Category:    scene.CategoryConstructionSite,
				ItemID:      site.ID,
				Title:       site.Title,
				Description: site.Description,
				CreatedBy:   site.CreatedBy,
				Index:       &index,
			},
		))
	}
	if len(icons) == 0 {
		return 0
	}
	s.Scene.Add(scene.LayerView, icons...)
	n := float64(len(icons))
	s.Scene.GoTo(orb.Point{sumLon / n, sumLat / n}, SitesZoom)
	return len(icons)
}

// InitGeometries replaces the view graphics of category c with the maps of
// items. Items without geometry are skipped.
func (s *Session) InitGeometries(items []store.MapItem, c scene.Category) error {
	s.Scene.RemoveCategory(c)

	var graphics []*scene.Graphic
	var errs []error
	for _, item := range items {
		g, err := mapdoc.ParseString(item.Map)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %s: %w", item.ID, err))
			continue
		}
		if g == nil {
			continue
		}
		g.Attributes = g.Attributes.Merge(scene.Attributes{
			Category:    c,
			ItemID:      item.ID,
			Title:       item.Title,
			Description: item.Description,
		})
		if sym, ok := s.styles.Resolve(g.Symbol.Kind, symbol.StateUnselect); ok {
			g.Symbol = sym
		}
		graphics = append(graphics, g)
	}
	s.Scene.Add(scene.LayerView, graphics...)
	return errors.Join(errs...)
}

// InitConstructionSiteGraphic drops stray points from the graphics layer
// and, if it is empty, draws a default site polygon at the view center.
func (s *Session) InitConstructionSiteGraphic() error {
	s.Scene.RemoveGeometryType("Point")
	if s.Scene.Len(scene.LayerSketch) > 0 {
		return nil
	}
	if s.Scene.ViewInitialized() {
		s.Scene.GoToZoom(EditZoom)
	}
	poly := defaultPolygon(s.Scene.Center(), scene.CategoryConstructionSite)
	return s.addGraphicAndUpdate(scene.NewGraphic(poly, symbol.Polygon, scene.Attributes{}))
}

// InitAreaGraphic drops stray points from the graphics layer and, if it is
// empty, draws a default area polygon centered on the construction site.
func (s *Session) InitAreaGraphic() error {
	s.Scene.RemoveGeometryType("Point")
	if s.Scene.Len(scene.LayerSketch) > 0 {
		return nil
	}
	sites := s.Scene.ByCategory(scene.CategoryConstructionSite)
	if len(sites) == 0 {
		return fmt.Errorf("drawing area: %w", ErrNoParent)
	}
	poly := defaultPolygon(geo.Center(s.Scene.Snapshot(sites[0]).Geometry), scene.CategoryArea)
	return s.addGraphicAndUpdate(scene.NewGraphic(poly, symbol.Polygon, scene.Attributes{}))
}

// InitJobGraphic draws a default job point at the center of the active area
// if the graphics layer is empty. The view holds the construction site
// first, followed by the areas in list order.
func (s *Session) InitJobGraphic() error {
	if s.Scene.Len(scene.LayerSketch) > 0 {
		return nil
	}
	at := 0
	if i, ok := s.Workspace.AreaIndex(); ok {
		at = i + 1
	}
	area := s.Scene.At(scene.LayerView, at)
	if area == nil {
		return fmt.Errorf("drawing job at view graphic %d: %w", at, ErrNoParent)
	}
	pt := geo.Center(s.Scene.Snapshot(area).Geometry)
	return s.addGraphicAndUpdate(scene.NewGraphic(pt, symbol.Marker, scene.Attributes{}))
}

// defaultPolygon returns a rectangle around center. A center in
// longitude/latitude range is projected first.
func defaultPolygon(center orb.Point, c scene.Category) orb.Polygon {
	if geo.IsWGS84(center[0], center[1]) {
		center = geo.PointToMercator(center)
	}
	half := itemHalfSize
	if c == scene.CategoryConstructionSite {
		half = siteHalfSize
	}
	x, y, w, h := center[0], center[1], half[0], half[1]
	return orb.Polygon{{
		{x + w, y + h},
		{x + w, y - h},
		{x - w, y - h},
		{x - w, y + h},
		{x + w, y + h},
	}}
}

// addGraphicAndUpdate puts graphics into the graphics layer and selects the
// first one for editing.
func (s *Session) addGraphicAndUpdate(graphics ...*scene.Graphic) error {
	if !s.Scene.SketchInitialized() {
		return ErrSketchNotReady
	}
	if len(graphics) == 0 {
		return nil
	}
	s.Scene.Add(scene.LayerSketch, graphics...)
	s.Controller.Select(graphics[0])
	s.SetKMLFileName("")
	return nil
}

// AddToGraphicsLayer decodes a graphic document for item itemID and puts it
// into the graphics layer for editing.
func (s *Session) AddToGraphicsLayer(doc []byte, itemID string) error {
	g, err := mapdoc.Parse(doc)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrNoGeometry
	}
	g.Attributes = g.Attributes.Merge(scene.Attributes{ItemID: itemID})
	if g.Attributes.Category == scene.CategoryJob {
		g.Symbol = symbol.ColoredMarker
	}
	return s.addGraphicAndUpdate(g)
}

// editGraphic returns the selected graphic, or the first graphic of the
// graphics layer.
func (s *Session) editGraphic() *scene.Graphic {
	if g := s.Controller.Snapshot().Selected; g != nil {
		return g
	}
	return s.Scene.At(scene.LayerSketch, 0)
}

// GraphicToJSON encodes the graphic being edited as a WGS84 document. Job
// markers are reset to the plain marker first.
func (s *Session) GraphicToJSON() ([]byte, error) {
	g := s.editGraphic()
	if g == nil {
		return nil, ErrNoGraphic
	}
	if s.Scene.Snapshot(g).Attributes.Category == scene.CategoryJob {
		s.Scene.SetSymbol(g, symbol.Marker)
	}
	return mapdoc.Encode(s.Scene.Snapshot(g))
}

// Save stores the graphic being edited, with the current camera, as the map
// of item id.
func (s *Session) Save(ctx context.Context, c scene.Category, id string) error {
	g := s.editGraphic()
	if g == nil {
		return ErrNoGraphic
	}
	if s.Scene.Snapshot(g).Attributes.Category == scene.CategoryJob {
		s.Scene.SetSymbol(g, symbol.Marker)
	}
	center, _ := s.Coordinates()
	data, err := mapdoc.EncodeEnvelope(s.Scene.Snapshot(g), center, s.Scene.Zoom())
	if err != nil {
		return err
	}
	if err := s.store.SaveMap(ctx, c, id, string(data)); err != nil {
		return fmt.Errorf("saving map of %s %s: %w", c, id, err)
	}
	return nil
}

// UpdateGraphic sets the title or description of every view graphic
// drawing itemID.
func (s *Session) UpdateGraphic(itemID, field, value string) error {
	var set func(*scene.Attributes)
	switch field {
	case "title":
		set = func(a *scene.Attributes) { a.Title = value }
	case "description":
		set = func(a *scene.Attributes) { a.Description = value }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.Scene.UpdateAttributes(itemID, set)
	return nil
}

// Coordinates returns the longitude/latitude center of the first graphic in
// the graphics layer.
func (s *Session) Coordinates() (orb.Point, bool) {
	g := s.Scene.At(scene.LayerSketch, 0)
	if g == nil {
		return orb.Point{}, false
	}
	return geo.PointToWGS84(geo.Center(s.Scene.Snapshot(g).Geometry)), true
}

// KMLFileName returns the name of the imported KML file, if any.
func (s *Session) KMLFileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kmlFileName
}

// SetKMLFileName records the name of an imported KML file.
func (s *Session) SetKMLFileName(name string) {
	s.mu.Lock()
	s.kmlFileName = name
	s.mu.Unlock()
}

// loadImages fetches image points once per session. Fetch failures are
// logged and reported as false.
func (s *Session) loadImages(ctx context.Context, measurementID, id string) bool {
	s.mu.Lock()
	loaded := s.imagesLoaded
	s.mu.Unlock()
	if loaded {
		return true
	}

	points, err := s.store.ImagePoints(ctx, measurementID, id)
	if err != nil {
		s.log.Warn("fetching image points failed", "measurement", measurementID, "error", err)
		return false
	}
	s.addAllPoints(points)
	return true
}

// addAllPoints caches points and adds them to the graphics layer as one
// hidden multipoint.
func (s *Session) addAllPoints(points []store.ImageInfo) {
	s.mu.Lock()
	s.images = append(s.images, points...)
	s.imagesLoaded = true
	mp := make(orb.MultiPoint, 0, len(s.images))
	for _, p := range s.images {
		mp = append(mp, geo.PointToMercator(orb.Point{p.Longitude, p.Latitude}))
	}
	s.mu.Unlock()

	g := scene.NewGraphic(mp, symbol.Marker, scene.Attributes{Category: scene.CategoryImageLocation})
	g.Visible = false
	s.Scene.Add(scene.LayerSketch, g)
}

// ToggleImagePoints shows or hides the image locations of a measurement and
// moves the camera to the first image when they become visible.
func (s *Session) ToggleImagePoints(ctx context.Context, measurementID string) error {
	if !s.loadImages(ctx, measurementID, "") {
		return nil
	}
	s.mu.Lock()
	var first *store.ImageInfo
	if len(s.images) > 0 {
		img := s.images[0]
		first = &img
	}
	s.mu.Unlock()

	for i, g := range s.Scene.LayerByCategory(scene.CategoryImageLocation) {
		if visible := s.Scene.ToggleVisible(g); i == 0 && visible && first != nil {
			s.goTo(orb.Point{first.Longitude, first.Latitude}, ImagesZoom)
		}
	}
	return nil
}

// AddSinglePoint toggles the marker of one image, creating it on first use.
func (s *Session) AddSinglePoint(ctx context.Context, id, measurementID string) error {
	if !s.loadImages(ctx, measurementID, id) {
		return nil
	}
	img, ok := s.image(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	at := orb.Point{img.Longitude, img.Latitude}

	for _, g := range s.Scene.LayerByCategory(scene.CategoryImageLocation) {
		if s.Scene.Snapshot(g).Attributes.ItemID != id {
			continue
		}
		if s.Scene.ToggleVisible(g) {
			s.goTo(at, ImagesZoom)
		}
		return nil
	}

	s.Scene.Add(scene.LayerSketch, scene.NewGraphic(
		geo.PointToMercator(at),
		symbol.Marker,
		scene.Attributes{Category: scene.CategoryImageLocation, ItemID: id},
	))
	s.goTo(at, SingleImageZoom)
	return nil
}

func (s *Session) image(id string) (store.ImageInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images {
		if img.ID == id {
			return img, true
		}
	}
	return store.ImageInfo{}, false
}

// RemoveImageLocations removes every image marker and drops the cached
// image points.
func (s *Session) RemoveImageLocations() {
	s.Scene.RemoveLayerCategory(scene.CategoryImageLocation)
	s.mu.Lock()
	s.images = nil
	s.imagesLoaded = false
	s.mu.Unlock()
}

// goTo moves the camera once the view is ready.
func (s *Session) goTo(lonLat orb.Point, zoom float64) {
	if s.Scene.ViewInitialized() {
		s.Scene.GoTo(lonLat, zoom)
	}
}

// ClearGraphicLayer removes every graphic from the graphics layer.
func (s *Session) ClearGraphicLayer() error {
	return s.Scene.ClearLayer()
}

// ClearViewGraphics removes every display graphic from the view.
func (s *Session) ClearViewGraphics() {
	s.Scene.ClearView()
}

// LoadConstructionSites fetches every construction site into the workspace
// and shows their icons.
func (s *Session) LoadConstructionSites(ctx context.Context) (int, error) {
	sites, err := s.store.ListItems(ctx, scene.CategoryConstructionSite, "")
	if err != nil {
		return 0, fmt.Errorf("loading construction sites: %w", err)
	}
	s.Workspace.SetSites(sites)
	s.Scene.RemoveCategory(scene.CategoryConstructionSite)
	return s.AddConstructionSiteIcons(sites), nil
}

// LoadItems fetches the children of parentID in category c and draws those
// that have a map.
func (s *Session) LoadItems(ctx context.Context, c scene.Category, parentID string) (int, error) {
	var items []store.MapItem
	switch c {
	case scene.CategoryJob:
		jobs, err := s.Workspace.LoadJobs(ctx, parentID)
		if err != nil {
			return 0, err
		}
		for _, j := range jobs {
			items = append(items, j.MapItem)
		}
	case scene.CategoryArea:
		areas, err := s.Workspace.LoadAreas(ctx, parentID)
		if err != nil {
			return 0, err
		}
		items = areas
	default:
		list, err := s.store.ListItems(ctx, c, parentID)
		if err != nil {
			return 0, fmt.Errorf("loading %s items: %w", c, err)
		}
		items = list
	}

	drawn := items[:0:0]
	for _, item := range items {
		if mapdoc.HasMap(item.Map) {
			drawn = append(drawn, item)
		}
	}
	if err := s.InitGeometries(drawn, c); err != nil {
		s.log.Warn("some items could not be drawn", "category", c, "error", err)
	}
	return len(s.Scene.ByCategory(c)), nil
}
