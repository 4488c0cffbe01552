package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-sitemap/internal/geo"
	"github.com/joeblew999/plat-sitemap/internal/mapdoc"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/store"
	"github.com/joeblew999/plat-sitemap/internal/symbol"
)

type fakeStore struct {
	items      map[scene.Category][]store.MapItem
	jobs       []store.Job
	images     []store.ImageInfo
	imagesErr  error
	imageCalls int
	saved      map[string]string
}

func (f *fakeStore) ListItems(_ context.Context, c scene.Category, _ string) ([]store.MapItem, error) {
	return f.items[c], nil
}

func (f *fakeStore) ListJobs(context.Context, string) ([]store.Job, error) {
	return f.jobs, nil
}

func (f *fakeStore) ImagePoints(_ context.Context, _, id string) ([]store.ImageInfo, error) {
	f.imageCalls++
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	if id == "" {
		return f.images, nil
	}
	for _, img := range f.images {
		if img.ID == id {
			return []store.ImageInfo{img}, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveMap(_ context.Context, c scene.Category, id, m string) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[string(c)+"/"+id] = m
	return nil
}

func pointMap(lon, lat float64) string {
	return `{"geometry":{"type":"Point","coordinates":[` + ftoa(lon) + `,` + ftoa(lat) + `]}}`
}

func ftoa(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

const areaMap = `{"geometry":{"type":"Polygon","coordinates":[[[13.37,52.51],[13.38,52.51],[13.38,52.52],[13.37,52.52],[13.37,52.51]]]},` +
	`"symbol":{"type":"simple-fill","color":[243,112,40,1]}}`

func newReadySession(t *testing.T, st *fakeStore) *Session {
	t.Helper()
	s := NewSession("test", st, NewEventBus(), nil)
	s.InitMap()
	s.InitView()
	s.InitSketch()
	return s
}

func TestAddConstructionSiteIconsUsesValidCoordinates(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	sites := []store.MapItem{
		{ID: "a", Map: pointMap(13, 52)},
		{ID: "b", Map: `{}`},
		{ID: "c", Map: pointMap(200, 95)},
		{ID: "d", Map: `{"graphic":` + pointMap(14, 53) + `,"coordinates":[14,53],"zoom":17}`},
		{ID: "e", Map: `not json`},
	}

	n := s.AddConstructionSiteIcons(sites)
	assert.Equal(t, 2, n)

	icons := s.Scene.ByCategory(scene.CategoryConstructionSite)
	require.Len(t, icons, 2)
	assert.Equal(t, "a", icons[0].Attributes.ItemID)
	assert.Equal(t, "d", icons[1].Attributes.ItemID)
	require.NotNil(t, icons[1].Attributes.Index)
	assert.Equal(t, 3, *icons[1].Attributes.Index)
	assert.True(t, icons[0].Symbol.Equal(symbol.ConstructionSiteIcon))

	center := s.Scene.CenterLonLat()
	assert.InDelta(t, 13.5, center[0], 1e-6)
	assert.InDelta(t, 52.5, center[1], 1e-6)
	assert.Equal(t, float64(SitesZoom), s.Scene.Zoom())
}

func TestAddConstructionSiteIconsNoneValid(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	before := s.Scene.CenterLonLat()

	assert.Zero(t, s.AddConstructionSiteIcons([]store.MapItem{{ID: "x", Map: `{}`}}))
	assert.Equal(t, before, s.Scene.CenterLonLat())
	assert.Zero(t, s.Scene.Len(scene.LayerView))
}

func TestInitGeometries(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	old := scene.NewGraphic(orb.Point{0, 0}, symbol.Marker, scene.Attributes{Category: scene.CategoryArea, ItemID: "gone"})
	s.Scene.Add(scene.LayerView, old)

	err := s.InitGeometries([]store.MapItem{
		{ID: "a-1", Title: "North", Map: areaMap},
		{ID: "a-2", Map: `{}`},
		{ID: "a-3", Map: `{broken`},
	}, scene.CategoryArea)
	assert.ErrorContains(t, err, "a-3")

	areas := s.Scene.ByCategory(scene.CategoryArea)
	require.Len(t, areas, 1)
	assert.Equal(t, "a-1", areas[0].Attributes.ItemID)
	assert.Equal(t, "North", areas[0].Attributes.Title)
	assert.True(t, areas[0].Symbol.Equal(symbol.TransparentPolygon))
	_, isPolygon := areas[0].Geometry.(orb.Polygon)
	assert.True(t, isPolygon)
}

func TestInitConstructionSiteGraphic(t *testing.T) {
	s := NewSession("test", &fakeStore{}, nil, nil)
	s.InitMap()
	s.InitView()
	assert.ErrorIs(t, s.InitConstructionSiteGraphic(), ErrSketchNotReady)

	s.InitSketch()
	require.NoError(t, s.InitConstructionSiteGraphic())
	require.Equal(t, 1, s.Scene.Len(scene.LayerSketch))

	g := s.Scene.At(scene.LayerSketch, 0)
	b := g.Geometry.Bound()
	assert.InDelta(t, 400, b.Max[0]-b.Min[0], 1e-6)
	assert.InDelta(t, 200, b.Max[1]-b.Min[1], 1e-6)
	assert.Equal(t, float64(EditZoom), s.Scene.Zoom())
	assert.Same(t, g, s.Controller.Snapshot().Selected)

	require.NoError(t, s.InitConstructionSiteGraphic())
	assert.Equal(t, 1, s.Scene.Len(scene.LayerSketch))
}

func TestInitAreaGraphic(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	assert.ErrorIs(t, s.InitAreaGraphic(), ErrNoParent)

	s.AddConstructionSiteIcons([]store.MapItem{{ID: "cs", Map: pointMap(13.4, 52.5)}})
	stray := scene.NewGraphic(orb.Point{1, 1}, symbol.Marker, scene.Attributes{})
	s.Scene.Add(scene.LayerSketch, stray)

	require.NoError(t, s.InitAreaGraphic())
	require.Equal(t, 1, s.Scene.Len(scene.LayerSketch))
	b := s.Scene.At(scene.LayerSketch, 0).Geometry.Bound()
	assert.InDelta(t, 200, b.Max[0]-b.Min[0], 1e-6)
	assert.InDelta(t, 100, b.Max[1]-b.Min[1], 1e-6)

	site := geo.PointToMercator(orb.Point{13.4, 52.5})
	assert.InDelta(t, site[0], b.Center()[0], 1e-6)
	assert.InDelta(t, site[1], b.Center()[1], 1e-6)
}

func TestInitJobGraphicUsesActiveArea(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	s.AddConstructionSiteIcons([]store.MapItem{{ID: "cs", Map: pointMap(13.4, 52.5)}})
	require.NoError(t, s.InitGeometries([]store.MapItem{{ID: "a-1", Map: areaMap}}, scene.CategoryArea))

	idx := 0
	s.Workspace.SetArea(&store.MapItem{ID: "a-1"}, &idx)
	require.NoError(t, s.InitJobGraphic())

	job := s.Scene.At(scene.LayerSketch, 0)
	require.NotNil(t, job)
	require.True(t, job.IsPoint())
	area := s.Scene.ByCategory(scene.CategoryArea)[0]
	assert.Equal(t, geo.Center(area.Geometry), job.Geometry)
}

func TestGraphicDocumentRoundTrip(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	doc := `{"geometry":{"type":"Point","coordinates":[13.379495,52.517588]},"attributes":{"id":"job"}}`

	require.NoError(t, s.AddToGraphicsLayer([]byte(doc), "j-1"))
	g := s.Scene.At(scene.LayerSketch, 0)
	require.NotNil(t, g)
	assert.True(t, g.Symbol.Equal(symbol.HoverMarker), "added graphic is selected for editing")
	assert.Equal(t, "j-1", g.Attributes.ItemID)

	data, err := s.GraphicToJSON()
	require.NoError(t, err)

	var out struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Symbol           symbol.Symbol           `json:"symbol"`
		SpatialReference mapdoc.SpatialReference `json:"spatialReference"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, mapdoc.WKIDWGS84, out.SpatialReference.WKID)
	assert.Equal(t, symbol.KindSimpleMarker, out.Symbol.Kind)
	assert.True(t, out.Symbol.Equal(symbol.Marker))
	require.Len(t, out.Geometry.Coordinates, 2)
	assert.InDelta(t, 13.379495, out.Geometry.Coordinates[0], 1e-6)
	assert.InDelta(t, 52.517588, out.Geometry.Coordinates[1], 1e-6)

	lonLat, ok := s.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 13.379495, lonLat[0], 1e-6)
}

func TestAddToGraphicsLayerWithoutGeometry(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	assert.ErrorIs(t, s.AddToGraphicsLayer([]byte(`{"graphic":{}}`), "x"), ErrNoGeometry)
	_, err := s.GraphicToJSON()
	assert.ErrorIs(t, err, ErrNoGraphic)
}

func TestSave(t *testing.T) {
	st := &fakeStore{}
	s := newReadySession(t, st)
	require.NoError(t, s.InitConstructionSiteGraphic())

	require.NoError(t, s.Save(context.Background(), scene.CategoryConstructionSite, "cs-1"))
	m, ok := st.saved["constructionSite/cs-1"]
	require.True(t, ok)

	g, err := mapdoc.ParseString(m)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.True(t, mapdoc.HasMap(m))
}

func TestUpdateGraphic(t *testing.T) {
	s := newReadySession(t, &fakeStore{})
	s.AddConstructionSiteIcons([]store.MapItem{{ID: "cs", Title: "Old", Map: pointMap(13.4, 52.5)}})

	require.NoError(t, s.UpdateGraphic("cs", "title", "New"))
	require.NoError(t, s.UpdateGraphic("cs", "description", "Desc"))
	assert.ErrorIs(t, s.UpdateGraphic("cs", "color", "red"), ErrUnknownField)

	g := s.Scene.FindByItemID("cs")
	assert.Equal(t, "New", g.Attributes.Title)
	assert.Equal(t, "Desc", g.Attributes.Description)
}

func TestToggleImagePoints(t *testing.T) {
	st := &fakeStore{images: []store.ImageInfo{
		{ID: "i1", Longitude: 13.1, Latitude: 52.1},
		{ID: "i2", Longitude: 13.2, Latitude: 52.2},
	}}
	s := newReadySession(t, st)

	require.NoError(t, s.ToggleImagePoints(context.Background(), "m-1"))
	points := s.Scene.LayerByCategory(scene.CategoryImageLocation)
	require.Len(t, points, 1)
	assert.True(t, points[0].Visible)
	assert.Len(t, points[0].Geometry.(orb.MultiPoint), 2)
	assert.InDelta(t, 13.1, s.Scene.CenterLonLat()[0], 1e-6)
	assert.Equal(t, float64(ImagesZoom), s.Scene.Zoom())

	require.NoError(t, s.ToggleImagePoints(context.Background(), "m-1"))
	assert.False(t, points[0].Visible)
	assert.Equal(t, 1, st.imageCalls)

	s.RemoveImageLocations()
	assert.Empty(t, s.Scene.LayerByCategory(scene.CategoryImageLocation))
}

func TestToggleImagePointsFetchFailure(t *testing.T) {
	st := &fakeStore{imagesErr: errors.New("backend down")}
	s := newReadySession(t, st)

	require.NoError(t, s.ToggleImagePoints(context.Background(), "m-1"))
	assert.Empty(t, s.Scene.LayerByCategory(scene.CategoryImageLocation))
}

func TestAddSinglePoint(t *testing.T) {
	st := &fakeStore{images: []store.ImageInfo{{ID: "i1", Longitude: 13.1, Latitude: 52.1}}}
	s := newReadySession(t, st)

	require.NoError(t, s.AddSinglePoint(context.Background(), "i1", "m-1"))
	var single *scene.Graphic
	for _, g := range s.Scene.LayerByCategory(scene.CategoryImageLocation) {
		if g.Attributes.ItemID == "i1" {
			single = g
		}
	}
	require.NotNil(t, single)
	assert.True(t, single.Visible)
	assert.Equal(t, float64(SingleImageZoom), s.Scene.Zoom())

	require.NoError(t, s.AddSinglePoint(context.Background(), "i1", "m-1"))
	assert.False(t, single.Visible)

	assert.ErrorIs(t, s.AddSinglePoint(context.Background(), "nope", "m-1"), ErrImageNotFound)
}

func TestClearGraphicLayerBeforeInit(t *testing.T) {
	s := NewSession("test", &fakeStore{}, nil, nil)
	assert.ErrorIs(t, s.ClearGraphicLayer(), scene.ErrNotInitialized)

	s.InitMap()
	s.InitView()
	assert.NoError(t, s.ClearGraphicLayer())

	s.ResetMapInit()
	assert.False(t, s.Scene.Initialized())
	assert.False(t, s.Scene.SketchInitialized())
}

func TestClickOnSiteIconNavigates(t *testing.T) {
	st := &fakeStore{items: map[scene.Category][]store.MapItem{
		scene.CategoryConstructionSite: {{ID: "cs-1", Map: pointMap(13.4, 52.5)}},
	}}
	bus := NewEventBus()
	s := NewSession("nav", st, bus, nil)
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	n, err := s.LoadConstructionSites(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, s.Controller.Click(context.Background(), orb.Point{13.4, 52.5}))
	assert.Equal(t, []string{"/home/construction-sites/cs-1"}, s.Router.History())
	require.NotNil(t, s.Controller.Snapshot().SliderIndex)

	var route *Event
	for len(ch) > 0 {
		ev := <-ch
		if ev.Resource == ResourceRoute {
			route = &ev
		}
	}
	require.NotNil(t, route)
	assert.Equal(t, "nav", route.ID)
	assert.Equal(t, "cs-1", route.Route.ID)
}

func TestLoadItemsSkipsEmptyMaps(t *testing.T) {
	st := &fakeStore{jobs: []store.Job{
		{MapItem: store.MapItem{ID: "j-1", Map: pointMap(13.4, 52.5)}, Status: store.JobCreateSucceeded},
		{MapItem: store.MapItem{ID: "j-2", Map: `{}`}},
	}}
	s := newReadySession(t, st)

	n, err := s.LoadItems(context.Background(), scene.CategoryJob, "a-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status, ok := s.Workspace.JobStatus("j-1")
	assert.True(t, ok)
	assert.Equal(t, store.JobCreateSucceeded, status)
}
