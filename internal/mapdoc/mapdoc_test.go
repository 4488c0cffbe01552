package mapdoc

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-sitemap/internal/geo"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/symbol"
)

var berlin = orb.Point{13.379495, 52.517588}

func TestRoundTripPoint(t *testing.T) {
	g := scene.NewGraphic(geo.PointToMercator(berlin), symbol.Marker,
		scene.Attributes{Category: scene.CategoryJob, ItemID: "job-1"})

	data, err := Encode(*g)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, back)

	center := geo.PointToWGS84(geo.Center(back.Geometry))
	assert.InDelta(t, berlin[0], center[0], 1e-6)
	assert.InDelta(t, berlin[1], center[1], 1e-6)
	assert.Equal(t, "job-1", back.Attributes.ItemID)
	assert.Equal(t, scene.CategoryJob, back.Attributes.Category)
	assert.True(t, back.Symbol.Equal(symbol.Marker))
	assert.NotEqual(t, g.UID, back.UID)
}

func TestEncodeWritesWGS84(t *testing.T) {
	g := scene.NewGraphic(geo.PointToMercator(berlin), symbol.Marker, scene.Attributes{})
	data, err := Encode(*g)
	require.NoError(t, err)

	var raw struct {
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		SpatialReference SpatialReference `json:"spatialReference"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Point", raw.Geometry.Type)
	assert.InDelta(t, berlin[0], raw.Geometry.Coordinates[0], 1e-9)
	assert.InDelta(t, berlin[1], raw.Geometry.Coordinates[1], 1e-9)
	assert.Equal(t, WKIDWGS84, raw.SpatialReference.WKID)
}

func TestParseEnvelope(t *testing.T) {
	poly := orb.Polygon{{{13.37, 52.51}, {13.38, 52.51}, {13.38, 52.52}, {13.37, 52.52}, {13.37, 52.51}}}
	g := scene.NewGraphic(geo.ToMercator(poly), symbol.Polygon, scene.Attributes{Title: "Site"})

	data, err := EncodeEnvelope(*g, orb.Point{13.375, 52.515}, 17)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.Equal(t, "Polygon", back.GeometryType())
	assert.Equal(t, "Site", back.Attributes.Title)

	pos, err := Coordinates(data)
	require.NoError(t, err)
	assert.InDelta(t, 13.375, pos[0], 1e-9)
	assert.InDelta(t, 52.515, pos[1], 1e-9)
}

func TestParseWithoutGeometry(t *testing.T) {
	for _, m := range []string{
		`{}`,
		`{"attributes": {"title": "x"}}`,
		`{"graphic": {"symbol": {"type": "simple-fill"}}, "zoom": 3}`,
		`{"geometry": null}`,
	} {
		g, err := ParseString(m)
		assert.NoError(t, err, m)
		assert.Nil(t, g, m)

		pos, err := Coordinates([]byte(m))
		assert.NoError(t, err, m)
		assert.Nil(t, pos, m)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := ParseString(`{"geometry": `)
	assert.Error(t, err)
}

func TestParseKeepsProjectedCoordinates(t *testing.T) {
	m := `{"geometry": {"type": "Point", "coordinates": [1489378.5, 6894699.5]}}`
	g, err := ParseString(m)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1489378.5, 6894699.5}, g.Geometry)
	assert.True(t, g.Symbol.Equal(symbol.Marker))
}

func TestParseMercatorSpatialReference(t *testing.T) {
	m := `{"geometry": {"type": "Point", "coordinates": [10, 20]}, "spatialReference": {"wkid": 102100}}`
	g, err := ParseString(m)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{10, 20}, g.Geometry)
}

func TestHasMap(t *testing.T) {
	assert.True(t, HasMap(`{"geometry": null}`))
	assert.False(t, HasMap(`{}`))
	assert.False(t, HasMap(``))
	assert.False(t, HasMap(`not json`))
}
