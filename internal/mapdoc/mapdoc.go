// Package mapdoc encodes graphics to and from the JSON stored in the "map"
// field of construction sites, areas and jobs.
//
// A stored map is either a graphic document
//
//	{"geometry": {...GeoJSON...}, "symbol": {...}, "attributes": {...}, "spatialReference": {"wkid": 4326}}
//
// or an envelope around one:
//
//	{"graphic": {...}, "coordinates": [lon, lat], "zoom": 17}
//
// Stored geometry is WGS84. Decoded graphics are Web Mercator.
package mapdoc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-sitemap/internal/geo"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/symbol"
)

// Well-known spatial reference IDs.
const (
	WKIDWGS84        = 4326
	WKIDWebMercator  = 3857
	wkidEsriMercator = 102100
)

// SpatialReference names the coordinate system of a document.
type SpatialReference struct {
	WKID int `json:"wkid"`
}

// Document is the stored form of one graphic.
type Document struct {
	Geometry         *geojson.Geometry `json:"geometry"`
	Symbol           *symbol.Symbol    `json:"symbol,omitempty"`
	Attributes       *scene.Attributes `json:"attributes,omitempty"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// Envelope wraps a document with the camera position it was saved at.
type Envelope struct {
	Graphic     json.RawMessage `json:"graphic"`
	Coordinates geo.Position    `json:"coordinates,omitempty"`
	Zoom        *float64        `json:"zoom,omitempty"`
}

// Encode serializes g, projecting its geometry to WGS84.
func Encode(g scene.Graphic) ([]byte, error) {
	if g.Geometry == nil {
		return nil, fmt.Errorf("encoding graphic %s: no geometry", g.UID)
	}
	sym := g.Symbol
	attrs := g.Attributes
	doc := Document{
		Geometry:         geojson.NewGeometry(geo.ToWGS84(g.Geometry)),
		Symbol:           &sym,
		Attributes:       &attrs,
		SpatialReference: &SpatialReference{WKID: WKIDWGS84},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding graphic %s: %w", g.UID, err)
	}
	return data, nil
}

// EncodeEnvelope serializes g inside an envelope carrying a camera position.
func EncodeEnvelope(g scene.Graphic, coordinates orb.Point, zoom float64) ([]byte, error) {
	doc, err := Encode(g)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Graphic:     doc,
		Coordinates: geo.Position{coordinates[0], coordinates[1]},
		Zoom:        &zoom,
	})
}

// Parse decodes a stored map into a Web Mercator graphic. It returns a nil
// graphic and no error when the map holds no geometry yet.
func Parse(data []byte) (*scene.Graphic, error) {
	doc, err := document(data)
	if err != nil || doc == nil {
		return nil, err
	}

	geom := doc.Geometry.Geometry()
	if doc.SpatialReference != nil && isMercatorWKID(doc.SpatialReference.WKID) {
		geom = orb.Clone(geom)
	} else {
		geom = geo.EnsureMercator(geom)
	}

	var sym symbol.Symbol
	if doc.Symbol != nil {
		sym = *doc.Symbol
	} else {
		sym = defaultSymbol(geom)
	}
	var attrs scene.Attributes
	if doc.Attributes != nil {
		attrs = *doc.Attributes
	}
	return scene.NewGraphic(geom, sym, attrs), nil
}

// ParseString is Parse for string-typed map fields.
func ParseString(m string) (*scene.Graphic, error) {
	return Parse([]byte(m))
}

// Coordinates returns the center of the stored geometry without projecting
// it: the point itself for points, the bounding box center otherwise. It
// returns nil when the map holds no geometry.
func Coordinates(data []byte) (geo.Position, error) {
	doc, err := document(data)
	if err != nil || doc == nil {
		return nil, err
	}
	c := geo.Center(doc.Geometry.Geometry())
	return geo.Position{c[0], c[1]}, nil
}

// HasMap reports whether m is a JSON object with at least one key.
func HasMap(m string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(m), &obj); err != nil {
		return false
	}
	return len(obj) > 0
}

// document unwraps an envelope if present and decodes the graphic document.
// A nil document means there is no geometry.
func document(data []byte) (*Document, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parsing map: %w", err)
	}
	if inner, ok := obj["graphic"]; ok && !isNull(inner) {
		obj = nil
		if err := json.Unmarshal(inner, &obj); err != nil {
			return nil, fmt.Errorf("parsing map graphic: %w", err)
		}
	}
	raw, ok := obj["geometry"]
	if !ok || isNull(raw) {
		return nil, nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc.Geometry); err != nil {
		return nil, fmt.Errorf("parsing map geometry: %w", err)
	}
	if doc.Geometry == nil || doc.Geometry.Geometry() == nil {
		return nil, nil
	}
	if s, ok := obj["symbol"]; ok && !isNull(s) {
		doc.Symbol = new(symbol.Symbol)
		if err := json.Unmarshal(s, doc.Symbol); err != nil {
			return nil, fmt.Errorf("parsing map symbol: %w", err)
		}
	}
	if a, ok := obj["attributes"]; ok && !isNull(a) {
		doc.Attributes = new(scene.Attributes)
		if err := json.Unmarshal(a, doc.Attributes); err != nil {
			return nil, fmt.Errorf("parsing map attributes: %w", err)
		}
	}
	if sr, ok := obj["spatialReference"]; ok && !isNull(sr) {
		doc.SpatialReference = new(SpatialReference)
		if err := json.Unmarshal(sr, doc.SpatialReference); err != nil {
			return nil, fmt.Errorf("parsing map spatial reference: %w", err)
		}
	}
	return &doc, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isMercatorWKID(wkid int) bool {
	return wkid == WKIDWebMercator || wkid == wkidEsriMercator
}

func defaultSymbol(g orb.Geometry) symbol.Symbol {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return symbol.Marker
	default:
		return symbol.TransparentPolygon
	}
}
