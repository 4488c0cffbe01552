package scene

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/symbol"
)

// Category tags a graphic with the kind of item it represents.
type Category string

const (
	CategoryArea             Category = "area"
	CategoryJob              Category = "job"
	CategoryConstructionSite Category = "constructionSite"
	CategoryImageLocation    Category = "imageLocation"
	CategoryMeasurement      Category = "measurement"
)

// Categories returns every category.
func Categories() []Category {
	return []Category{
		CategoryArea,
		CategoryJob,
		CategoryConstructionSite,
		CategoryImageLocation,
		CategoryMeasurement,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Attributes is the attribute bag carried by a graphic.
type Attributes struct {
	Category    Category `json:"id,omitempty" doc:"Graphic category"`
	ItemID      string   `json:"itemId,omitempty" doc:"Identifier of the item this graphic draws"`
	Title       string   `json:"title,omitempty" doc:"Item title"`
	Description string   `json:"description,omitempty" doc:"Item description"`
	CreatedBy   string   `json:"createdBy,omitempty" doc:"Item author"`
	Index       *int     `json:"index,omitempty" doc:"Position of a construction site in the site list"`
}

// Merge returns a copy of a with every non-empty field of o applied on top.
func (a Attributes) Merge(o Attributes) Attributes {
	if o.Category != "" {
		a.Category = o.Category
	}
	if o.ItemID != "" {
		a.ItemID = o.ItemID
	}
	if o.Title != "" {
		a.Title = o.Title
	}
	if o.Description != "" {
		a.Description = o.Description
	}
	if o.CreatedBy != "" {
		a.CreatedBy = o.CreatedBy
	}
	if o.Index != nil {
		i := *o.Index
		a.Index = &i
	}
	return a
}

// Identified reports whether the attributes name both an item and a category.
func (a Attributes) Identified() bool {
	return a.ItemID != "" && a.Category != ""
}

// Graphic is a single renderable map entity. Geometry is in Web Mercator.
// Fields are mutated only through the owning Scene.
type Graphic struct {
	UID        string
	Geometry   orb.Geometry
	Symbol     symbol.Symbol
	Attributes Attributes
	Visible    bool
}

// NewGraphic creates a visible graphic with a fresh UID.
func NewGraphic(geom orb.Geometry, sym symbol.Symbol, attrs Attributes) *Graphic {
	return &Graphic{
		UID:        gonanoid.Must(),
		Geometry:   geom,
		Symbol:     sym,
		Attributes: attrs,
		Visible:    true,
	}
}

// GeometryType returns the GeoJSON type of the geometry, e.g. "Point".
func (g *Graphic) GeometryType() string {
	if g.Geometry == nil {
		return ""
	}
	return g.Geometry.GeoJSONType()
}

// IsPoint reports whether the graphic is drawn as a single point.
func (g *Graphic) IsPoint() bool {
	_, ok := g.Geometry.(orb.Point)
	return ok
}
