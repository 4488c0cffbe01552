// Package symbol resolves the visual style of map graphics from their shape
// kind and interaction state.
package symbol

// Kind is the symbol type of a graphic, e.g. "simple-marker".
type Kind string

const (
	KindSimpleMarker  Kind = "simple-marker"
	KindSimpleFill    Kind = "simple-fill"
	KindSimpleLine    Kind = "simple-line"
	KindPictureMarker Kind = "picture-marker"
)

// State is the interaction state a symbol is drawn for.
type State string

const (
	StateUnselect State = "unselect"
	StateSelect   State = "select"
	StateHover    State = "hover"
)

// Color is an RGB or RGBA color. Alpha is in the range 0-1.
type Color []float64

// Outline is the border of a marker or fill symbol.
type Outline struct {
	Color Color   `json:"color" doc:"Outline color (RGB or RGBA)"`
	Width float64 `json:"width" doc:"Outline width in pixels"`
}

// Symbol describes how a graphic is drawn.
type Symbol struct {
	Kind    Kind     `json:"type" enum:"simple-marker,simple-fill,simple-line,picture-marker" doc:"Symbol type"`
	Color   Color    `json:"color,omitempty" doc:"Fill color (RGB or RGBA)"`
	Outline *Outline `json:"outline,omitempty" doc:"Outline style"`
	Size    float64  `json:"size,omitempty" doc:"Marker size in pixels"`
	URL     string   `json:"url,omitempty" doc:"Picture marker image URL"`
	Width   float64  `json:"width,omitempty" doc:"Picture marker width in pixels"`
	Height  float64  `json:"height,omitempty" doc:"Picture marker height in pixels"`
}

var (
	fillPolygonColor     = Color{0, 0, 0, 0}
	fillPointColor       = Color{255, 255, 255}
	mainBorderColor      = Color{243, 112, 40}
	secondaryBorderColor = Color{243, 112, 40, 0.5}
	hoverBorderColor     = Color{255, 201, 0}
	markerBorderColor    = Color{50, 50, 50}
)

// Predefined symbols.
var (
	Polygon = Symbol{
		Kind:    KindSimpleFill,
		Color:   fillPolygonColor,
		Outline: &Outline{Color: mainBorderColor, Width: 2},
	}

	HoverPolygon = Symbol{
		Kind:    KindSimpleFill,
		Color:   fillPolygonColor,
		Outline: &Outline{Color: hoverBorderColor, Width: 2},
	}

	TransparentPolygon = Symbol{
		Kind:    KindSimpleFill,
		Color:   fillPolygonColor,
		Outline: &Outline{Color: secondaryBorderColor, Width: 2},
	}

	Marker = Symbol{
		Kind:    KindSimpleMarker,
		Color:   fillPointColor,
		Outline: &Outline{Color: markerBorderColor, Width: 1},
		Size:    12,
	}

	ColoredMarker = Symbol{
		Kind:    KindSimpleMarker,
		Color:   fillPointColor,
		Outline: &Outline{Color: mainBorderColor, Width: 1},
		Size:    14,
	}

	HoverMarker = Symbol{
		Kind:    KindSimpleMarker,
		Color:   fillPointColor,
		Outline: &Outline{Color: hoverBorderColor, Width: 1},
		Size:    14,
	}

	ConstructionSiteIcon = Symbol{
		Kind:   KindPictureMarker,
		URL:    "/images/icons/CS.png",
		Width:  24,
		Height: 24,
	}
)

// Equal reports whether two symbols draw the same way.
func (s Symbol) Equal(o Symbol) bool {
	if s.Kind != o.Kind || s.Size != o.Size || s.URL != o.URL ||
		s.Width != o.Width || s.Height != o.Height {
		return false
	}
	if !s.Color.equal(o.Color) {
		return false
	}
	if (s.Outline == nil) != (o.Outline == nil) {
		return false
	}
	if s.Outline == nil {
		return true
	}
	return s.Outline.Width == o.Outline.Width && s.Outline.Color.equal(o.Outline.Color)
}

func (c Color) equal(o Color) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	return true
}
