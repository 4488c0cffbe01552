package symbol

import "log/slog"

// Styles maps every interaction state to a symbol for one shape kind.
type Styles map[State]Symbol

// Table maps symbol kinds to their per-state styles. It is never mutated
// after construction.
type Table struct {
	styles map[Kind]Styles
	log    *slog.Logger
}

// NewTable creates a table from the given styles. A nil logger uses
// slog.Default().
func NewTable(styles map[Kind]Styles, log *slog.Logger) *Table {
	if log == nil {
		log = slog.Default()
	}
	cp := make(map[Kind]Styles, len(styles))
	for k, v := range styles {
		inner := make(Styles, len(v))
		for st, sym := range v {
			inner[st] = sym
		}
		cp[k] = inner
	}
	return &Table{styles: cp, log: log}
}

// DefaultStyles returns the marker and fill styles used on the map.
func DefaultStyles() map[Kind]Styles {
	return map[Kind]Styles{
		KindSimpleMarker: {
			StateSelect:   ColoredMarker,
			StateUnselect: Marker,
			StateHover:    HoverMarker,
		},
		KindSimpleFill: {
			StateSelect:   Polygon,
			StateUnselect: TransparentPolygon,
			StateHover:    HoverPolygon,
		},
	}
}

// Default returns a table built from DefaultStyles.
func Default(log *slog.Logger) *Table {
	return NewTable(DefaultStyles(), log)
}

// Resolve returns the symbol for kind in state. Unknown kinds are logged and
// reported with ok=false so the caller can leave the graphic as it is.
func (t *Table) Resolve(kind Kind, state State) (Symbol, bool) {
	styles, ok := t.styles[kind]
	if !ok {
		t.log.Warn("no symbol styles registered for symbol type", "type", kind, "state", state)
		return Symbol{}, false
	}
	sym, ok := styles[state]
	if !ok {
		t.log.Warn("no symbol registered for state", "type", kind, "state", state)
		return Symbol{}, false
	}
	return sym, true
}

// Kinds returns the symbol kinds the table knows about.
func (t *Table) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t.styles))
	for k := range t.styles {
		kinds = append(kinds, k)
	}
	return kinds
}
