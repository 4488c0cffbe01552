// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/geo"
	"github.com/joeblew999/plat-sitemap/internal/humastar"
	"github.com/joeblew999/plat-sitemap/internal/interaction"
	"github.com/joeblew999/plat-sitemap/internal/navigate"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/service"
	"github.com/joeblew999/plat-sitemap/internal/store"
	"github.com/joeblew999/plat-sitemap/internal/workspace"
)

// ItemReader reads stored map items.
type ItemReader interface {
	ListItems(ctx context.Context, c scene.Category, parentID string) ([]store.MapItem, error)
	GetItem(ctx context.Context, c scene.Category, id string) (store.MapItem, error)
}

// Services holds the service dependencies for API handlers.
type Services struct {
	Sessions *service.Sessions
	Items    ItemReader
}

// Types

type SessionInput struct {
	ID string `path:"id" doc:"Session ID" example:"V1StGXR8_Z5jdHi6B-myT"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// GraphicRef identifies a graphic held in an interaction slot.
type GraphicRef struct {
	UID        string           `json:"uid" doc:"Graphic UID"`
	Geometry   string           `json:"geometryType" doc:"GeoJSON geometry type"`
	Attributes scene.Attributes `json:"attributes" doc:"Graphic attributes"`
}

type PopupBody struct {
	Visible  bool      `json:"visible" doc:"Whether the popup is shown"`
	Location []float64 `json:"location,omitempty" doc:"Popup anchor (longitude, latitude)"`
}

// SessionBody is the observable state of one map session.
type SessionBody struct {
	ID           string             `json:"id" doc:"Session ID"`
	Ready        bool               `json:"ready" doc:"Map, view and graphics layer are initialized"`
	Sketch       bool               `json:"sketch" doc:"Sketch tools are initialized"`
	Center       []float64          `json:"center" doc:"View center (longitude, latitude)"`
	Zoom         float64            `json:"zoom" doc:"View zoom level"`
	Route        navigate.Params    `json:"route" doc:"Current client route"`
	Selected     *GraphicRef        `json:"selected,omitempty" doc:"Selected graphic"`
	Hovered      *GraphicRef        `json:"hovered,omitempty" doc:"Hovered graphic"`
	RightClicked *GraphicRef        `json:"rightClicked,omitempty" doc:"Right-clicked graphic"`
	SliderIndex  *int               `json:"sliderIndex,omitempty" doc:"Index of the active construction site"`
	Popup        PopupBody          `json:"popup" doc:"Item popup"`
	Workspace    workspace.Snapshot `json:"workspace" doc:"Loaded items and active selection"`
	KMLFileName  string             `json:"kmlFileName,omitempty" doc:"Name of the imported KML file"`
}

var sessionActions = []humastar.ActionDef{
	{Rel: "events", Pattern: "/api/v1/sessions/%s/events", Method: "GET", Title: "Scene event stream"},
	{Rel: "scene", Pattern: "/api/v1/sessions/%s/scene", Method: "GET", Title: "Scene features"},
	{Rel: "click", Pattern: "/api/v1/sessions/%s/pointer/click", Method: "POST"},
	{Rel: "move", Pattern: "/api/v1/sessions/%s/pointer/move", Method: "POST"},
	{Rel: "context", Pattern: "/api/v1/sessions/%s/pointer/context", Method: "POST"},
	{Rel: "delete", Pattern: "/api/v1/sessions/%s", Method: "DELETE", Title: "End session"},
}

// Actions implements humastar.Actor.
func (b SessionBody) Actions() []humastar.Action {
	actions := humastar.ActionsFor(b.ID, sessionActions...)
	if b.Sketch {
		actions = append(actions, humastar.ActionsFor(b.ID,
			humastar.ActionDef{Rel: "export", Pattern: "/api/v1/sessions/%s/graphic", Method: "GET", Title: "Export graphic"},
			humastar.ActionDef{Rel: "save", Pattern: "/api/v1/sessions/%s/graphic/save", Method: "POST", Title: "Save graphic"},
		)...)
	}
	return actions
}

type SessionOutput struct {
	Body SessionBody
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterSessions registers session lifecycle routes.
func (h *APIHandler) RegisterSessions(api huma.API) {
	huma.Get(api, "/api/v1/sessions", h.ListSessions, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions", h.CreateSession, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{id}", h.GetSession, huma.OperationTags("sessions"))
	huma.Delete(api, "/api/v1/sessions/{id}", h.DeleteSession, huma.OperationTags("sessions"))
	huma.Put(api, "/api/v1/sessions/{id}/init", h.SetInit, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{id}/scene", h.GetScene, huma.OperationTags("sessions"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

type ListSessionsInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Index of the first session"`
	Limit  int `query:"limit" minimum:"0" maximum:"100" default:"20" doc:"Page size, 0 for all"`
}

func (h *APIHandler) ListSessions(ctx context.Context, input *ListSessionsInput) (*struct {
	Body humastar.PageBody[string]
}, error) {
	page := humastar.Paginate(h.svc.Sessions.List(), input.Offset, input.Limit)
	return &struct{ Body humastar.PageBody[string] }{Body: page}, nil
}

func (h *APIHandler) CreateSession(ctx context.Context, input *struct{}) (*SessionOutput, error) {
	s := h.svc.Sessions.Create()
	return &SessionOutput{Body: sessionBody(s)}, nil
}

func (h *APIHandler) GetSession(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

func (h *APIHandler) DeleteSession(ctx context.Context, input *SessionInput) (*struct{ Body MessageBody }, error) {
	if err := h.svc.Sessions.Delete(input.ID); err != nil {
		return nil, problem(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Session deleted"}}, nil
}

type InitInput struct {
	SessionInput
	Body struct {
		Map    bool `json:"map,omitempty" doc:"Map and graphics layer are ready"`
		View   bool `json:"view,omitempty" doc:"View is ready, centers the camera on the default location"`
		Sketch bool `json:"sketch,omitempty" doc:"Sketch tools are ready"`
	}
}

// SetInit records which parts of the client map are ready. Sending all
// false resets the session to not initialized.
func (h *APIHandler) SetInit(ctx context.Context, input *InitInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	b := input.Body
	if !b.Map && !b.View && !b.Sketch {
		s.ResetMapInit()
	}
	if b.Map {
		s.InitMap()
	}
	if b.View {
		s.InitView()
	}
	if b.Sketch {
		s.InitSketch()
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

func (h *APIHandler) session(id string) (*service.Session, error) {
	s, err := h.svc.Sessions.Get(id)
	if err != nil {
		return nil, problem(err)
	}
	return s, nil
}

func sessionBody(s *service.Session) SessionBody {
	state := s.Controller.Snapshot()
	center := s.Scene.CenterLonLat()
	popup := s.Scene.Popup()
	b := SessionBody{
		ID:           s.ID,
		Ready:        s.Scene.Initialized(),
		Sketch:       s.Scene.SketchInitialized(),
		Center:       []float64{center[0], center[1]},
		Zoom:         s.Scene.Zoom(),
		Route:        s.Router.Params(),
		Selected:     graphicRef(s.Scene, state.Selected),
		Hovered:      graphicRef(s.Scene, state.Hovered),
		RightClicked: graphicRef(s.Scene, state.RightClicked),
		SliderIndex:  state.SliderIndex,
		Popup:        PopupBody{Visible: popup.Visible()},
		Workspace:    s.Workspace.Snapshot(),
		KMLFileName:  s.KMLFileName(),
	}
	if b.Popup.Visible {
		at := geo.PointToWGS84(popup.Location())
		b.Popup.Location = []float64{at[0], at[1]}
	}
	return b
}

func graphicRef(sc *scene.Scene, g *scene.Graphic) *GraphicRef {
	if g == nil {
		return nil
	}
	snap := sc.Snapshot(g)
	return &GraphicRef{UID: snap.UID, Geometry: snap.GeometryType(), Attributes: snap.Attributes}
}

// RegisterInteraction registers pointer routes that answer with JSON, for
// clients that do not speak Datastar.
func (h *APIHandler) RegisterInteraction(api huma.API) {
	huma.Post(api, "/api/v1/sessions/{id}/click", h.Click, huma.OperationTags("interaction"))
	huma.Post(api, "/api/v1/sessions/{id}/move", h.Move, huma.OperationTags("interaction"))
	huma.Post(api, "/api/v1/sessions/{id}/context", h.Context, huma.OperationTags("interaction"))
}

type PointerInput struct {
	SessionInput
	Body struct {
		Longitude float64 `json:"lng" minimum:"-180" maximum:"180" doc:"Pointer longitude"`
		Latitude  float64 `json:"lat" minimum:"-90" maximum:"90" doc:"Pointer latitude"`
	}
}

func (h *APIHandler) Click(ctx context.Context, input *PointerInput) (*SessionOutput, error) {
	return h.pointer(ctx, input, (*interaction.Controller).Click)
}

func (h *APIHandler) Move(ctx context.Context, input *PointerInput) (*SessionOutput, error) {
	return h.pointer(ctx, input, (*interaction.Controller).PointerMove)
}

func (h *APIHandler) Context(ctx context.Context, input *PointerInput) (*SessionOutput, error) {
	return h.pointer(ctx, input, (*interaction.Controller).RightClick)
}

// pointer applies one pointer event. A superseded event still answers with
// the current state.
func (h *APIHandler) pointer(ctx context.Context, input *PointerInput,
	apply func(*interaction.Controller, context.Context, orb.Point) error,
) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	at := orb.Point{input.Body.Longitude, input.Body.Latitude}
	if err := apply(s.Controller, ctx, at); err != nil && !isStale(err) {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}
