package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-sitemap/internal/humastar"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/service"
	"github.com/joeblew999/plat-sitemap/internal/templates"
)

// EventHandler streams the scene changes of one session to the Datastar UI
// via SSE.
type EventHandler struct {
	humastar.Handler
	sessions *service.Sessions
}

// NewEventHandler creates a new event handler.
func NewEventHandler(sessions *service.Sessions, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/sessions/{id}/events", h.Events,
		huma.OperationTags(humastar.StreamTag),
	)
}

type EventsInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// Events sends the current state first, then forwards every event of the
// session until the client goes away or the session ends.
func (h *EventHandler) Events(ctx context.Context, input *EventsInput) (*huma.StreamResponse, error) {
	s, err := h.sessions.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	bus := h.sessions.Bus()

	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			ch := bus.Subscribe()
			defer bus.Unsubscribe(ch)
			sse := humastar.NewSSE(humaCtx)

			sse.Signals(stateSignals(s))
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					if ev.ID != s.ID {
						continue
					}
					if ev.Resource == service.ResourceSession && ev.Action == service.ActionDeleted {
						sse.Remove("map")
						return
					}
					h.forward(sse, s, ev)
				}
			}
		},
	}, nil
}

func (h *EventHandler) forward(sse humastar.SSE, s *service.Session, ev service.Event) {
	switch ev.Resource {
	case service.ResourceRoute:
		sse.Signals(map[string]any{sigRoute: ev.Route.Path})
		sse.DispatchCustomEvent("map-navigated", map[string]any{
			"path": ev.Route.Path,
			"id":   ev.Route.ID,
		})
		return
	case service.ResourceScene:
	default:
		return
	}

	e := ev.Scene
	switch e.Type {
	case scene.EventPopupOpened, scene.EventPopupMoved:
		h.patchPopup(sse, s)
	case scene.EventPopupClosed:
		sse.Replace(`<div id="popup"></div>`, "#popup")
		sse.Signals(map[string]any{sigPopup: false})
	case scene.EventCamera:
		sse.Signals(cameraSignals(e))
	case scene.EventInit:
		sse.Signals(map[string]any{sigReady: e.Ready})
	default:
		sse.DispatchCustomEvent("map-graphic", map[string]any{
			"type":       e.Type,
			"layer":      e.Layer.String(),
			"uid":        e.UID,
			"symbol":     e.Symbol,
			"state":      e.State,
			"attributes": e.Attributes,
			"visible":    e.Visible,
		})
	}
}

// patchPopup renders the popup for the right-clicked graphic.
func (h *EventHandler) patchPopup(sse humastar.SSE, s *service.Session) {
	g := s.Controller.Snapshot().RightClicked
	if g == nil || h.Renderer == nil {
		return
	}
	html, err := h.Renderer.Render("popup", s.Scene.Snapshot(g).Attributes)
	if err != nil {
		sse.Error(err.Error())
		return
	}
	sse.Patch(html, "#popup")
	sse.Signals(map[string]any{sigPopup: true, "popupat": popupAnchor(s)})
}
