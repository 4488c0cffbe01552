package editor

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-sitemap/internal/humastar"
	"github.com/joeblew999/plat-sitemap/internal/interaction"
	"github.com/joeblew999/plat-sitemap/internal/service"
	"github.com/joeblew999/plat-sitemap/internal/templates"
)

// PointerHandler applies map pointer events sent as Datastar signals and
// answers with the resulting interaction state.
type PointerHandler struct {
	humastar.Handler
	sessions *service.Sessions
}

// NewPointerHandler creates a new pointer handler.
func NewPointerHandler(sessions *service.Sessions, renderer *templates.Renderer) *PointerHandler {
	return &PointerHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
	}
}

func (h *PointerHandler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags(humastar.StreamTag)
	huma.Post(api, "/api/v1/sessions/{id}/pointer/click", h.Click, tags)
	huma.Post(api, "/api/v1/sessions/{id}/pointer/move", h.Move, tags)
	huma.Post(api, "/api/v1/sessions/{id}/pointer/context", h.Context, tags)
}

// PointerInput carries the session and the Datastar signals, which hold
// the pointer position in "lng" and "lat".
type PointerInput struct {
	ID      string `path:"id" doc:"Session ID"`
	RawBody []byte
}

func (h *PointerHandler) Click(ctx context.Context, input *PointerInput) (*huma.StreamResponse, error) {
	return h.apply(ctx, input, (*interaction.Controller).Click)
}

func (h *PointerHandler) Move(ctx context.Context, input *PointerInput) (*huma.StreamResponse, error) {
	return h.apply(ctx, input, (*interaction.Controller).PointerMove)
}

func (h *PointerHandler) Context(ctx context.Context, input *PointerInput) (*huma.StreamResponse, error) {
	return h.apply(ctx, input, (*interaction.Controller).RightClick)
}

// apply runs the event before streaming so failures keep their status
// code. A superseded event streams nothing.
func (h *PointerHandler) apply(ctx context.Context, input *PointerInput,
	event func(*interaction.Controller, context.Context, orb.Point) error,
) (*huma.StreamResponse, error) {
	s, err := h.sessions.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	signals, err := humastar.ParseSignals(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid request data: " + err.Error())
	}
	at, err := signals.LonLat()
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	err = event(s.Controller, ctx, at)
	if errors.Is(err, interaction.ErrStale) {
		return h.Stream(func(humastar.SSE) {}), nil
	}
	return h.Stream(func(sse humastar.SSE) {
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Signals(stateSignals(s))
	}), nil
}
