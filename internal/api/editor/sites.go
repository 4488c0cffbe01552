package editor

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-sitemap/internal/humastar"
	"github.com/joeblew999/plat-sitemap/internal/service"
	"github.com/joeblew999/plat-sitemap/internal/templates"
)

// SiteHandler loads the construction sites of a session and renders them
// into the page's site list.
type SiteHandler struct {
	humastar.Handler
	sessions *service.Sessions
}

// NewSiteHandler creates a new site list handler.
func NewSiteHandler(sessions *service.Sessions, renderer *templates.Renderer) *SiteHandler {
	return &SiteHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
	}
}

func (h *SiteHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/sessions/{id}/sites/stream", h.LoadSites,
		huma.OperationTags(humastar.StreamTag),
	)
}

type SitesInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// LoadSites draws the site icons and patches the site list. A failing item
// store is reported through the error signal.
func (h *SiteHandler) LoadSites(ctx context.Context, input *SitesInput) (*huma.StreamResponse, error) {
	s, err := h.sessions.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}

	n, err := s.LoadConstructionSites(ctx)
	return h.Stream(func(sse humastar.SSE) {
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sites := s.Workspace.Snapshot().Sites
		items := make([]any, len(sites))
		for i, site := range sites {
			items[i] = site
		}
		sse.Patch(h.RenderList("item-card", items, "No construction sites", "Create a site to see it on the map."), "#site-list")
		sse.Success(fmt.Sprintf("%d of %d construction sites on the map", n, len(sites)))
	}), nil
}
