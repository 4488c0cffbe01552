package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/store"
)

// RegisterItems registers read-only routes over the stored map items.
func (h *APIHandler) RegisterItems(api huma.API) {
	huma.Get(api, "/api/v1/items/{category}", h.ListItems, huma.OperationTags("items"))
	huma.Get(api, "/api/v1/items/{category}/{itemId}", h.GetItem, huma.OperationTags("items"))
}

type CategoryInput struct {
	Category scene.Category `path:"category" enum:"constructionSite,area,job" doc:"Item category"`
}

type ListItemsInput struct {
	CategoryInput
	ParentID string `query:"parent" doc:"Only items of this construction site (areas) or area (jobs)"`
}

func (h *APIHandler) ListItems(ctx context.Context, input *ListItemsInput) (*struct{ Body []store.MapItem }, error) {
	items, err := h.svc.Items.ListItems(ctx, input.Category, input.ParentID)
	if err != nil {
		return nil, problem(err)
	}
	return &struct{ Body []store.MapItem }{Body: items}, nil
}

type GetItemInput struct {
	CategoryInput
	ItemID string `path:"itemId" doc:"Item ID"`
}

func (h *APIHandler) GetItem(ctx context.Context, input *GetItemInput) (*struct{ Body store.MapItem }, error) {
	item, err := h.svc.Items.GetItem(ctx, input.Category, input.ItemID)
	if err != nil {
		return nil, problem(err)
	}
	return &struct{ Body store.MapItem }{Body: item}, nil
}
