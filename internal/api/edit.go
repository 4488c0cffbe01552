package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/service"
)

// RegisterEditing registers routes that load items into a session and edit
// its graphics layer.
func (h *APIHandler) RegisterEditing(api huma.API) {
	tags := huma.OperationTags("editing")
	huma.Post(api, "/api/v1/sessions/{id}/sites/load", h.LoadSites, tags)
	huma.Post(api, "/api/v1/sessions/{id}/items/load", h.LoadItems, tags)
	huma.Put(api, "/api/v1/sessions/{id}/workspace", h.SelectItems, tags)
	huma.Post(api, "/api/v1/sessions/{id}/workspace/reset", h.ResetWorkspace, tags)
	huma.Put(api, "/api/v1/sessions/{id}/items/{itemId}", h.UpdateItem, tags)
	huma.Post(api, "/api/v1/sessions/{id}/graphic/init", h.InitGraphic, tags)
	huma.Get(api, "/api/v1/sessions/{id}/graphic", h.ExportGraphic, tags)
	huma.Put(api, "/api/v1/sessions/{id}/graphic", h.ImportGraphic, tags)
	huma.Delete(api, "/api/v1/sessions/{id}/graphic", h.ClearGraphic, tags)
	huma.Post(api, "/api/v1/sessions/{id}/graphic/save", h.SaveGraphic, tags)
	huma.Get(api, "/api/v1/sessions/{id}/coordinates", h.GetCoordinates, tags)
	huma.Delete(api, "/api/v1/sessions/{id}/view", h.ClearView, tags)
}

type CountBody struct {
	Count int `json:"count" doc:"Number of graphics drawn"`
}

type CountOutput struct {
	Body CountBody
}

func (h *APIHandler) LoadSites(ctx context.Context, input *SessionInput) (*CountOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	n, err := s.LoadConstructionSites(ctx)
	if err != nil {
		return nil, problem(err)
	}
	return &CountOutput{Body: CountBody{Count: n}}, nil
}

type LoadItemsInput struct {
	SessionInput
	Body struct {
		Category scene.Category `json:"category" enum:"constructionSite,area,job" doc:"Category to load"`
		ParentID string         `json:"parentId,omitempty" doc:"Site of the areas or area of the jobs"`
	}
}

func (h *APIHandler) LoadItems(ctx context.Context, input *LoadItemsInput) (*CountOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	n, err := s.LoadItems(ctx, input.Body.Category, input.Body.ParentID)
	if err != nil {
		return nil, problem(err)
	}
	return &CountOutput{Body: CountBody{Count: n}}, nil
}

type SelectItemsInput struct {
	SessionInput
	Body struct {
		SiteID string `json:"siteId,omitempty" doc:"Loaded construction site to make active"`
		AreaID string `json:"areaId,omitempty" doc:"Loaded area to make active"`
		JobID  string `json:"jobId,omitempty" doc:"Loaded job to make active"`
	}
}

// SelectItems makes loaded items active in the session workspace.
func (h *APIHandler) SelectItems(ctx context.Context, input *SelectItemsInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	b := input.Body
	for _, sel := range []struct {
		id     string
		what   string
		choose func(string) bool
	}{
		{b.SiteID, "construction site", s.Workspace.SelectSite},
		{b.AreaID, "area", s.Workspace.SelectArea},
		{b.JobID, "job", s.Workspace.SelectJob},
	} {
		if sel.id != "" && !sel.choose(sel.id) {
			return nil, huma.Error404NotFound(fmt.Sprintf("%s %q is not loaded", sel.what, sel.id))
		}
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

// ResetWorkspace clears the active site and everything nested below it,
// then refetches the construction sites.
func (h *APIHandler) ResetWorkspace(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Workspace.ClearSiteAndRefetch(ctx); err != nil {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

type UpdateItemInput struct {
	SessionInput
	ItemID string `path:"itemId" doc:"Item drawn by the graphics to update"`
	Body   struct {
		Field string `json:"field" doc:"Attribute to set" example:"title"`
		Value string `json:"value" doc:"New value"`
	}
}

func (h *APIHandler) UpdateItem(ctx context.Context, input *UpdateItemInput) (*struct{ Body MessageBody }, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.UpdateGraphic(input.ItemID, input.Body.Field, input.Body.Value); err != nil {
		return nil, problem(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Item updated"}}, nil
}

type InitGraphicInput struct {
	SessionInput
	Body struct {
		Category scene.Category `json:"category" enum:"constructionSite,area,job" doc:"Kind of item being drawn"`
	}
}

// InitGraphic draws the default graphic for a new item.
func (h *APIHandler) InitGraphic(ctx context.Context, input *InitGraphicInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	switch input.Body.Category {
	case scene.CategoryConstructionSite:
		err = s.InitConstructionSiteGraphic()
	case scene.CategoryArea:
		err = s.InitAreaGraphic()
	case scene.CategoryJob:
		err = s.InitJobGraphic()
	}
	if err != nil {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

type GraphicOutput struct {
	Body map[string]any
}

func (h *APIHandler) ExportGraphic(ctx context.Context, input *SessionInput) (*GraphicOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.GraphicToJSON()
	if err != nil {
		return nil, problem(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, problem(err)
	}
	return &GraphicOutput{Body: doc}, nil
}

type ImportGraphicInput struct {
	SessionInput
	Body struct {
		ItemID   string         `json:"itemId" doc:"Item the graphic belongs to"`
		FileName string         `json:"fileName,omitempty" doc:"Name of the imported KML file"`
		Document map[string]any `json:"document" doc:"Graphic document (geometry, symbol, attributes, spatialReference)"`
	}
}

// ImportGraphic puts a graphic document into the graphics layer for editing.
func (h *APIHandler) ImportGraphic(ctx context.Context, input *ImportGraphicInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(input.Body.Document)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid document", err)
	}
	if err := s.AddToGraphicsLayer(doc, input.Body.ItemID); err != nil {
		if errors.Is(err, service.ErrSketchNotReady) || errors.Is(err, service.ErrNoGeometry) {
			return nil, problem(err)
		}
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	if input.Body.FileName != "" {
		s.SetKMLFileName(input.Body.FileName)
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

func (h *APIHandler) ClearGraphic(ctx context.Context, input *SessionInput) (*struct{ Body MessageBody }, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ClearGraphicLayer(); err != nil {
		return nil, problem(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Graphics layer cleared"}}, nil
}

func (h *APIHandler) ClearView(ctx context.Context, input *SessionInput) (*struct{ Body MessageBody }, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	s.ClearViewGraphics()
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "View cleared"}}, nil
}

type SaveGraphicInput struct {
	SessionInput
	Body struct {
		Category scene.Category `json:"category" enum:"constructionSite,area,job" doc:"Category of the item"`
		ItemID   string         `json:"itemId" doc:"Item to store the map on"`
	}
}

func (h *APIHandler) SaveGraphic(ctx context.Context, input *SaveGraphicInput) (*struct{ Body MessageBody }, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, input.Body.Category, input.Body.ItemID); err != nil {
		return nil, problem(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Map saved"}}, nil
}

type CoordinatesBody struct {
	Longitude float64 `json:"longitude" doc:"Longitude of the edited graphic's center"`
	Latitude  float64 `json:"latitude" doc:"Latitude of the edited graphic's center"`
}

func (h *APIHandler) GetCoordinates(ctx context.Context, input *SessionInput) (*struct{ Body CoordinatesBody }, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	pt, ok := s.Coordinates()
	if !ok {
		return nil, problem(service.ErrNoGraphic)
	}
	return &struct{ Body CoordinatesBody }{Body: CoordinatesBody{Longitude: pt[0], Latitude: pt[1]}}, nil
}
