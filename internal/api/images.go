package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterImages registers routes that show measurement image locations.
func (h *APIHandler) RegisterImages(api huma.API) {
	tags := huma.OperationTags("images")
	huma.Post(api, "/api/v1/sessions/{id}/images/toggle", h.ToggleImages, tags)
	huma.Post(api, "/api/v1/sessions/{id}/images/{imageId}/toggle", h.ToggleImage, tags)
	huma.Delete(api, "/api/v1/sessions/{id}/images", h.RemoveImages, tags)
}

type ToggleImagesInput struct {
	SessionInput
	Body struct {
		MeasurementID string `json:"measurementId" doc:"Measurement whose images to show"`
	}
}

func (h *APIHandler) ToggleImages(ctx context.Context, input *ToggleImagesInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ToggleImagePoints(ctx, input.Body.MeasurementID); err != nil {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

type ToggleImageInput struct {
	SessionInput
	ImageID string `path:"imageId" doc:"Image to show or hide"`
	Body    struct {
		MeasurementID string `json:"measurementId" doc:"Measurement the image belongs to"`
	}
}

func (h *APIHandler) ToggleImage(ctx context.Context, input *ToggleImageInput) (*SessionOutput, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.AddSinglePoint(ctx, input.ImageID, input.Body.MeasurementID); err != nil {
		return nil, problem(err)
	}
	return &SessionOutput{Body: sessionBody(s)}, nil
}

func (h *APIHandler) RemoveImages(ctx context.Context, input *SessionInput) (*struct{ Body MessageBody }, error) {
	s, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	s.RemoveImageLocations()
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Image locations removed"}}, nil
}
