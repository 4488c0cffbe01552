package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-sitemap/internal/interaction"
	"github.com/joeblew999/plat-sitemap/internal/scene"
	"github.com/joeblew999/plat-sitemap/internal/service"
	"github.com/joeblew999/plat-sitemap/internal/store"
)

// problem maps service errors to Huma status errors.
func problem(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, service.ErrSketchNotReady),
		errors.Is(err, service.ErrNoGraphic),
		errors.Is(err, service.ErrNoParent),
		errors.Is(err, scene.ErrNotInitialized):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrNoGeometry),
		errors.Is(err, store.ErrUnsupportedCategory):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, store.ErrUnavailable):
		return huma.Error503ServiceUnavailable(err.Error())
	}
	return huma.Error500InternalServerError("internal error", err)
}

func isStale(err error) bool {
	return errors.Is(err, interaction.ErrStale)
}
