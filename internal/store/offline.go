package store

import (
	"context"
	"errors"

	"github.com/joeblew999/plat-sitemap/internal/scene"
)

// ErrUnavailable is returned by Offline for every call.
var ErrUnavailable = errors.New("item database unavailable")

// Offline stands in for the store when the database could not be opened.
type Offline struct{}

func (Offline) ListItems(context.Context, scene.Category, string) ([]MapItem, error) {
	return nil, ErrUnavailable
}

func (Offline) GetItem(context.Context, scene.Category, string) (MapItem, error) {
	return MapItem{}, ErrUnavailable
}

func (Offline) ListJobs(context.Context, string) ([]Job, error) {
	return nil, ErrUnavailable
}

func (Offline) ImagePoints(context.Context, string, string) ([]ImageInfo, error) {
	return nil, ErrUnavailable
}

func (Offline) SaveMap(context.Context, scene.Category, string, string) error {
	return ErrUnavailable
}
