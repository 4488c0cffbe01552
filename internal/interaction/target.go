package interaction

import "github.com/joeblew999/plat-sitemap/internal/scene"

// Target is the item a left click navigates to. The set of implementations is
// closed: one per scene.Category.
type Target interface {
	ItemID() string
	Category() scene.Category
	target()
}

// ConstructionSiteTarget opens a construction site and restores the slider
// position stored on its icon.
type ConstructionSiteTarget struct {
	ID    string
	Index *int
}

// AreaTarget opens an area.
type AreaTarget struct{ ID string }

// JobTarget opens a job once it has been created successfully.
type JobTarget struct{ ID string }

// ImageLocationTarget is a clicked image location. It has no detail route.
type ImageLocationTarget struct{ ID string }

// MeasurementTarget is a clicked measurement. It has no detail route.
type MeasurementTarget struct{ ID string }

func (t ConstructionSiteTarget) ItemID() string { return t.ID }
func (t AreaTarget) ItemID() string             { return t.ID }
func (t JobTarget) ItemID() string              { return t.ID }
func (t ImageLocationTarget) ItemID() string    { return t.ID }
func (t MeasurementTarget) ItemID() string      { return t.ID }

func (ConstructionSiteTarget) Category() scene.Category { return scene.CategoryConstructionSite }
func (AreaTarget) Category() scene.Category             { return scene.CategoryArea }
func (JobTarget) Category() scene.Category              { return scene.CategoryJob }
func (ImageLocationTarget) Category() scene.Category    { return scene.CategoryImageLocation }
func (MeasurementTarget) Category() scene.Category      { return scene.CategoryMeasurement }

func (ConstructionSiteTarget) target() {}
func (AreaTarget) target()             {}
func (JobTarget) target()              {}
func (ImageLocationTarget) target()    {}
func (MeasurementTarget) target()      {}

// TargetFor builds the navigation target described by graphic attributes.
// It reports false when the attributes carry no item id or an unknown
// category.
func TargetFor(a scene.Attributes) (Target, bool) {
	if a.ItemID == "" {
		return nil, false
	}
	switch a.Category {
	case scene.CategoryConstructionSite:
		t := ConstructionSiteTarget{ID: a.ItemID}
		if a.Index != nil {
			i := *a.Index
			t.Index = &i
		}
		return t, true
	case scene.CategoryArea:
		return AreaTarget{ID: a.ItemID}, true
	case scene.CategoryJob:
		return JobTarget{ID: a.ItemID}, true
	case scene.CategoryImageLocation:
		return ImageLocationTarget{ID: a.ItemID}, true
	case scene.CategoryMeasurement:
		return MeasurementTarget{ID: a.ItemID}, true
	}
	return nil, false
}
