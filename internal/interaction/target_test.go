package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-sitemap/internal/scene"
)

func TestEveryCategoryHasTarget(t *testing.T) {
	for _, c := range scene.Categories() {
		target, ok := TargetFor(scene.Attributes{Category: c, ItemID: "x"})
		require.True(t, ok, "category %s", c)
		assert.Equal(t, c, target.Category())
		assert.Equal(t, "x", target.ItemID())
	}
}

func TestTargetForRejectsIncompleteAttributes(t *testing.T) {
	_, ok := TargetFor(scene.Attributes{Category: scene.CategoryArea})
	assert.False(t, ok)

	_, ok = TargetFor(scene.Attributes{Category: "tower", ItemID: "x"})
	assert.False(t, ok)
}

func TestConstructionSiteTargetCopiesIndex(t *testing.T) {
	idx := 4
	target, ok := TargetFor(scene.Attributes{Category: scene.CategoryConstructionSite, ItemID: "cs", Index: &idx})
	require.True(t, ok)

	cs := target.(ConstructionSiteTarget)
	require.NotNil(t, cs.Index)
	idx = 7
	assert.Equal(t, 4, *cs.Index)
}
