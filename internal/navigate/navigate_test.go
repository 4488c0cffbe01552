package navigate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "/home/construction-sites/cs1", ConstructionSitePath("cs1"))
	assert.Equal(t, "/home/areas/a1", AreaPath("a1"))
	assert.Equal(t, "/home/jobs/j1", JobPath("j1"))
	assert.Equal(t, "/home", Absolute("home/"))
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		path string
		id   string
	}{
		{"/home/areas/a1", "a1"},
		{"home/jobs/j1", "j1"},
		{"/home/construction-sites/cs1", "cs1"},
		{"/home", ""},
		{"/home/other/x", ""},
		{"/home/areas/a1/edit", ""},
		{"/settings/areas", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.id, ParseParams(tt.path).ID, tt.path)
	}
}

func TestRouterNavigate(t *testing.T) {
	var seen []Params
	r := NewRouter(func(p Params) { seen = append(seen, p) })
	assert.Equal(t, "/home", r.Params().Path)
	assert.Empty(t, r.Params().ID)

	r.Navigate(AreaPath("a1"))
	r.Navigate(JobPath("j1"))

	assert.Equal(t, "j1", r.Params().ID)
	assert.Equal(t, []string{"/home/areas/a1", "/home/jobs/j1"}, r.History())
	assert.Len(t, seen, 2)
	assert.Equal(t, "a1", seen[0].ID)
}
