package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRendersPopup(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	html, err := r.Render("popup", map[string]any{
		"Category":    "area",
		"Title":       "North <wing>",
		"Description": "Phase 2",
		"CreatedBy":   "",
	})
	require.NoError(t, err)
	assert.Contains(t, html, `data-category="area"`)
	assert.Contains(t, html, "North &lt;wing&gt;")
	assert.Contains(t, html, "Phase 2")
	assert.NotContains(t, html, "Created by")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	_, err = r.Render("nope", nil)
	assert.Error(t, err)
	assert.Panics(t, func() { r.MustRender("nope", nil) })
}

func TestReloadFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "fragments"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "fragments", "popup.html"),
		[]byte(`{{define "popup"}}reloaded {{.}}{{end}}`),
		0o644,
	))

	r, err := Default()
	require.NoError(t, err)
	require.NoError(t, r.Reload(dir))

	assert.Equal(t, "reloaded x", r.MustRender("popup", "x"))
	assert.Error(t, r.Reload(t.TempDir()))
}
