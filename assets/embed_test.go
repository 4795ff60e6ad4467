package assets

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebContainsClient(t *testing.T) {
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		b, err := fs.ReadFile(Web(), name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, b, name)
	}
}

func TestClientShowsSwatchCountAndLabels(t *testing.T) {
	html, err := fs.ReadFile(Web(), "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), `id="swatch-count"`)

	js, err := fs.ReadFile(Web(), "app.js")
	require.NoError(t, err)
	assert.Contains(t, string(js), `$("swatch-count").textContent = v.swatchCount`)
	assert.Contains(t, string(js), `aria-label`)
}
