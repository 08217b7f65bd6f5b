package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown_Render(t *testing.T) {
	r := NewMarkdown()

	markup, err := r.Render("# Title\n\nsome *emphasis*")
	require.NoError(t, err)
	assert.Contains(t, markup, "<h1")
	assert.Contains(t, markup, "<em>emphasis</em>")
}

func TestMarkdown_SanitizesScripts(t *testing.T) {
	r := NewMarkdown()

	markup, err := r.Render("hello <script>alert(1)</script> world")
	require.NoError(t, err)
	assert.NotContains(t, markup, "<script>")
	assert.Contains(t, markup, "hello")
}
