package views

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentkit/schema"
)

func TestLogin(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Login("Site <1>", true, "tok\"en").Render(context.Background(), &buf))
	html := buf.String()
	assert.Contains(t, html, "<h1>Site &lt;1&gt;</h1>")
	assert.Contains(t, html, "Wrong password.")
	assert.Contains(t, html, `value="tok&#34;en"`)

	buf.Reset()
	require.NoError(t, Login("Site", false, "").Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "Wrong password.")
}

func TestShell(t *testing.T) {
	types := []*schema.Type{
		{ID: "page", Group: "site", Title: "Page"},
		{ID: "product", Group: "shop", Title: "Product"},
	}
	var buf bytes.Buffer
	require.NoError(t, Shell("Site", types, "abc").Render(context.Background(), &buf))
	html := buf.String()
	assert.Contains(t, html, `data-type="page"`)
	assert.Contains(t, html, `data-group="shop">Product</button>`)
	assert.Contains(t, html, `data-csrf="abc"`)
	assert.Contains(t, html, "<strong>content type</strong>")
}

func TestMessagePages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NotFound().Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<h1>Not found</h1>")

	buf.Reset()
	require.NoError(t, ServerError().Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<h1>Server error</h1>")
}
