package contentkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo-contrib/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/logger"
	"github.com/eringen/contentkit/schema"
)

// newTestApp builds an app with sessions and routes but without the CSRF
// and transport middleware.
func newTestApp(t *testing.T) *App {
	t.Helper()
	a := New(SiteConfig{
		Name:          "Test site",
		URL:           "https://example.com",
		DatabasePath:  filepath.Join(t.TempDir(), "content.db"),
		AdminPassword: "secret",
		SessionSecret: "test-session-secret",
	}, ViewFuncs{},
		WithDefinitions(loadTestDefinitions(t)),
		WithLogger(logger.Nop()),
	)
	require.NoError(t, a.initCore())
	a.Echo.HTTPErrorHandler = a.httpErrorHandler
	a.Echo.Use(session.Middleware(a.newSessionStore()))
	a.setupRoutes()
	t.Cleanup(func() { a.Close() })
	return a
}

func do(a *App, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, a *App) []*http.Cookie {
	t.Helper()
	form := url.Values{"password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAdminRequiresLogin(t *testing.T) {
	a := newTestApp(t)

	rec := do(a, http.MethodGet, "/admin/api/types", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(a, http.MethodGet, "/admin/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)

	form := url.Values{"password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")
}

func TestAdminShell(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	rec := do(a, http.MethodGet, "/admin/", "", cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-type="product"`)
}

func TestAPITypes(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	rec := do(a, http.MethodGet, "/admin/api/types", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	types := decode[[]typeSummary](t, rec)
	require.Len(t, types, 2)
	assert.Equal(t, "page", types[0].ID)
	assert.True(t, types[0].Routed)
	assert.Equal(t, schema.Features{UseTags: true}, types[1].Features)
}

func TestAPIContentLifecycle(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	rec := do(a, http.MethodGet, "/admin/api/content/page/new", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	tree := decode[edit.Tree](t, rec)
	assert.Equal(t, "new", string(tree.State))

	tree.Title = "Contact"
	tree.Region("hero").Items[0].Fields[0].Value = "Say hi"
	body, err := json.Marshal(tree)
	require.NoError(t, err)

	rec = do(a, http.MethodPost, "/admin/api/content", string(body), cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[edit.Tree](t, rec)
	assert.Equal(t, "contact", saved.Slug)
	assert.Equal(t, "Say hi", saved.Region("hero").Items[0].Title)

	rec = do(a, http.MethodGet, "/admin/api/content/page", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]Summary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, tree.ID, list[0].ID)

	rec = do(a, http.MethodGet, "/admin/api/content/page/"+tree.ID+"?draft=1", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unpublished", string(decode[edit.Tree](t, rec).State))

	rec = do(a, http.MethodPost, "/admin/api/content/page/"+tree.ID+"/publish", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "published", string(decode[edit.Tree](t, rec).State))

	rec = do(a, http.MethodGet, "/sitemap.xml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://example.com/contact/</loc>")

	rec = do(a, http.MethodDelete, "/admin/api/content/page/"+tree.ID, "", cookies)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(a, http.MethodGet, "/admin/api/content/page/"+tree.ID, "", cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIValidationErrors(t *testing.T) {
	a := newTestApp(t)
	cookies := login(t, a)

	rec := do(a, http.MethodGet, "/admin/api/content/page/new", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	tree := decode[edit.Tree](t, rec)
	tree.Region("hero").Items = nil
	body, err := json.Marshal(tree)
	require.NoError(t, err)

	rec = do(a, http.MethodPost, "/admin/api/content", string(body), cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decode[apiError](t, rec)
	assert.Equal(t, "missing required item", got.Kind)
	assert.Equal(t, "regions.hero", got.Path)

	rec = do(a, http.MethodPost, "/admin/api/content", `{"type":"removed-type","title":"Old"}`, cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	got = decode[apiError](t, rec)
	assert.Equal(t, "stale schema", got.Kind)
	assert.Equal(t, "type", got.Path)

	rec = do(a, http.MethodGet, "/admin/api/content/gone/new", "", cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown type", decode[apiError](t, rec).Kind)

	rec = do(a, http.MethodGet, "/admin/api/content/gone", "", cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(a, http.MethodPost, "/admin/api/content", "{not json", cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundPage(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")

	rec = do(a, http.MethodGet, "/admin/api/nowhere", "", login(t, a))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode[apiError](t, rec).Error)
}
