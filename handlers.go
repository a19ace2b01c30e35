package contentkit

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/schema"
	"github.com/eringen/contentkit/transform"
)

// apiError is the JSON body of a failed API call.
type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Path  string `json:"path,omitempty"`
}

// typeSummary lists a content type for the admin navigation.
type typeSummary struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Group    string          `json:"group"`
	Routed   bool            `json:"routed,omitempty"`
	Features schema.Features `json:"features"`
}

func (a *App) handleTypes(c echo.Context) error {
	types := a.Editor.Types()
	out := make([]typeSummary, 0, len(types))
	for _, t := range types {
		out = append(out, typeSummary{ID: t.ID, Title: t.Title, Group: t.Group, Routed: t.Routed, Features: t.Features})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleList(c echo.Context) error {
	typeID := c.Param("type")
	if _, ok := a.Transformer.Schemas().ResolveType(typeID); !ok {
		return c.JSON(http.StatusNotFound, apiError{Error: "unknown content type"})
	}
	list, err := a.Store.ListByType(c.Request().Context(), typeID)
	if err != nil {
		return err
	}
	if list == nil {
		list = []Summary{}
	}
	return c.JSON(http.StatusOK, list)
}

func (a *App) handleNew(c echo.Context) error {
	tree, err := a.Editor.Create(c.Request().Context(), c.Param("type"), actor(c))
	if err != nil {
		return a.apiFailure(c, err)
	}
	return c.JSON(http.StatusOK, tree)
}

func (a *App) handleLoad(c echo.Context) error {
	draft := c.QueryParam("draft") == "1" || c.QueryParam("draft") == "true"
	tree, err := a.Editor.Load(c.Request().Context(), c.Param("type"), c.Param("id"), draft, actor(c))
	if err != nil {
		return a.apiFailure(c, err)
	}
	return c.JSON(http.StatusOK, tree)
}

func (a *App) handleSave(c echo.Context) error {
	var tree edit.Tree
	if err := c.Bind(&tree); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{Error: "invalid edit tree"})
	}
	saved, err := a.Editor.Save(c.Request().Context(), &tree, actor(c))
	if err != nil {
		return a.apiFailure(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (a *App) handleDelete(c echo.Context) error {
	if err := a.Editor.Delete(c.Request().Context(), c.Param("type"), c.Param("id"), actor(c)); err != nil {
		return a.apiFailure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handlePublish(c echo.Context) error {
	return a.setPublished(c, true)
}

func (a *App) handleUnpublish(c echo.Context) error {
	return a.setPublished(c, false)
}

func (a *App) setPublished(c echo.Context, publish bool) error {
	tree, err := a.Editor.SetPublished(c.Request().Context(), c.Param("type"), c.Param("id"), publish, actor(c))
	if err != nil {
		return a.apiFailure(c, err)
	}
	return c.JSON(http.StatusOK, tree)
}

// apiFailure reports engine and storage failures as JSON. Typed transform
// errors are validation failures; anything unexpected goes to the error
// handler as a server error.
func (a *App) apiFailure(c echo.Context, err error) error {
	var te *transform.Error
	switch {
	case errors.As(err, &te):
		return c.JSON(http.StatusBadRequest, apiError{Error: err.Error(), Kind: te.Kind.Error(), Path: te.Path})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, apiError{Error: "not found"})
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, apiError{Error: err.Error()})
	case errors.Is(err, ErrNotRouted):
		return c.JSON(http.StatusBadRequest, apiError{Error: err.Error()})
	}
	return err
}

func (a *App) handleSitemap(c echo.Context) error {
	list, err := a.Store.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, list)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if strings.HasPrefix(c.Request().URL.Path, "/admin/api/") {
		if code >= 500 {
			a.Log.Error("api error", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
			_ = c.JSON(code, apiError{Error: http.StatusText(code)})
			return
		}
		_ = c.JSON(code, apiError{Error: strings.ToLower(http.StatusText(code))})
		return
	}
	if code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	if code >= 500 {
		a.Log.Error("server error", "path", c.Request().URL.Path, "error", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
