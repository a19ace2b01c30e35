package contentkit

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap lists the published entities of routed types under their
// slug. Entities without a slug have no public URL and are skipped.
func (a *App) renderSitemap(c echo.Context, list []Summary) error {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, s := range list {
		st, ok := a.Transformer.Schemas().ResolveType(s.Type)
		if !ok || !st.Routed || s.Slug == "" {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, s.Slug),
			LastMod: s.Modified.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	out, err := xml.Marshal(sitemap)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
