package folio

import (
	"encoding/xml"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

type sitemapURLSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	XMLNS      string       `xml:"xmlns,attr"`
	XMLNSXhtml string       `xml:"xmlns:xhtml,attr"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string         `xml:"loc"`
	LastMod    string         `xml:"lastmod,omitempty"`
	Alternates []sitemapXLink `xml:"xhtml:link"`
}

type sitemapXLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

func (a *App) handleSitemap(c echo.Context) error {
	byLocale := make([][]Post, len(SupportedLocales))
	g, ctx := errgroup.WithContext(c.Request().Context())
	for i, l := range SupportedLocales {
		i, l := i, l
		g.Go(func() error {
			posts, err := a.Cache.ListPosts(ctx, l, "")
			byLocale[i] = posts
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return c.String(http.StatusServiceUnavailable, "sitemap temporarily unavailable")
		}
		return err
	}
	return a.renderSitemap(c, buildSitemap(a.Config.URL, byLocale))
}

// buildSitemap lists every locale index and every post. Each entry links the
// translations that share its slug. byLocale is indexed like SupportedLocales.
func buildSitemap(base string, byLocale [][]Post) sitemapURLSet {
	var indexAlts []sitemapXLink
	for _, l := range SupportedLocales {
		indexAlts = append(indexAlts, sitemapXLink{Rel: "alternate", Hreflang: string(l), Href: BuildURL(base, string(l))})
	}

	slugLocales := make(map[string][]Locale)
	for i, posts := range byLocale {
		for _, p := range posts {
			slugLocales[p.Slug] = append(slugLocales[p.Slug], SupportedLocales[i])
		}
	}

	var urls []sitemapURL
	for _, l := range SupportedLocales {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, string(l)), Alternates: indexAlts})
	}
	for i, posts := range byLocale {
		for _, p := range posts {
			u := sitemapURL{Loc: postURL(base, SupportedLocales[i], p.Slug)}
			if !p.Date.IsZero() {
				u.LastMod = p.Date.UTC().Format("2006-01-02")
			}
			if locales := slugLocales[p.Slug]; len(locales) > 1 {
				for _, tl := range locales {
					u.Alternates = append(u.Alternates, sitemapXLink{
						Rel:      "alternate",
						Hreflang: string(tl),
						Href:     postURL(base, tl, p.Slug),
					})
				}
			}
			urls = append(urls, u)
		}
	}
	return sitemapURLSet{
		XMLNS:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XMLNSXhtml: "http://www.w3.org/1999/xhtml",
		URLs:       urls,
	}
}

func (a *App) renderSitemap(c echo.Context, sitemap sitemapURLSet) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
