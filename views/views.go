// Package views provides the default page components for a folio site.
// Templates are plain html/template files embedded in the binary and exposed
// as templ components, so sites can replace any of them with their own templ
// code through folio.ViewFuncs.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/cover"
)

//go:embed templates/*.html
var files embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"formatDate": folio.FormatDate,
	"coverStyle": coverStyle,
	"t":          translate,
	"locales":    func() []folio.Locale { return folio.SupportedLocales },
}).ParseFS(files, "templates/*.html"))

// page is the data every template receives.
type page struct {
	Site      folio.SiteConfig
	Meta      folio.PageMeta
	Locale    folio.Locale
	JSONLD    template.JS
	Posts     []folio.PostSummary
	Tags      []string
	ActiveTag string
	Post      folio.RenderedPost
	Content   template.HTML
	Related   []folio.PostSummary
}

// New returns the default ViewFuncs for site.
func New(site folio.SiteConfig) folio.ViewFuncs {
	return folio.ViewFuncs{
		Index: func(meta folio.PageMeta, posts []folio.PostSummary, activeTag string, tags []string) templ.Component {
			return component("index", page{
				Site:      site,
				Meta:      meta,
				Locale:    meta.Locale,
				JSONLD:    template.JS(folio.WebsiteJsonLD(site, meta.Locale)),
				Posts:     posts,
				Tags:      tags,
				ActiveTag: activeTag,
			})
		},
		Post: func(meta folio.PageMeta, post folio.RenderedPost, related []folio.PostSummary) templ.Component {
			return component("post", page{
				Site:    site,
				Meta:    meta,
				Locale:  post.Locale,
				JSONLD:  template.JS(folio.BlogPostingJsonLD(site, post)),
				Post:    post,
				Content: template.HTML(post.Content), // rendered server-side from trusted authors
				Related: related,
			})
		},
		NotFound: func(locale folio.Locale) templ.Component {
			return component("notfound", statusPage(site, locale, "notFound"))
		},
		Unavailable: func(locale folio.Locale) templ.Component {
			return component("unavailable", statusPage(site, locale, "unavailable"))
		},
		ServerError: func() templ.Component {
			return component("servererror", statusPage(site, site.DefaultLocale, "serverError"))
		},
	}
}

func statusPage(site folio.SiteConfig, locale folio.Locale, titleKey string) page {
	if !locale.Valid() {
		locale = site.DefaultLocale
	}
	return page{
		Site:   site,
		Locale: locale,
		Meta: folio.PageMeta{
			Title:  translate(locale, titleKey) + " · " + site.Name,
			Locale: locale,
		},
	}
}

func component(name string, data page) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

// coverStyle returns the inline CSS that paints a cover pattern.
func coverStyle(p cover.Pattern) template.CSS {
	return template.CSS("background: " + p.Overlay + ", " + p.Background + ";")
}
