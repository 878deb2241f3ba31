package folio

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/analytics"
	"github.com/eringen/folio/logger"
)

// apiError is the body of every non-2xx JSON response.
type apiError struct {
	Error string `json:"error"`
}

const (
	errCodeNotFound         = "not_found"
	errCodeStoreUnavailable = "store_unavailable"
	errCodeInvalidRequest   = "invalid_request"
	errCodeRateLimited      = "rate_limited"
	errCodeInternal         = "internal_error"
	errCodeUnauthorized     = "unauthorized"
)

// requestLocale returns the :locale route parameter if it is supported.
func requestLocale(c echo.Context) (Locale, bool) {
	return ParseLocale(c.Param("locale"))
}

// pathLocale guesses the locale of an arbitrary path from its first segment.
func (a *App) pathLocale(path string) Locale {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if l, ok := ParseLocale(first); ok {
		return l
	}
	return a.Config.DefaultLocale
}

func (a *App) handleRoot(c echo.Context) error {
	locale := NegotiateLocale(c.Request().Header.Get("Accept-Language"), a.Config.DefaultLocale)
	return c.Redirect(http.StatusFound, "/"+string(locale)+"/")
}

func (a *App) handleIndex(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(ctx, locale, tag)
	if err != nil {
		return a.renderLookupError(c, locale, err)
	}
	tags, err := a.Cache.ListTags(ctx, locale)
	if err != nil {
		return a.renderLookupError(c, locale, err)
	}
	return Render(c, a.Views.Index(IndexMeta(a.Config, locale), summarizeAll(posts), tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	post, err := a.Posts.ResolvePost(ctx, locale, c.Param("slug"))
	if err != nil {
		return a.renderLookupError(c, locale, err)
	}

	// The post itself resolved; a failing listing only costs the sidebar.
	var related []PostSummary
	if posts, err := a.Cache.ListPosts(ctx, locale, ""); err == nil {
		related = FilterRelatedPosts(post, posts)
	} else {
		logger.Warnw("related posts unavailable", "locale", locale, "slug", post.Slug, "error", err)
	}
	meta := PostMeta(a.Config, post, a.translations(ctx, post.Slug))
	if err := Render(c, a.Views.Post(meta, post, related)); err != nil {
		return err
	}
	a.recordView(c, post)
	return nil
}

// recordView counts a rendered post page. Failures are logged and never
// reach the reader.
func (a *App) recordView(c echo.Context, post RenderedPost) {
	if a.Analytics == nil {
		return
	}
	req := c.Request()
	_, err := a.Analytics.Record(req.Context(), analytics.Hit{
		Locale:     string(post.Locale),
		Slug:       post.Slug,
		IP:         c.RealIP(),
		UserAgent:  req.UserAgent(),
		Referrer:   req.Referer(),
		DoNotTrack: req.Header.Get("DNT") == "1" || req.Header.Get("Sec-GPC") == "1",
	})
	if err != nil {
		logger.Warnw("record post view", "locale", post.Locale, "slug", post.Slug, "error", err)
	}
}

// translations lists every locale that publishes slug, using the listing cache.
func (a *App) translations(ctx context.Context, slug string) []Locale {
	var out []Locale
	for _, l := range SupportedLocales {
		posts, err := a.Cache.ListPosts(ctx, l, "")
		if err != nil {
			continue
		}
		for _, p := range posts {
			if p.Slug == slug {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// renderLookupError maps resolution errors to the 404 and 503 pages.
func (a *App) renderLookupError(c echo.Context, locale Locale, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(locale))
	case errors.Is(err, ErrStoreUnavailable):
		return RenderStatus(c, http.StatusServiceUnavailable, a.Views.Unavailable(locale))
	default:
		return err
	}
}

func (a *App) handleAPIListPosts(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return c.JSON(http.StatusNotFound, apiError{errCodeNotFound})
	}
	posts, err := a.Posts.ListPosts(c.Request().Context(), locale)
	if err != nil {
		return apiLookupError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleAPIGetPost(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return c.JSON(http.StatusNotFound, apiError{errCodeNotFound})
	}
	post, err := a.Posts.ResolvePost(c.Request().Context(), locale, c.Param("slug"))
	if err != nil {
		return apiLookupError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func apiLookupError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, apiError{errCodeNotFound})
	case errors.Is(err, ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, apiError{errCodeStoreUnavailable})
	default:
		return err
	}
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		logger.Warnw("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": errCodeStoreUnavailable})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("\nSitemap: " + a.Config.URL + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	path := c.Request().URL.Path

	if code >= http.StatusInternalServerError {
		logger.Errorw("server error", "method", c.Request().Method, "path", path, "error", err)
	}

	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/admin") {
		body := apiError{errCodeInternal}
		switch {
		case code == http.StatusNotFound:
			body.Error = errCodeNotFound
		case code == http.StatusMethodNotAllowed, code < http.StatusInternalServerError:
			body.Error = errCodeInvalidRequest
		}
		_ = c.JSON(code, body)
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.pathLocale(path)))
	case code >= http.StatusInternalServerError:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
