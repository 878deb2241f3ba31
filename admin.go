package folio

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/markdown"
)

// adminPostRequest is the body of POST /admin/posts/. An empty slug is
// derived from the title; an empty date means today.
type adminPostRequest struct {
	Locale        string   `json:"locale" form:"locale" validate:"required,oneof=en ru"`
	Slug          string   `json:"slug" form:"slug" validate:"omitempty,slug"`
	Title         string   `json:"title" form:"title" validate:"required,max=300"`
	Excerpt       string   `json:"excerpt" form:"excerpt" validate:"max=1000"`
	Content       string   `json:"content" form:"content"`
	CoverImage    string   `json:"coverImage" form:"cover_image" validate:"omitempty,max=2048"`
	Date          string   `json:"date" form:"date" validate:"omitempty,datetime=2006-01-02"`
	Tags          []string `json:"tags" form:"tags"`
	AuthorName    string   `json:"authorName" form:"author_name" validate:"max=200"`
	AuthorPicture string   `json:"authorPicture" form:"author_picture" validate:"omitempty,max=2048"`
	Published     bool     `json:"published" form:"published"`
}

type adminLoginRequest struct {
	Password string `json:"password" form:"password"`
}

type adminState struct {
	Authenticated bool   `json:"authenticated"`
	CSRFToken     string `json:"csrfToken"`
}

func (a *App) setupAdminRoutes() {
	g := a.Echo.Group("/admin", a.adminMiddleware()...)
	g.GET("/", a.handleAdmin)
	g.POST("/login/", a.handleAdminLogin)
	g.POST("/logout/", handleAdminLogout)

	posts := g.Group("/posts", requireAdmin)
	posts.GET("/", a.handleAdminList)
	posts.POST("/", a.handleAdminSave)
	posts.GET("/:locale/:slug/", a.handleAdminGet)
	posts.DELETE("/:locale/:slug/", a.handleAdminDelete)

	if a.Analytics != nil {
		g.GET("/analytics/", a.handleAdminAnalytics, requireAdmin)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.JSON(http.StatusUnauthorized, apiError{errCodeUnauthorized})
		}
		return next(c)
	}
}

func (a *App) handleAdmin(c echo.Context) error {
	return c.JSON(http.StatusOK, adminState{Authenticated: IsAdmin(c), CSRFToken: CsrfToken(c)})
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, apiError{errCodeRateLimited})
	}
	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{errCodeInvalidRequest})
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		logger.Warnw("admin login failed", "ip", ip)
		return c.JSON(http.StatusUnauthorized, apiError{errCodeUnauthorized})
	}
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminState{Authenticated: true, CSRFToken: CsrfToken(c)})
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleAdminList(c echo.Context) error {
	posts, err := a.Store.ListAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

// handleAdminAnalytics reports view counts for ?period=today|week|month|year.
func (a *App) handleAdminAnalytics(c echo.Context) error {
	report, err := a.Analytics.Report(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// handleAdminGet returns one post, drafts included, for editing.
func (a *App) handleAdminGet(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return c.JSON(http.StatusNotFound, apiError{errCodeNotFound})
	}
	post, err := a.Store.GetPostAny(c.Request().Context(), locale, c.Param("slug"))
	if err != nil {
		return err
	}
	if post == nil {
		return c.JSON(http.StatusNotFound, apiError{errCodeNotFound})
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAdminSave(c echo.Context) error {
	var req adminPostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{errCodeInvalidRequest})
	}
	post, err := a.postFromRequest(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":  errCodeInvalidRequest,
			"detail": err.Error(),
		})
	}
	if err := a.Store.SavePost(c.Request().Context(), post); err != nil {
		if errors.Is(err, ErrInvalidSlug) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":  errCodeInvalidRequest,
				"detail": err.Error(),
			})
		}
		return err
	}
	a.Cache.Invalidate()
	logger.Infow("post saved", "locale", post.Locale, "slug", post.Slug, "published", post.Published)
	return c.JSON(http.StatusOK, post)
}

// postFromRequest validates req and converts it to a Post.
func (a *App) postFromRequest(req adminPostRequest) (Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	req.CoverImage = strings.TrimSpace(req.CoverImage)
	req.AuthorPicture = strings.TrimSpace(req.AuthorPicture)
	if err := a.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if verrs[0].Tag() == "slug" {
				return Post{}, errors.New("slug: use lowercase latin letters, digits and single hyphens")
			}
			return Post{}, errors.New(strings.ToLower(verrs[0].Field()) + ": failed " + verrs[0].Tag())
		}
		return Post{}, err
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		return Post{}, errors.New("slug: cannot be derived from the title; set one explicitly")
	}
	for _, u := range []string{req.CoverImage, req.AuthorPicture} {
		if u != "" && markdown.SafeURL(u) == "" {
			return Post{}, errors.New("unsupported URL " + u)
		}
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return Post{}, err
		}
		date = d
	}

	tags := req.Tags
	if len(tags) == 1 && strings.Contains(tags[0], ",") {
		tags = strings.Split(tags[0], ",")
	}
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}

	return Post{
		Slug:       slug,
		Locale:     Locale(req.Locale),
		Title:      req.Title,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Author:     Author{Name: strings.TrimSpace(req.AuthorName), Picture: req.AuthorPicture},
		Date:       date,
		Tags:       FilterEmpty(tags),
		Published:  req.Published,
	}, nil
}

func (a *App) handleAdminDelete(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return c.JSON(http.StatusNotFound, apiError{errCodeNotFound})
	}
	slug := c.Param("slug")
	if err := a.Store.DeletePost(c.Request().Context(), locale, slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	logger.Infow("post deleted", "locale", locale, "slug", slug)
	return c.NoContent(http.StatusNoContent)
}
