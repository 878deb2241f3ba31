// Package folio is a multilingual portfolio and blog engine built with Go,
// Echo and templ. It resolves posts per locale, renders their Markdown,
// derives a cover pattern per slug, and serves pages, a JSON API, feeds,
// sitemaps and contact forms, and optionally counts post views.
//
// Users provide their own templ components via the ViewFuncs struct; the
// views package ships a default set.
package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/folio/analytics"
	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/notify"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Index       func(meta PageMeta, posts []PostSummary, activeTag string, tags []string) templ.Component
	Post        func(meta PageMeta, post RenderedPost, related []PostSummary) templ.Component
	NotFound    func(locale Locale) templ.Component
	Unavailable func(locale Locale) templ.Component
	ServerError func() templ.Component
}

// App is the central folio application. It wires together the store,
// services, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ListCache
	Posts  *PostService
	Views  ViewFuncs

	// Analytics is nil unless analytics.enabled is set.
	Analytics *analytics.Tracker

	content      ContentStore
	notifier     notify.Sender
	dispatcher   *notify.Dispatcher
	loginLimiter *RateLimiter
	formLimiter  *RateLimiter
	validate     *validator.Validate
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new folio App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
		validate:  newValidator(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// newValidator returns the request validator with the "slug" tag registered.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// RegisterValidation only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
	return v
}

// Setup opens the store and builds services, middleware and routes without
// starting the listener.
func (a *App) Setup() error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	if a.content == nil {
		a.content = store
	}

	var renderer *markdown.Renderer
	if a.Config.SanitizeMarkdown {
		renderer = markdown.New(markdown.WithSanitizer())
	} else {
		renderer = markdown.New()
	}
	a.Posts = NewPostService(a.content, renderer)
	a.Cache = NewListCache(store, a.Config.ListCacheTTL)

	if a.notifier == nil {
		if a.Config.Telegram.Enabled() {
			tg := a.Config.Telegram
			a.notifier = notify.NewTelegram(tg.APIBase, tg.BotToken, tg.ChatID, tg.Timeout)
		} else {
			a.notifier = notify.LogSender{}
		}
	}
	a.dispatcher = notify.NewDispatcher(a.notifier, a.Config.Telegram.QueueSize, a.Config.Telegram.Timeout)

	if a.Config.Analytics.Enabled {
		if err := a.setupAnalytics(); err != nil {
			return err
		}
	}

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.formLimiter = NewRateLimiter(a.Config.ContactRateLimit, a.Config.ContactRateWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start runs Setup and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	logger.Infow("folio listening", "addr", a.Config.Addr, "url", a.Config.URL,
		"admin", a.adminEnabled(), "telegram", a.Config.Telegram.Enabled())
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully, then releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupAnalytics() error {
	store, err := analytics.NewStore(a.Config.Analytics.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init analytics: %w", err)
	}
	var host string
	if u, err := url.Parse(a.Config.URL); err == nil {
		host = u.Hostname()
	}
	retention := time.Duration(a.Config.Analytics.RetentionDays) * 24 * time.Hour
	tracker, err := analytics.NewTracker(context.Background(), store, host, retention)
	if err != nil {
		store.Close()
		return fmt.Errorf("folio: init analytics: %w", err)
	}
	a.Analytics = tracker
	return nil
}

func (a *App) adminEnabled() bool {
	return a.Config.AdminPassword != ""
}

func (a *App) setupRoutes() {
	e := a.Echo

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", a.handleHealth)

	// Public pages
	e.GET("/", a.handleRoot)
	e.GET("/:locale/", a.handleIndex)
	e.GET("/:locale/feed.xml", a.handleFeed)
	e.GET("/:locale/blog/:slug/", a.handlePost)
	e.GET("/:locale/blog/:slug/og.png", a.handlePreviewImage)

	// JSON API
	api := e.Group("/api")
	api.GET("/:locale/posts/", a.handleAPIListPosts)
	api.GET("/:locale/posts/:slug", a.handleAPIGetPost)
	api.POST("/contact/", a.handleContact)
	api.POST("/feedback/", a.handleFeedback)

	if a.adminEnabled() {
		a.setupAdminRoutes()
	}
}

// Close cleans up resources. Queued notifications are delivered first.
func (a *App) Close() error {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.formLimiter != nil {
		a.formLimiter.Stop()
	}
	if a.Analytics != nil {
		if err := a.Analytics.Close(); err != nil {
			logger.Warnw("close analytics", "error", err)
		}
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
