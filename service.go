package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/folio/cover"
	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/metrics"
)

var (
	// ErrNotFound means the requested (locale, slug) has no published post.
	ErrNotFound = errors.New("folio: post not found")
	// ErrStoreUnavailable means the content store could not answer. Callers
	// may retry; the service never does.
	ErrStoreUnavailable = errors.New("folio: content store unavailable")
	// ErrInvalidSlug means a slug is not lowercase ASCII words joined by
	// single hyphens, so it could not be routed.
	ErrInvalidSlug = errors.New("folio: invalid slug")
)

// ContentStore is the read side of post storage. Implementations return a
// nil post or an empty slice, not an error, when nothing matches.
type ContentStore interface {
	GetPostBySlug(ctx context.Context, slug string, locale Locale) (*Post, error)
	GetAllPosts(ctx context.Context, locale Locale) ([]Post, error)
}

// PostService resolves posts for the presentation layer. It keeps no state
// between calls and is safe for concurrent use.
type PostService struct {
	store    ContentStore
	renderer *markdown.Renderer
}

// NewPostService creates a PostService. A nil renderer uses markdown.New().
func NewPostService(store ContentStore, renderer *markdown.Renderer) *PostService {
	if renderer == nil {
		renderer = markdown.New()
	}
	return &PostService{store: store, renderer: renderer}
}

// ResolvePost fetches the post addressed by (locale, slug), renders its body
// and derives its cover pattern. It returns ErrNotFound when no such post
// exists and an error wrapping ErrStoreUnavailable when the store fails.
// Another locale is never substituted.
func (s *PostService) ResolvePost(ctx context.Context, locale Locale, slug string) (RenderedPost, error) {
	if !locale.Valid() || strings.TrimSpace(slug) == "" {
		metrics.PostResolutions.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return RenderedPost{}, ErrNotFound
	}
	post, err := s.store.GetPostBySlug(ctx, slug, locale)
	if err != nil {
		metrics.PostResolutions.WithLabelValues(metrics.OutcomeError).Inc()
		logger.Warnw("resolve post: store query failed", "locale", locale, "slug", slug, "error", err)
		return RenderedPost{}, fmt.Errorf("%w: get %s/%s: %w", ErrStoreUnavailable, locale, slug, err)
	}
	if post == nil || post.Locale != locale || post.Slug != slug {
		metrics.PostResolutions.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return RenderedPost{}, ErrNotFound
	}

	start := time.Now()
	html := s.renderer.Render(post.Content)
	metrics.MarkdownRenderSeconds.Observe(time.Since(start).Seconds())
	metrics.PostResolutions.WithLabelValues(metrics.OutcomeFound).Inc()

	return RenderedPost{
		Slug:         post.Slug,
		Locale:       post.Locale,
		Title:        post.Title,
		Excerpt:      post.Excerpt,
		Content:      html,
		CoverImage:   post.CoverImage,
		CoverPattern: cover.ForSlug(post.Slug),
		Author:       post.Author,
		Date:         post.Date,
		Tags:         post.Tags,
	}, nil
}

// ListPosts returns summaries of every published post of locale, newest
// first. Unsupported locales yield ErrNotFound.
func (s *PostService) ListPosts(ctx context.Context, locale Locale) ([]PostSummary, error) {
	if !locale.Valid() {
		return nil, ErrNotFound
	}
	posts, err := s.store.GetAllPosts(ctx, locale)
	if err != nil {
		logger.Warnw("list posts: store query failed", "locale", locale, "error", err)
		return nil, fmt.Errorf("%w: list %s: %w", ErrStoreUnavailable, locale, err)
	}
	return summarizeAll(posts), nil
}

func summarizeAll(posts []Post) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, Summarize(p))
	}
	return out
}
