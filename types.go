package folio

import (
	"time"

	"github.com/eringen/folio/cover"
)

// Author is the person credited on a post.
type Author struct {
	ID      string `json:"-"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Post is a stored blog entry. It is addressed by (Locale, Slug).
type Post struct {
	Slug       string    `json:"slug"`
	Locale     Locale    `json:"locale"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"` // raw Markdown
	CoverImage string    `json:"coverImage,omitempty"`
	Author     Author    `json:"author"`
	Date       time.Time `json:"date"`
	Tags       []string  `json:"tags,omitempty"`
	Published  bool      `json:"published"`
}

// Link returns the site-relative URL of the post page.
func (p Post) Link() string {
	return "/" + string(p.Locale) + "/blog/" + p.Slug + "/"
}

// RenderedPost is a Post with its body rendered to HTML and its cover pattern
// derived. It is built per request and never stored.
type RenderedPost struct {
	Slug         string        `json:"slug"`
	Locale       Locale        `json:"locale"`
	Title        string        `json:"title"`
	Excerpt      string        `json:"excerpt"`
	Content      string        `json:"content"` // HTML
	CoverImage   string        `json:"coverImage,omitempty"`
	CoverPattern cover.Pattern `json:"coverPattern"`
	Author       Author        `json:"author"`
	Date         time.Time     `json:"date"`
	Tags         []string      `json:"tags,omitempty"`
}

// Link returns the site-relative URL of the post page.
func (p RenderedPost) Link() string {
	return "/" + string(p.Locale) + "/blog/" + p.Slug + "/"
}

// PostSummary is the listing view of a post: everything but the body.
type PostSummary struct {
	Slug         string        `json:"slug"`
	Locale       Locale        `json:"locale"`
	Title        string        `json:"title"`
	Excerpt      string        `json:"excerpt"`
	CoverImage   string        `json:"coverImage,omitempty"`
	CoverPattern cover.Pattern `json:"coverPattern"`
	Author       Author        `json:"author"`
	Date         time.Time     `json:"date"`
	Tags         []string      `json:"tags,omitempty"`
}

// Link returns the site-relative URL of the post page.
func (p PostSummary) Link() string {
	return "/" + string(p.Locale) + "/blog/" + p.Slug + "/"
}

// Summarize builds the listing view of p.
func Summarize(p Post) PostSummary {
	return PostSummary{
		Slug:         p.Slug,
		Locale:       p.Locale,
		Title:        p.Title,
		Excerpt:      p.Excerpt,
		CoverImage:   p.CoverImage,
		CoverPattern: cover.ForSlug(p.Slug),
		Author:       p.Author,
		Date:         p.Date,
		Tags:         p.Tags,
	}
}

// Alternate is a translation of the current page in another locale.
type Alternate struct {
	Locale Locale
	URL    string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
	Locale      Locale
	Alternates  []Alternate
}
