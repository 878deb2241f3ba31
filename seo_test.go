package folio

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/cover"
)

func seoConfig() SiteConfig {
	cfg := SiteConfig{Name: "Folio", URL: "https://example.com", Description: "Notes", Author: "Site Owner"}
	cfg.setDefaults()
	return cfg
}

func TestIndexMeta(t *testing.T) {
	meta := IndexMeta(seoConfig(), LocaleRU)
	assert.Equal(t, "Блог · Folio", meta.Title)
	assert.Equal(t, "https://example.com/ru/", meta.URL)
	assert.Equal(t, "website", meta.OGType)
	assert.Equal(t, []Alternate{
		{Locale: LocaleEN, URL: "https://example.com/en/"},
		{Locale: LocaleRU, URL: "https://example.com/ru/"},
	}, meta.Alternates)
}

func TestPostMeta(t *testing.T) {
	post := RenderedPost{Slug: "hello", Locale: LocaleEN, Title: "Hello", Excerpt: "Hi there"}

	meta := PostMeta(seoConfig(), post, []Locale{LocaleEN, LocaleRU})
	assert.Equal(t, "Hello · Folio", meta.Title)
	assert.Equal(t, "Hi there", meta.Description)
	assert.Equal(t, "https://example.com/en/blog/hello/", meta.URL)
	assert.Equal(t, "article", meta.OGType)
	assert.Equal(t, "https://example.com/en/blog/hello/og.png", meta.Image)
	assert.Equal(t, []Alternate{
		{Locale: LocaleEN, URL: "https://example.com/en/blog/hello/"},
		{Locale: LocaleRU, URL: "https://example.com/ru/blog/hello/"},
	}, meta.Alternates)

	post.CoverImage = "https://cdn.example.com/c.jpg"
	meta = PostMeta(seoConfig(), post, nil)
	assert.Equal(t, "https://cdn.example.com/c.jpg", meta.Image)
	assert.Len(t, meta.Alternates, 1)
}

func TestWebsiteJsonLD(t *testing.T) {
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(WebsiteJsonLD(seoConfig(), LocaleRU)), &data))
	assert.Equal(t, "WebSite", data["@type"])
	assert.Equal(t, "https://example.com/ru/", data["url"])
	assert.Equal(t, "ru", data["inLanguage"])
	assert.Equal(t, "Notes", data["description"])
}

func TestBlogPostingJsonLD(t *testing.T) {
	post := RenderedPost{
		Slug:         "hello",
		Locale:       LocaleRU,
		Title:        "Привет",
		Excerpt:      "Первая запись",
		Author:       Author{Name: "Jane", Picture: "https://example.com/jane.png"},
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Tags:         []string{"go", "web"},
		CoverPattern: cover.ForSlug("hello"),
	}
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(seoConfig(), post)), &data))
	assert.Equal(t, "BlogPosting", data["@type"])
	assert.Equal(t, "Привет", data["headline"])
	assert.Equal(t, "2024-03-01T00:00:00Z", data["datePublished"])
	assert.Equal(t, "https://example.com/ru/blog/hello/", data["url"])
	assert.Equal(t, "https://example.com/ru/blog/hello/og.png", data["image"])
	assert.Equal(t, "ru", data["inLanguage"])
	assert.Equal(t, "go, web", data["keywords"])
	author, ok := data["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane", author["name"])
	assert.Equal(t, "https://example.com/jane.png", author["image"])
}

func TestBlogPostingJsonLDFallsBackToSiteAuthor(t *testing.T) {
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(seoConfig(), RenderedPost{Slug: "x", Locale: LocaleEN})), &data))
	author := data["author"].(map[string]any)
	assert.Equal(t, "Site Owner", author["name"])
	assert.NotContains(t, author, "image")
}
