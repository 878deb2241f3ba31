package folio

import (
	"encoding/json"
	"time"
)

// postURL returns the absolute URL of a post page.
func postURL(base string, locale Locale, slug string) string {
	return BuildURL(base, string(locale), "blog", slug)
}

// previewImageURL returns the absolute URL of a post's generated preview image.
func previewImageURL(base string, locale Locale, slug string) string {
	return BuildURL(base, string(locale), "blog", slug) + "og.png"
}

// IndexMeta returns page metadata for the blog index of locale.
func IndexMeta(cfg SiteConfig, locale Locale) PageMeta {
	alts := make([]Alternate, 0, len(SupportedLocales))
	for _, l := range SupportedLocales {
		alts = append(alts, Alternate{Locale: l, URL: BuildURL(cfg.URL, string(l))})
	}
	return PageMeta{
		Title:       locale.text().Blog + " · " + cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL, string(locale)),
		OGType:      "website",
		Locale:      locale,
		Alternates:  alts,
	}
}

// PostMeta returns page metadata for a post. translations lists the other
// locales that publish the same slug.
func PostMeta(cfg SiteConfig, post RenderedPost, translations []Locale) PageMeta {
	image := post.CoverImage
	if image == "" {
		image = previewImageURL(cfg.URL, post.Locale, post.Slug)
	}
	alts := []Alternate{{Locale: post.Locale, URL: postURL(cfg.URL, post.Locale, post.Slug)}}
	for _, l := range translations {
		if l != post.Locale {
			alts = append(alts, Alternate{Locale: l, URL: postURL(cfg.URL, l, post.Slug)})
		}
	}
	return PageMeta{
		Title:       post.Title + " · " + cfg.Name,
		Description: post.Excerpt,
		URL:         postURL(cfg.URL, post.Locale, post.Slug),
		OGType:      "article",
		Image:       image,
		Locale:      post.Locale,
		Alternates:  alts,
	}
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig, locale Locale) string {
	data := map[string]interface{}{
		"@context":   "https://schema.org",
		"@type":      "WebSite",
		"name":       cfg.Name,
		"url":        BuildURL(cfg.URL, string(locale)),
		"inLanguage": locale.Tag().String(),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(cfg SiteConfig, post RenderedPost) string {
	u := postURL(cfg.URL, post.Locale, post.Slug)
	image := post.CoverImage
	if image == "" {
		image = previewImageURL(cfg.URL, post.Locale, post.Slug)
	}
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.Date.UTC().Format(time.RFC3339),
		"url":           u,
		"image":         image,
		"inLanguage":    post.Locale.Tag().String(),
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   u,
		},
	}
	author := post.Author.Name
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		a := map[string]string{"@type": "Person", "name": author}
		if post.Author.Picture != "" {
			a["image"] = post.Author.Picture
		}
		data["author"] = a
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = JoinTags(post.Tags)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
