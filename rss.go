package folio

import (
	"encoding/xml"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

func (a *App) handleFeed(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return echo.ErrNotFound
	}
	posts, err := a.Cache.ListPosts(c.Request().Context(), locale, "")
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return c.String(http.StatusServiceUnavailable, locale.text().Unavailable)
		}
		return err
	}
	return a.renderRSS(c, buildFeed(a.Config, locale, posts))
}

func buildFeed(cfg SiteConfig, locale Locale, posts []Post) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		u := postURL(cfg.URL, locale, p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        u,
			Description: p.Excerpt,
			Author:      p.Author.Name,
			Categories:  p.Tags,
			GUID:        u,
		}
		if !p.Date.IsZero() {
			item.PubDate = p.Date.UTC().Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name + " · " + locale.text().Blog,
			Link:        BuildURL(cfg.URL, string(locale)),
			Description: cfg.Description,
			Language:    locale.Tag().String(),
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, feed rssXML) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
