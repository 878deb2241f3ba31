// Package analytics counts post views without cookies or stored addresses.
// Visitors are identified by a salted hash of address, user agent and day,
// so the same reader cannot be followed across days. Crawlers are recorded
// separately and never inflate human view counts.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// View is one human read of a post.
type View struct {
	Locale    string
	Slug      string
	VisitorID string
	Browser   string
	OS        string
	Device    string
	Referrer  string
	Timestamp time.Time
}

// BotView is one crawler fetch of a post.
type BotView struct {
	Locale    string
	Slug      string
	BotName   string
	Timestamp time.Time
}

// Stats aggregates human views over a period.
type Stats struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	TotalViews     int             `json:"totalViews"`
	UniqueVisitors int             `json:"uniqueVisitors"`
	TopPosts       []PostStat      `json:"topPosts"`
	Browsers       []DimensionStat `json:"browsers"`
	OS             []DimensionStat `json:"os"`
	Devices        []DimensionStat `json:"devices"`
	Referrers      []DimensionStat `json:"referrers"`
	DailyViews     []DailyView     `json:"dailyViews"`
}

// BotStats aggregates crawler fetches over a period.
type BotStats struct {
	TotalVisits int             `json:"totalVisits"`
	TopBots     []DimensionStat `json:"topBots"`
	TopPosts    []PostStat      `json:"topPosts"`
}

// PostStat counts views of one localized post.
type PostStat struct {
	Locale string `json:"locale"`
	Slug   string `json:"slug"`
	Views  int    `json:"views"`
}

// DimensionStat counts views sharing one value of a dimension such as browser.
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView counts views on one UTC day (YYYY-MM-DD).
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// VisitorID derives an anonymous identifier that changes every UTC day.
func VisitorID(salt, ip, userAgent string, at time.Time) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte{0})
	h.Write([]byte(ip))
	h.Write([]byte{0})
	h.Write([]byte(userAgent))
	h.Write([]byte{0})
	h.Write([]byte(at.UTC().Format("2006-01-02")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts coarse browser, OS and device class from ua.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// Edge and Opera UAs also contain "chrome"; Chrome UAs contain "safari".
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android UAs contain "linux".
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile".
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return browser, os, device
}

// Ordered so that specific names win over the generic markers at the end.
var botPatterns = []struct{ pattern, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"duckduckbot", "DuckDuckBot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"telegrambot", "Telegram"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"mj12bot", "Majestic"},
	{"dotbot", "Moz"},
	{"slurp", "Yahoo Slurp"},
	{"crawl", "Generic Crawler"},
	{"spider", "Generic Spider"},
	{"scrape", "Generic Scraper"},
	{"bot", "Other Bot"},
}

// BotName returns the crawler name for ua, or "" for a browser.
// An empty user agent counts as a bot; browsers always send one.
func BotName(ua string) string {
	ua = strings.ToLower(strings.TrimSpace(ua))
	if ua == "" {
		return "Unknown"
	}
	for _, b := range botPatterns {
		if strings.Contains(ua, b.pattern) {
			return b.name
		}
	}
	return ""
}

// IsBot reports whether ua belongs to a crawler.
func IsBot(ua string) bool {
	return BotName(ua) != ""
}

var searchEngines = []struct{ marker, name string }{
	{"google.", "Google"},
	{"bing.", "Bing"},
	{"duckduckgo.", "DuckDuckGo"},
	{"yandex.", "Yandex"},
	{"yahoo.", "Yahoo"},
	{"github.", "GitHub"},
}

// CleanReferrer reduces a referrer URL to a display name: a known source,
// the bare host, or "Direct". Self-referrals from siteHost count as direct.
func CleanReferrer(ref, siteHost string) string {
	if ref == "" {
		return "Direct"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "Other"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if siteHost != "" && host == strings.TrimPrefix(strings.ToLower(siteHost), "www.") {
		return "Direct"
	}
	for _, se := range searchEngines {
		if strings.Contains(host, se.marker) {
			return se.name
		}
	}
	return host
}
