package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	uaChromeMac   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	uaFirefoxLin  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaSafariPhone = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaEdgeWin     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0"
	uaAndroidTab  = "Mozilla/5.0 (Linux; Android 13; Tablet) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	uaGooglebot   = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		ua                  string
		browser, os, device string
	}{
		{uaChromeMac, "Chrome", "macOS", "Desktop"},
		{uaFirefoxLin, "Firefox", "Linux", "Desktop"},
		{uaSafariPhone, "Safari", "iOS", "Mobile"},
		{uaEdgeWin, "Edge", "Windows", "Desktop"},
		{uaAndroidTab, "Chrome", "Android", "Tablet"},
		{"curl-ish", "Other", "Other", "Desktop"},
	}
	for _, tt := range tests {
		browser, os, device := ParseUserAgent(tt.ua)
		assert.Equal(t, tt.browser, browser, tt.ua)
		assert.Equal(t, tt.os, os, tt.ua)
		assert.Equal(t, tt.device, device, tt.ua)
	}
}

func TestBotName(t *testing.T) {
	assert.Equal(t, "Googlebot", BotName(uaGooglebot))
	assert.Equal(t, "Telegram", BotName("TelegramBot (like Telegram)"))
	assert.Equal(t, "Generic Crawler", BotName("SomeCrawler/1.0"))
	assert.Equal(t, "Other Bot", BotName("MyBot/2.0"))
	assert.Equal(t, "Unknown", BotName("  "))
	assert.Equal(t, "", BotName(uaChromeMac))

	assert.True(t, IsBot(uaGooglebot))
	assert.False(t, IsBot(uaFirefoxLin))
}

func TestCleanReferrer(t *testing.T) {
	tests := []struct {
		ref, want string
	}{
		{"", "Direct"},
		{"https://www.google.com/search?q=go", "Google"},
		{"https://duckduckgo.com/", "DuckDuckGo"},
		{"https://github.com/eringen", "GitHub"},
		{"https://www.example.org/links", "example.org"},
		{"https://blog.test/en/", "Direct"},
		{"not a url", "Other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanReferrer(tt.ref, "blog.test"), tt.ref)
	}
}

func TestVisitorIDRotatesDaily(t *testing.T) {
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := VisitorID("salt", "1.2.3.4", uaChromeMac, day)

	assert.Len(t, a, 16)
	assert.Equal(t, a, VisitorID("salt", "1.2.3.4", uaChromeMac, day.Add(5*time.Hour)))
	assert.NotEqual(t, a, VisitorID("salt", "1.2.3.4", uaChromeMac, day.Add(24*time.Hour)))
	assert.NotEqual(t, a, VisitorID("other", "1.2.3.4", uaChromeMac, day))
	assert.NotEqual(t, a, VisitorID("salt", "1.2.3.5", uaChromeMac, day))
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]int{"today": 1, "week": 7, "month": 30, "year": 365} {
		name, days := ParsePeriod(in)
		assert.Equal(t, in, name)
		assert.Equal(t, want, days)
	}
	name, days := ParsePeriod("decade")
	assert.Equal(t, "week", name)
	assert.Equal(t, 7, days)
}
