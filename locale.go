package folio

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Locale is a supported content locale code.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

// SupportedLocales is the fixed set of content locales, in display order.
var SupportedLocales = []Locale{LocaleEN, LocaleRU}

var localeTags = []language.Tag{language.English, language.Russian}

var localeMatcher = language.NewMatcher(localeTags)

// ParseLocale returns the Locale for code if it is supported.
func ParseLocale(code string) (Locale, bool) {
	l := Locale(strings.ToLower(strings.TrimSpace(code)))
	return l, l.Valid()
}

// Valid reports whether l is one of SupportedLocales.
func (l Locale) Valid() bool {
	for _, s := range SupportedLocales {
		if l == s {
			return true
		}
	}
	return false
}

// Tag returns the BCP 47 tag for l.
func (l Locale) Tag() language.Tag {
	for i, s := range SupportedLocales {
		if l == s {
			return localeTags[i]
		}
	}
	return language.Und
}

// NegotiateLocale picks the best supported locale for an Accept-Language
// header, or fallback when nothing matches.
func NegotiateLocale(acceptLanguage string, fallback Locale) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return SupportedLocales[idx]
}

// localeText holds the handful of strings the server itself emits per locale.
type localeText struct {
	Blog        string
	Unavailable string
}

var localeTexts = map[Locale]localeText{
	LocaleEN: {
		Blog:        "Blog",
		Unavailable: "The blog is temporarily unavailable. Please try again later.",
	},
	LocaleRU: {
		Blog:        "Блог",
		Unavailable: "Блог временно недоступен. Попробуйте позже.",
	},
}

// text returns the server strings for l, falling back to English.
func (l Locale) text() localeText {
	if t, ok := localeTexts[l]; ok {
		return t
	}
	return localeTexts[LocaleEN]
}

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatDate formats t for display in locale l.
func FormatDate(l Locale, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	switch l {
	case LocaleRU:
		return strconv.Itoa(t.Day()) + " " + ruMonths[t.Month()-1] + " " + strconv.Itoa(t.Year())
	default:
		return t.Format("January 2, 2006")
	}
}
