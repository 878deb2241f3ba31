package folio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
		ok   bool
	}{
		{"en", LocaleEN, true},
		{"ru", LocaleRU, true},
		{" RU ", LocaleRU, true},
		{"de", "", false},
		{"", "", false},
		{"en-US", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLocale(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseLocale(%q)", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "ParseLocale(%q)", tt.in)
		}
	}
}

func TestNegotiateLocale(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", LocaleEN},
		{"ru-RU,ru;q=0.9,en;q=0.8", LocaleRU},
		{"en-GB,en;q=0.9", LocaleEN},
		{"de-DE,ru;q=0.5", LocaleRU},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NegotiateLocale(tt.header, LocaleEN), "header %q", tt.header)
	}
	assert.Equal(t, LocaleRU, NegotiateLocale("", LocaleRU))
	assert.Equal(t, LocaleRU, NegotiateLocale("fr-FR", LocaleRU))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "March 5, 2024", FormatDate(LocaleEN, d))
	assert.Equal(t, "5 марта 2024", FormatDate(LocaleRU, d))
	assert.Equal(t, "", FormatDate(LocaleEN, time.Time{}))
}
