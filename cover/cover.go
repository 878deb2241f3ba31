// Package cover derives a decorative cover pattern for a post from its slug.
// The same slug always maps to the same palette entry.
package cover

import (
	"image/color"
	"unicode/utf16"
)

// Pattern is one palette entry: a CSS background gradient plus an overlay texture.
type Pattern struct {
	Name       string        `json:"-"`
	Background string        `json:"background"`
	Overlay    string        `json:"overlay"`
	Stops      [2]color.RGBA `json:"-"` // gradient endpoints, used for preview images
}

// Palette is the fixed, ordered set of cover patterns. Do not reorder entries:
// existing slugs would change their visual identity.
var Palette = [...]Pattern{
	{
		Name:       "indigo-dots",
		Background: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		Overlay:    "radial-gradient(circle at 1px 1px, rgba(255,255,255,0.18) 1px, transparent 0) 0 0 / 20px 20px",
		Stops:      [2]color.RGBA{{0x66, 0x7e, 0xea, 0xff}, {0x76, 0x4b, 0xa2, 0xff}},
	},
	{
		Name:       "sunset-stripes",
		Background: "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
		Overlay:    "repeating-linear-gradient(45deg, rgba(255,255,255,0.08) 0 10px, transparent 10px 20px)",
		Stops:      [2]color.RGBA{{0xf0, 0x93, 0xfb, 0xff}, {0xf5, 0x57, 0x6c, 0xff}},
	},
	{
		Name:       "ocean-grid",
		Background: "linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)",
		Overlay:    "linear-gradient(rgba(255,255,255,0.1) 1px, transparent 1px) 0 0 / 24px 24px, linear-gradient(90deg, rgba(255,255,255,0.1) 1px, transparent 1px) 0 0 / 24px 24px",
		Stops:      [2]color.RGBA{{0x4f, 0xac, 0xfe, 0xff}, {0x00, 0xf2, 0xfe, 0xff}},
	},
	{
		Name:       "mint-waves",
		Background: "linear-gradient(135deg, #43e97b 0%, #38f9d7 100%)",
		Overlay:    "radial-gradient(ellipse at 50% 120%, rgba(255,255,255,0.2) 0 40%, transparent 41%) 0 0 / 60px 30px",
		Stops:      [2]color.RGBA{{0x43, 0xe9, 0x7b, 0xff}, {0x38, 0xf9, 0xd7, 0xff}},
	},
	{
		Name:       "amber-diagonal",
		Background: "linear-gradient(135deg, #fa709a 0%, #fee140 100%)",
		Overlay:    "repeating-linear-gradient(-45deg, rgba(0,0,0,0.05) 0 2px, transparent 2px 12px)",
		Stops:      [2]color.RGBA{{0xfa, 0x70, 0x9a, 0xff}, {0xfe, 0xe1, 0x40, 0xff}},
	},
	{
		Name:       "night-checker",
		Background: "linear-gradient(135deg, #30cfd0 0%, #330867 100%)",
		Overlay:    "conic-gradient(rgba(255,255,255,0.06) 25%, transparent 0 50%, rgba(255,255,255,0.06) 0 75%, transparent 0) 0 0 / 32px 32px",
		Stops:      [2]color.RGBA{{0x30, 0xcf, 0xd0, 0xff}, {0x33, 0x08, 0x67, 0xff}},
	},
}

// Index returns the palette index for slug: the sum of its UTF-16 code units
// modulo the palette size.
func Index(slug string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(slug)) {
		sum += int(u)
	}
	return sum % len(Palette)
}

// ForSlug returns the cover pattern for slug.
func ForSlug(slug string) Pattern {
	return Palette[Index(slug)]
}
