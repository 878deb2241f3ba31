package folio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/eringen/folio/cover"
)

const (
	previewWidth  = 1200
	previewHeight = 630
	previewScale  = 4 // text is drawn on a layer this many times smaller, then upscaled
	previewMargin = 12
	previewLines  = 6
)

func (a *App) handlePreviewImage(c echo.Context) error {
	locale, ok := requestLocale(c)
	if !ok {
		return echo.ErrNotFound
	}
	post, err := a.Posts.ResolvePost(c.Request().Context(), locale, c.Param("slug"))
	if err != nil {
		return apiLookupError(c, err)
	}
	title := post.Title
	if !isPrintableASCII(title) {
		title = post.Slug
	}
	data, err := renderPreview(title, post.CoverPattern)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// renderPreview draws a previewWidth x previewHeight PNG: the pattern's
// gradient with title set in white on top.
func renderPreview(title string, pattern cover.Pattern) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, previewWidth, previewHeight))
	fillGradient(dst, pattern.Stops[0], pattern.Stops[1])

	layer := image.NewRGBA(image.Rect(0, 0, previewWidth/previewScale, previewHeight/previewScale))
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: layer, Src: image.White, Face: face}
	charsPerLine := (layer.Bounds().Dx() - 2*previewMargin) / face.Advance
	lineHeight := face.Height + 3
	for i, line := range wrapText(title, charsPerLine, previewLines) {
		d.Dot = fixed.P(previewMargin, previewMargin+face.Ascent+i*lineHeight)
		d.DrawString(line)
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), layer, layer.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// fillGradient paints a diagonal gradient from the top-left corner (from) to
// the bottom-right corner (to).
func fillGradient(img *image.RGBA, from, to color.RGBA) {
	b := img.Bounds()
	span := b.Dx() + b.Dy() - 2
	if span <= 0 {
		span = 1
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := (x - b.Min.X) + (y - b.Min.Y)
			img.SetRGBA(x, y, color.RGBA{
				R: lerp(from.R, to.R, t, span),
				G: lerp(from.G, to.G, t, span),
				B: lerp(from.B, to.B, t, span),
				A: 0xff,
			})
		}
	}
}

func lerp(a, b uint8, t, span int) uint8 {
	return uint8((int(a)*(span-t) + int(b)*t) / span)
}

// wrapText splits s into at most maxLines lines of at most width runes,
// breaking at spaces. Overflow is marked with "...".
func wrapText(s string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	var lines []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			flush()
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) <= width:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		default:
			flush()
			cur = append(cur, w...)
		}
	}
	flush()
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		if n := max(width-3, 0); len(last) > n {
			last = last[:n]
		}
		lines[maxLines-1] = string(last) + "..."
	}
	return lines
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return s != ""
}
