// Package markdown converts post bodies from Markdown to HTML and tags code
// blocks for the client-side syntax highlighter.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// PlaintextLanguage is the language class given to code blocks that declare none.
const PlaintextLanguage = "plaintext"

var (
	reCodeWithLang = regexp.MustCompile(`<pre><code class="language-([^"]+)">`)
	reLangClass    = regexp.MustCompile(`^language-[\w.+#-]+$`)
)

const (
	untaggedCode  = "<pre><code>"
	plaintextCode = `<pre class="language-` + PlaintextLanguage + `"><code class="language-` + PlaintextLanguage + `">`
)

// Renderer turns Markdown into HTML. A Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSanitizer strips unsafe HTML from the output using a UGC policy.
// Without it, raw HTML in the source is passed through unchanged.
func WithSanitizer() Option {
	return func(r *Renderer) {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(reLangClass).OnElements("pre", "code")
		r.policy = p
	}
}

// New returns a Renderer for GitHub-flavoured Markdown.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sanitizing reports whether the renderer strips unsafe HTML.
func (r *Renderer) Sanitizing() bool {
	return r.policy != nil
}

// Render returns the HTML for src. It never fails: if conversion stops early,
// whatever was produced so far is returned.
func (r *Renderer) Render(src string) string {
	var buf bytes.Buffer
	RenderTo(&buf, r, src)
	return buf.String()
}

// RenderTo writes the HTML for src to buf.
func RenderTo(buf *bytes.Buffer, r *Renderer, src string) {
	if src == "" {
		return
	}
	var out bytes.Buffer
	_ = r.md.Convert([]byte(src), &out)
	s := out.String()
	if r.policy != nil {
		s = r.policy.Sanitize(s)
	}
	buf.WriteString(TagCodeBlocks(s))
}

// TagCodeBlocks copies the language class of every <code> inside a <pre> onto
// the <pre> itself, and tags blocks without a language as plaintext.
func TagCodeBlocks(s string) string {
	s = reCodeWithLang.ReplaceAllString(s, `<pre class="language-$1"><code class="language-$1">`)
	return strings.ReplaceAll(s, untaggedCode, plaintextCode)
}

var defaultRenderer = New()

// Render converts src with the default, non-sanitizing renderer.
func Render(src string) string {
	return defaultRenderer.Render(src)
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderTo(&buf, defaultRenderer, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
