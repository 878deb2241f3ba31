package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := Render("```js\ncode\n```")
	assert.Contains(t, got, `<pre class="language-js"><code class="language-js">`)
	assert.Contains(t, got, "code")
}

func TestRenderCodeBlockWithoutLanguage(t *testing.T) {
	got := Render("```\ncode\n```")
	assert.Contains(t, got, `<pre class="language-plaintext"><code class="language-plaintext">`)
	assert.NotContains(t, got, "<pre><code>")
}

func TestRenderCodeBlockLanguages(t *testing.T) {
	tests := []struct {
		input string
		lang  string
	}{
		{"```go\nfmt.Println(\"hello\")\n```", "go"},
		{"```c++\nint main() {}\n```", "c++"},
		{"```objective-c\n@end\n```", "objective-c"},
		{"```python title=\"x.py\"\nprint(1)\n```", "python"},
	}
	for _, tt := range tests {
		want := `<pre class="language-` + tt.lang + `"><code class="language-` + tt.lang + `">`
		assert.Contains(t, Render(tt.input), want, tt.input)
	}
}

func TestRenderMultipleCodeBlocks(t *testing.T) {
	got := Render("```go\na\n```\n\ntext\n\n```\nb\n```\n\n```rust\nc\n```")
	for _, want := range []string{
		`<pre class="language-go"><code class="language-go">`,
		`<pre class="language-plaintext"><code class="language-plaintext">`,
		`<pre class="language-rust"><code class="language-rust">`,
	} {
		assert.Contains(t, got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	assert.Empty(t, strings.TrimSpace(Render("")))
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Hi", "<h1>Hi</h1>"},
		{"## Heading 2", "<h2>Heading 2</h2>"},
		{"### Heading 3", "<h3>Heading 3</h3>"},
	}
	for _, tt := range tests {
		assert.Contains(t, Render(tt.input), tt.expected, tt.input)
	}
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"use `fmt.Println` here", "<code>fmt.Println</code>"},
		{"~~gone~~", "<del>gone</del>"},
		{"[link](https://example.com/a_b)", `<a href="https://example.com/a_b">link</a>`},
	}
	for _, tt := range tests {
		assert.Contains(t, Render(tt.input), tt.expected, tt.input)
	}
}

func TestRenderInlineCodeIsNotTagged(t *testing.T) {
	assert.NotContains(t, Render("Run `go test` to verify."), "language-")
}

func TestRenderLists(t *testing.T) {
	got := Render("- item 1\n- item 2\n\n1. first\n2. second")
	for _, want := range []string{"<ul>", "<li>item 1</li>", "<ol>", "<li>second</li>"} {
		assert.Contains(t, got, want)
	}
}

func TestRenderTable(t *testing.T) {
	got := Render("| a | b |\n|---|---|\n| 1 | 2 |")
	for _, want := range []string{"<table>", "<th>a</th>", "<td>2</td>"} {
		assert.Contains(t, got, want)
	}
}

func TestRenderPassesRawHTMLByDefault(t *testing.T) {
	got := Render("<div class=\"note\">hi</div>\n\n<script>alert(1)</script>")
	assert.Contains(t, got, `<div class="note">hi</div>`)
	assert.Contains(t, got, "<script>")
}

func TestRenderWithSanitizer(t *testing.T) {
	r := New(WithSanitizer())
	require.True(t, r.Sanitizing())

	got := r.Render("<script>alert(1)</script>\n\n```go\nx := 1\n```\n\n```\nplain\n```")
	assert.NotContains(t, got, "<script")
	assert.Contains(t, got, `<pre class="language-go"><code class="language-go">`)
	assert.Contains(t, got, `<pre class="language-plaintext"><code class="language-plaintext">`)
}

func TestRenderMalformedInput(t *testing.T) {
	inputs := []string{
		"```go\nunterminated fence",
		"[broken](",
		"<div><span>",
		"| a |\n|--",
		"\x00\xff\xfe",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Render(in) }, in)
	}
	assert.Contains(t, Render("```go\nunterminated fence"), `<pre class="language-go"><code class="language-go">`)
}

func TestTagCodeBlocks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			`<pre><code class="language-sh">ls</code></pre>`,
			`<pre class="language-sh"><code class="language-sh">ls</code></pre>`,
		},
		{
			`<pre><code>x</code></pre>`,
			`<pre class="language-plaintext"><code class="language-plaintext">x</code></pre>`,
		},
		{`<p>no code</p>`, `<p>no code</p>`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TagCodeBlocks(tt.input))
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown("# Title").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<h1>Title</h1>")
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/a.png", "https://example.com/a.png"},
		{"/uploads/a.png", "/uploads/a.png"},
		{"#top", "#top"},
		{"javascript:alert(1)", ""},
		{"data:image/png;base64,xx", ""},
		{"  ", ""},
		{"relative/path", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SafeURL(tt.input), tt.input)
	}
}
