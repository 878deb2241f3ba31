package folio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/cover"
	"github.com/eringen/folio/markdown"
)

// memStore is an in-memory ContentStore. Setting err makes every call fail.
type memStore struct {
	mu    sync.Mutex
	posts map[Locale]map[string]Post
	err   error
	calls int
}

func newMemStore(posts ...Post) *memStore {
	m := &memStore{posts: make(map[Locale]map[string]Post)}
	for _, p := range posts {
		if m.posts[p.Locale] == nil {
			m.posts[p.Locale] = make(map[string]Post)
		}
		m.posts[p.Locale][p.Slug] = p
	}
	return m
}

func (m *memStore) GetPostBySlug(_ context.Context, slug string, locale Locale) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.posts[locale][slug]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) GetAllPosts(_ context.Context, locale Locale) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []Post
	for _, p := range m.posts[locale] {
		out = append(out, p)
	}
	return out, nil
}

func helloWorld(locale Locale) Post {
	return Post{
		Slug:    "hello-world",
		Locale:  locale,
		Title:   "Hello",
		Excerpt: "First post",
		Content: "# Hi",
		Author:  Author{Name: "Jane", Picture: "/jane.png"},
		Date:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Tags:    []string{"intro"},
	}
}

func TestResolvePost(t *testing.T) {
	svc := NewPostService(newMemStore(helloWorld(LocaleEN)), nil)

	got, err := svc.ResolvePost(context.Background(), LocaleEN, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got.Slug)
	assert.Equal(t, LocaleEN, got.Locale)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "First post", got.Excerpt)
	assert.Equal(t, "<h1>Hi</h1>\n", got.Content)
	assert.Equal(t, cover.ForSlug("hello-world"), got.CoverPattern)
	assert.Equal(t, Author{Name: "Jane", Picture: "/jane.png"}, got.Author)
	assert.Equal(t, []string{"intro"}, got.Tags)
	assert.Equal(t, "/en/blog/hello-world/", got.Link())
}

func TestResolvePostIsIdempotent(t *testing.T) {
	post := helloWorld(LocaleEN)
	post.Content = "Intro\n\n```go\nfmt.Println(1)\n```\n\n- a\n- b\n"
	svc := NewPostService(newMemStore(post), nil)

	first, err := svc.ResolvePost(context.Background(), LocaleEN, "hello-world")
	require.NoError(t, err)
	second, err := svc.ResolvePost(context.Background(), LocaleEN, "hello-world")
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second resolution differs (-first +second):\n%s", diff)
	}
	assert.Contains(t, first.Content, `<pre class="language-go"><code class="language-go">`)
}

func TestResolvePostNotFound(t *testing.T) {
	store := newMemStore(helloWorld(LocaleEN))
	svc := NewPostService(store, nil)
	ctx := context.Background()

	for _, l := range SupportedLocales {
		_, err := svc.ResolvePost(ctx, l, "does-not-exist")
		assert.ErrorIs(t, err, ErrNotFound, "locale %s", l)
	}
}

func TestResolvePostNeverFallsBackToAnotherLocale(t *testing.T) {
	svc := NewPostService(newMemStore(helloWorld(LocaleEN)), nil)

	_, err := svc.ResolvePost(context.Background(), LocaleRU, "hello-world")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePostRejectsInvalidInputWithoutQuerying(t *testing.T) {
	store := newMemStore(helloWorld(LocaleEN))
	svc := NewPostService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		locale Locale
		slug   string
	}{
		{"unsupported locale", "de", "hello-world"},
		{"empty locale", "", "hello-world"},
		{"empty slug", LocaleEN, ""},
		{"blank slug", LocaleEN, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ResolvePost(ctx, tt.locale, tt.slug)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
	assert.Zero(t, store.calls)
}

func TestResolvePostStoreUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	store := newMemStore(helloWorld(LocaleEN))
	store.err = cause
	svc := NewPostService(store, nil)

	_, err := svc.ResolvePost(context.Background(), LocaleEN, "hello-world")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, store.calls, "failures are not retried")
}

// mismatchStore returns a post for any key, always in English.
type mismatchStore struct{ memStore }

func (m *mismatchStore) GetPostBySlug(_ context.Context, slug string, _ Locale) (*Post, error) {
	p := helloWorld(LocaleEN)
	p.Slug = slug
	return &p, nil
}

func TestResolvePostIgnoresMismatchedStoreResult(t *testing.T) {
	svc := NewPostService(&mismatchStore{}, nil)

	_, err := svc.ResolvePost(context.Background(), LocaleRU, "hello-world")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePostEmptyBody(t *testing.T) {
	post := helloWorld(LocaleEN)
	post.Content = ""
	svc := NewPostService(newMemStore(post), nil)

	got, err := svc.ResolvePost(context.Background(), LocaleEN, "hello-world")
	require.NoError(t, err)
	assert.Empty(t, got.Content)
}

func TestResolvePostSanitizingRenderer(t *testing.T) {
	post := helloWorld(LocaleEN)
	post.Content = "ok <script>alert(1)</script>"
	ctx := context.Background()

	raw, err := NewPostService(newMemStore(post), nil).ResolvePost(ctx, LocaleEN, "hello-world")
	require.NoError(t, err)
	assert.Contains(t, raw.Content, "<script>")

	clean, err := NewPostService(newMemStore(post), markdown.New(markdown.WithSanitizer())).ResolvePost(ctx, LocaleEN, "hello-world")
	require.NoError(t, err)
	assert.NotContains(t, clean.Content, "<script>")
}

func TestListPostsService(t *testing.T) {
	a := helloWorld(LocaleRU)
	b := helloWorld(LocaleRU)
	b.Slug = "second"
	svc := NewPostService(newMemStore(a, b, helloWorld(LocaleEN)), nil)
	ctx := context.Background()

	got, err := svc.ListPosts(ctx, LocaleRU)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, LocaleRU, s.Locale)
		assert.Equal(t, cover.ForSlug(s.Slug), s.CoverPattern)
	}

	_, err = svc.ListPosts(ctx, "xx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsServiceEmpty(t *testing.T) {
	svc := NewPostService(newMemStore(), nil)
	got, err := svc.ListPosts(context.Background(), LocaleEN)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListPostsServiceStoreUnavailable(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk I/O error")
	svc := NewPostService(store, nil)

	_, err := svc.ListPosts(context.Background(), LocaleEN)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestResolvePostAgainstSQLiteStore(t *testing.T) {
	s := setupTestStore(t)
	post := helloWorld(LocaleEN)
	post.Published = true
	savePosts(t, s, post)
	svc := NewPostService(s, nil)
	ctx := context.Background()

	got, err := svc.ResolvePost(ctx, LocaleEN, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>\n", got.Content)

	_, err = svc.ResolvePost(ctx, LocaleRU, "hello-world")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Close())
	_, err = svc.ResolvePost(ctx, LocaleEN, "hello-world")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
