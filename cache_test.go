package folio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	mu     sync.Mutex
	posts  map[Locale][]Post
	err    error
	loads  int
	tagErr error
}

func (s *countingSource) GetAllPosts(_ context.Context, locale Locale) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.posts[locale], nil
}

func (s *countingSource) ListTags(_ context.Context, locale Locale) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tagErr != nil {
		return nil, s.tagErr
	}
	set := map[string]bool{}
	var tags []string
	for _, p := range s.posts[locale] {
		for _, t := range p.Tags {
			if !set[t] {
				set[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags, nil
}

func (s *countingSource) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func newCountingSource() *countingSource {
	return &countingSource{posts: map[Locale][]Post{
		LocaleEN: {testPost(LocaleEN, "go-en", 2, "go"), testPost(LocaleEN, "web-en", 1, "web")},
		LocaleRU: {testPost(LocaleRU, "go-ru", 1, "go")},
	}}
}

func TestListCacheLoadsOncePerLocale(t *testing.T) {
	src := newCountingSource()
	c := NewListCache(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		posts, err := c.ListPosts(ctx, LocaleEN, "")
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	}
	assert.Equal(t, 1, src.loadCount())

	posts, err := c.ListPosts(ctx, LocaleRU, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, LocaleRU, posts[0].Locale)
	assert.Equal(t, 2, src.loadCount())
}

func TestListCacheFiltersByTag(t *testing.T) {
	c := NewListCache(newCountingSource(), time.Minute)

	posts, err := c.ListPosts(context.Background(), LocaleEN, " GO ")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "go-en", posts[0].Slug)

	posts, err = c.ListPosts(context.Background(), LocaleEN, "rust")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListCacheTags(t *testing.T) {
	c := NewListCache(newCountingSource(), time.Minute)
	tags, err := c.ListTags(context.Background(), LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)
}

func TestListCacheInvalidate(t *testing.T) {
	src := newCountingSource()
	c := NewListCache(src, time.Hour)
	ctx := context.Background()

	_, err := c.ListPosts(ctx, LocaleEN, "")
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.ListPosts(ctx, LocaleEN, "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.loadCount())
}

func TestListCacheExpires(t *testing.T) {
	src := newCountingSource()
	c := NewListCache(src, time.Millisecond)
	ctx := context.Background()

	_, err := c.ListPosts(ctx, LocaleEN, "")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = c.ListPosts(ctx, LocaleEN, "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.loadCount())
}

func TestListCacheErrors(t *testing.T) {
	src := newCountingSource()
	src.err = errors.New("database is locked")
	c := NewListCache(src, time.Minute)
	ctx := context.Background()

	_, err := c.ListPosts(ctx, LocaleEN, "")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = c.ListPosts(ctx, "fr", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.ListTags(ctx, "fr")
	assert.ErrorIs(t, err, ErrNotFound)

	// failures are not cached
	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	posts, err := c.ListPosts(ctx, LocaleEN, "")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestListCacheTagError(t *testing.T) {
	src := newCountingSource()
	src.tagErr = errors.New("boom")
	c := NewListCache(src, time.Minute)

	_, err := c.ListTags(context.Background(), LocaleEN)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestListCacheConcurrentReaders(t *testing.T) {
	src := newCountingSource()
	c := NewListCache(src, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := c.ListPosts(ctx, LocaleEN, "")
			assert.NoError(t, err)
			assert.Len(t, posts, 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, src.loadCount())
}
