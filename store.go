package folio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const dateLayout = time.RFC3339

const postColumns = `p.locale, p.slug, p.title, p.excerpt, p.content, p.cover_image,
	p.author_id, COALESCE(a.name, ''), COALESCE(a.picture, ''), p.tags, p.date, p.published`

const postFrom = `FROM posts p LEFT JOIN authors a ON a.id = p.author_id`

// Store wraps a SQLite database holding posts and authors for every locale.
// It satisfies ContentStore.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// WAL lets readers proceed while the admin API writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY. DSN pragmas apply to
	// every pooled connection.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS authors (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    picture TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS posts (
    locale TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    cover_image TEXT NOT NULL DEFAULT '',
    author_id TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (locale, slug)
);
CREATE INDEX IF NOT EXISTS idx_posts_locale_date ON posts(locale, published, date);
`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		locale, slug, title, excerpt, content, coverImage string
		authorID, authorName, authorPicture, tags, date   string
		published                                         int
	)
	if err := row.Scan(&locale, &slug, &title, &excerpt, &content, &coverImage,
		&authorID, &authorName, &authorPicture, &tags, &date, &published); err != nil {
		return Post{}, err
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return Post{}, fmt.Errorf("post %s/%s: parse date %q: %w", locale, slug, date, err)
	}
	return Post{
		Slug:       slug,
		Locale:     Locale(locale),
		Title:      title,
		Excerpt:    excerpt,
		Content:    content,
		CoverImage: coverImage,
		Author: Author{
			ID:      authorID,
			Name:    authorName,
			Picture: authorPicture,
		},
		Date:      t,
		Tags:      ParseTags(tags),
		Published: published == 1,
	}, nil
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) queryPost(ctx context.Context, query string, args ...any) (*Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPostBySlug returns the published post addressed by (locale, slug), or
// nil without error when there is none.
func (s *Store) GetPostBySlug(ctx context.Context, slug string, locale Locale) (*Post, error) {
	return s.queryPost(ctx, `SELECT `+postColumns+` `+postFrom+`
		WHERE p.locale = ? AND p.slug = ? AND p.published = 1`, string(locale), slug)
}

// GetAllPosts returns every published post of locale, newest first.
func (s *Store) GetAllPosts(ctx context.Context, locale Locale) ([]Post, error) {
	return s.ListPosts(ctx, locale, "")
}

// ListPosts returns published posts of locale ordered by date descending.
// If tag is non-empty, results are filtered to posts containing that tag.
func (s *Store) ListPosts(ctx context.Context, locale Locale, tag string) ([]Post, error) {
	if tag == "" {
		return s.queryPosts(ctx, `SELECT `+postColumns+` `+postFrom+`
			WHERE p.locale = ? AND p.published = 1 ORDER BY p.date DESC, p.slug`, string(locale))
	}
	return s.queryPosts(ctx, `SELECT `+postColumns+` `+postFrom+`
		WHERE p.locale = ? AND p.published = 1 AND instr(p.tags, ',' || ? || ',') > 0
		ORDER BY p.date DESC, p.slug`, string(locale), normalizeTag(tag))
}

// ListTags returns a sorted, deduplicated slice of all tags from published
// posts of locale.
func (s *Store) ListTags(ctx context.Context, locale Locale) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM posts WHERE locale = ? AND published = 1`, string(locale))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPostAny returns a post regardless of published status (for admin).
func (s *Store) GetPostAny(ctx context.Context, locale Locale, slug string) (*Post, error) {
	return s.queryPost(ctx, `SELECT `+postColumns+` `+postFrom+`
		WHERE p.locale = ? AND p.slug = ?`, string(locale), slug)
}

// ListAllPosts returns every post (published and drafts) of every locale,
// newest first.
func (s *Store) ListAllPosts(ctx context.Context) ([]Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` `+postFrom+` ORDER BY p.date DESC, p.locale, p.slug`)
}

// SavePost upserts a post and its author. Tags are normalized to lowercase.
// Authors are shared across posts and locales, so an empty picture keeps the
// stored one.
func (s *Store) SavePost(ctx context.Context, p Post) error {
	if !p.Locale.Valid() {
		return fmt.Errorf("save post %q: unsupported locale %q", p.Slug, p.Locale)
	}
	if !ValidSlug(p.Slug) {
		return fmt.Errorf("save post %q: %w", p.Slug, ErrInvalidSlug)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	authorID := authorKey(p.Author)
	if authorID != "" {
		if _, err := tx.ExecContext(ctx, `INSERT INTO authors (id, name, picture) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				picture = COALESCE(NULLIF(excluded.picture, ''), authors.picture)`,
			authorID, p.Author.Name, p.Author.Picture); err != nil {
			return fmt.Errorf("save author %q: %w", authorID, err)
		}
	}

	published := 0
	if p.Published {
		published = 1
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO posts
		(locale, slug, title, excerpt, content, cover_image, author_id, tags, date, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Locale), p.Slug, p.Title, p.Excerpt, p.Content, p.CoverImage,
		authorID, joinTagColumn(p.Tags), p.Date.UTC().Format(dateLayout), published); err != nil {
		return fmt.Errorf("save post %s/%s: %w", p.Locale, p.Slug, err)
	}
	return tx.Commit()
}

// DeletePost removes the post addressed by (locale, slug).
func (s *Store) DeletePost(ctx context.Context, locale Locale, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE locale = ? AND slug = ?`, string(locale), slug)
	return err
}

// authorKey returns the stored id for a, deriving one from the name when the
// caller did not set it.
func authorKey(a Author) string {
	if id := strings.TrimSpace(a.ID); id != "" {
		return id
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ""
	}
	if slug := Slugify(name); slug != "" {
		return slug
	}
	return strings.ToLower(name)
}

func joinTagColumn(tags []string) string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	if len(normalized) == 0 {
		return ""
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
