package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio"
	"github.com/eringen/folio/logger"
)

type frontMatter struct {
	Title         string   `yaml:"title"`
	Excerpt       string   `yaml:"excerpt"`
	Date          string   `yaml:"date"`
	Slug          string   `yaml:"slug"`
	Locale        string   `yaml:"locale"`
	Tags          []string `yaml:"tags"`
	CoverImage    string   `yaml:"cover_image"`
	Author        string   `yaml:"author"`
	AuthorPicture string   `yaml:"author_picture"`
	Published     *bool    `yaml:"published"`
}

var fmDelimiter = []byte("---")

// splitFrontMatter separates a leading "---" delimited YAML block from the
// Markdown body. Files without one have an empty front matter.
func splitFrontMatter(src []byte) (meta, body []byte, err error) {
	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	first, rest, _ := bytes.Cut(src, []byte("\n"))
	if !bytes.Equal(bytes.TrimSpace(first), fmDelimiter) {
		return nil, src, nil
	}
	for off := 0; off <= len(rest); {
		line, _, _ := bytes.Cut(rest[off:], []byte("\n"))
		if bytes.Equal(bytes.TrimSpace(line), fmDelimiter) {
			end := off + len(line)
			if end < len(rest) {
				end++
			}
			return rest[:off], rest[end:], nil
		}
		if off+len(line) >= len(rest) {
			break
		}
		off += len(line) + 1
	}
	return nil, nil, errors.New("unterminated front matter")
}

// parsePost builds a Post from a Markdown file. name is the file's base name
// and fallback the locale used when neither the front matter nor the name
// declares one.
func parsePost(name string, src []byte, fallback folio.Locale) (folio.Post, error) {
	meta, body, err := splitFrontMatter(src)
	if err != nil {
		return folio.Post{}, err
	}
	var fm frontMatter
	if err := yaml.Unmarshal(meta, &fm); err != nil {
		return folio.Post{}, fmt.Errorf("front matter: %w", err)
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	nameLocale := folio.Locale("")
	if stem, ext, ok := cutLastDot(base); ok {
		if l, valid := folio.ParseLocale(ext); valid {
			base, nameLocale = stem, l
		}
	}

	locale := fallback
	switch {
	case fm.Locale != "":
		l, ok := folio.ParseLocale(fm.Locale)
		if !ok {
			return folio.Post{}, fmt.Errorf("unsupported locale %q", fm.Locale)
		}
		locale = l
	case nameLocale != "":
		locale = nameLocale
	}
	if !locale.Valid() {
		return folio.Post{}, errors.New("no locale: set it in front matter, the file name or --locale")
	}

	slug := strings.TrimSpace(fm.Slug)
	if slug != "" && !folio.ValidSlug(slug) {
		return folio.Post{}, fmt.Errorf("slug %q: use lowercase latin letters, digits and single hyphens", slug)
	}
	if slug == "" {
		slug = folio.Slugify(base)
	}
	if slug == "" {
		return folio.Post{}, errors.New("cannot derive a slug; set one in front matter")
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = base
	}

	date, err := parseDate(fm.Date)
	if err != nil {
		return folio.Post{}, err
	}

	published := true
	if fm.Published != nil {
		published = *fm.Published
	}

	return folio.Post{
		Slug:       slug,
		Locale:     locale,
		Title:      title,
		Excerpt:    strings.TrimSpace(fm.Excerpt),
		Content:    strings.TrimLeft(string(body), "\n"),
		CoverImage: strings.TrimSpace(fm.CoverImage),
		Author:     folio.Author{Name: strings.TrimSpace(fm.Author), Picture: strings.TrimSpace(fm.AuthorPicture)},
		Date:       date,
		Tags:       folio.FilterEmpty(fm.Tags),
		Published:  published,
	}, nil
}

func cutLastDot(s string) (before, after string, found bool) {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
}

// postSaver is the part of folio.Store the importer writes to.
type postSaver interface {
	SavePost(ctx context.Context, p folio.Post) error
}

// importDir saves every Markdown file under dir and returns how many were
// imported. It stops at the first invalid file.
func importDir(ctx context.Context, store postSaver, dir string, fallback folio.Locale) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		post, err := parsePost(d.Name(), src, fallback)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := store.SavePost(ctx, post); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Infow("imported post", "file", path, "locale", post.Locale, "slug", post.Slug)
		n++
		return nil
	})
	return n, err
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := folio.LoadConfig(configPath)
	if err != nil {
		return err
	}
	fallback := folio.Locale(importLocale)
	if importLocale != "" && !fallback.Valid() {
		return fmt.Errorf("unsupported locale %q", importLocale)
	}

	store, err := folio.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := importDir(cmd.Context(), store, args[0], fallback)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts into %s\n", n, cfg.DatabasePath)
	return nil
}
