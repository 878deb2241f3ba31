package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// Store persists views in its own SQLite database so analytics writes never
// contend with content reads.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create analytics dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure analytics schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Timestamps are unix seconds so range filters compare integers.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS views (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    locale TEXT NOT NULL,
    slug TEXT NOT NULL,
    visitor_id TEXT NOT NULL,
    browser TEXT NOT NULL,
    os TEXT NOT NULL,
    device TEXT NOT NULL,
    referrer TEXT NOT NULL,
    ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_views_ts ON views(ts);
CREATE INDEX IF NOT EXISTS idx_views_post ON views(locale, slug);

CREATE TABLE IF NOT EXISTS bot_views (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    locale TEXT NOT NULL,
    slug TEXT NOT NULL,
    bot_name TEXT NOT NULL,
    ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bot_views_ts ON bot_views(ts);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`)
	return err
}

// Setting returns the value stored under key, or "" if none.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// SaveView records a human view.
func (s *Store) SaveView(ctx context.Context, v View) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO views (locale, slug, visitor_id, browser, os, device, referrer, ts)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Locale, v.Slug, v.VisitorID, v.Browser, v.OS, v.Device, v.Referrer, v.Timestamp.Unix())
	return err
}

// SaveBotView records a crawler fetch.
func (s *Store) SaveBotView(ctx context.Context, v BotView) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO bot_views (locale, slug, bot_name, ts) VALUES (?, ?, ?, ?)`,
		v.Locale, v.Slug, v.BotName, v.Timestamp.Unix())
	return err
}

// Prune deletes every view recorded before cutoff and reports how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"views", "bot_views"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE ts < ?`, cutoff.Unix())
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// Stats aggregates human views in [from, to). Independent queries run
// concurrently; each writes only its own field.
func (s *Store) Stats(ctx context.Context, from, to time.Time, limit int) (*Stats, error) {
	st := &Stats{From: from, To: to}
	lo, hi := from.Unix(), to.Unix()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COUNT(DISTINCT visitor_id) FROM views WHERE ts >= ? AND ts < ?`, lo, hi).
			Scan(&st.TotalViews, &st.UniqueVisitors)
	})
	g.Go(func() (err error) {
		st.TopPosts, err = s.topPosts(ctx, "views", lo, hi, limit)
		return err
	})
	for _, d := range []struct {
		column string
		dst    *[]DimensionStat
	}{
		{"browser", &st.Browsers},
		{"os", &st.OS},
		{"device", &st.Devices},
		{"referrer", &st.Referrers},
	} {
		d := d
		g.Go(func() (err error) {
			*d.dst, err = s.dimension(ctx, "views", d.column, lo, hi, limit)
			return err
		})
	}
	g.Go(func() (err error) {
		st.DailyViews, err = s.daily(ctx, lo, hi)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analytics stats: %w", err)
	}
	return st, nil
}

// BotStats aggregates crawler fetches in [from, to).
func (s *Store) BotStats(ctx context.Context, from, to time.Time, limit int) (*BotStats, error) {
	bs := &BotStats{}
	lo, hi := from.Unix(), to.Unix()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM bot_views WHERE ts >= ? AND ts < ?`, lo, hi).Scan(&bs.TotalVisits)
	})
	g.Go(func() (err error) {
		bs.TopBots, err = s.dimension(ctx, "bot_views", "bot_name", lo, hi, limit)
		return err
	})
	g.Go(func() (err error) {
		bs.TopPosts, err = s.topPosts(ctx, "bot_views", lo, hi, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analytics bot stats: %w", err)
	}
	return bs, nil
}

// table and column are package constants, never request input.
func (s *Store) topPosts(ctx context.Context, table string, lo, hi int64, limit int) ([]PostStat, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT locale, slug, COUNT(*) AS n FROM `+table+`
WHERE ts >= ? AND ts < ?
GROUP BY locale, slug ORDER BY n DESC, locale, slug LIMIT ?`, lo, hi, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PostStat{}
	for rows.Next() {
		var p PostStat
		if err := rows.Scan(&p.Locale, &p.Slug, &p.Views); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) dimension(ctx context.Context, table, column string, lo, hi int64, limit int) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+column+`, COUNT(*) AS n FROM `+table+`
WHERE ts >= ? AND ts < ?
GROUP BY `+column+` ORDER BY n DESC, `+column+` LIMIT ?`, lo, hi, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) daily(ctx context.Context, lo, hi int64) ([]DailyView, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT strftime('%Y-%m-%d', ts, 'unixepoch') AS day, COUNT(*) FROM views
WHERE ts >= ? AND ts < ?
GROUP BY day ORDER BY day`, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DailyView{}
	for rows.Next() {
		var d DailyView
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
