package analytics

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/metrics"
)

const saltKey = "hash_salt"

// Hit describes a request for a resolved post.
type Hit struct {
	Locale     string
	Slug       string
	IP         string
	UserAgent  string
	Referrer   string
	DoNotTrack bool
}

// Report is what the admin API returns for a period.
type Report struct {
	Period string    `json:"period"`
	Days   int       `json:"days"`
	Views  *Stats    `json:"views"`
	Bots   *BotStats `json:"bots"`
}

// Tracker records hits and prunes old rows in the background.
type Tracker struct {
	store     *Store
	salt      string
	siteHost  string
	retention time.Duration
	now       func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewTracker loads the installation salt from store, generating one on first
// run. A positive retention starts an hourly prune of older rows.
func NewTracker(ctx context.Context, store *Store, siteHost string, retention time.Duration) (*Tracker, error) {
	salt, err := store.Setting(ctx, saltKey)
	if err != nil {
		return nil, fmt.Errorf("read hash salt: %w", err)
	}
	if salt == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate hash salt: %w", err)
		}
		salt = hex.EncodeToString(b)
		if err := store.SetSetting(ctx, saltKey, salt); err != nil {
			return nil, fmt.Errorf("store hash salt: %w", err)
		}
	}

	t := &Tracker{
		store:     store,
		salt:      salt,
		siteHost:  siteHost,
		retention: retention,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if retention > 0 {
		go t.pruneLoop(time.Hour)
	} else {
		close(t.done)
	}
	return t, nil
}

// Record stores h as a human or crawler view. Requests carrying DNT are
// skipped; the returned bool reports whether a human view was stored.
func (t *Tracker) Record(ctx context.Context, h Hit) (bool, error) {
	if h.DoNotTrack {
		return false, nil
	}
	now := t.now().UTC()
	if name := BotName(h.UserAgent); name != "" {
		err := t.store.SaveBotView(ctx, BotView{
			Locale:    h.Locale,
			Slug:      h.Slug,
			BotName:   name,
			Timestamp: now,
		})
		if err == nil {
			metrics.PostViews.WithLabelValues(h.Locale, metrics.ViewBot).Inc()
		}
		return false, err
	}
	browser, os, device := ParseUserAgent(h.UserAgent)
	err := t.store.SaveView(ctx, View{
		Locale:    h.Locale,
		Slug:      h.Slug,
		VisitorID: VisitorID(t.salt, h.IP, h.UserAgent, now),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Referrer:  CleanReferrer(h.Referrer, t.siteHost),
		Timestamp: now,
	})
	if err != nil {
		return false, err
	}
	metrics.PostViews.WithLabelValues(h.Locale, metrics.ViewHuman).Inc()
	return true, nil
}

// Report aggregates the named period ("today", "week", "month" or "year";
// anything else means "week").
func (t *Tracker) Report(ctx context.Context, period string) (*Report, error) {
	period, days := ParsePeriod(period)
	to := t.now().UTC()
	from := to.AddDate(0, 0, -days)
	if days == 1 {
		from = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	}
	// Include the current second.
	to = to.Add(time.Second)

	views, err := t.store.Stats(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	bots, err := t.store.BotStats(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	return &Report{Period: period, Days: days, Views: views, Bots: bots}, nil
}

// ParsePeriod normalizes a period name and returns its length in days.
func ParsePeriod(period string) (string, int) {
	switch period {
	case "today":
		return period, 1
	case "month":
		return period, 30
	case "year":
		return period, 365
	default:
		return "week", 7
	}
}

// Close stops the prune loop and closes the store.
func (t *Tracker) Close() error {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
	return t.store.Close()
}

func (t *Tracker) pruneLoop(every time.Duration) {
	defer close(t.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		t.prune()
		select {
		case <-t.stop:
			return
		case <-ticker.C:
		}
	}
}

func (t *Tracker) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := t.store.Prune(ctx, t.now().Add(-t.retention))
	if err != nil {
		logger.Warnw("analytics prune failed", "error", err)
		return
	}
	if n > 0 {
		logger.Debugw("analytics pruned", "rows", n)
	}
}
