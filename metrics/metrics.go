// Package metrics provides Prometheus metrics for the site: HTTP traffic,
// post resolution outcomes, Markdown rendering, notification delivery and
// recorded post views.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "folio"

// Post resolution outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Notification outcomes.
const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifyDropped = "dropped"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	PostResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "posts",
			Name:      "resolutions_total",
			Help:      "Post resolutions by outcome",
		},
		[]string{"outcome"},
	)

	MarkdownRenderSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "posts",
			Name:      "markdown_render_seconds",
			Help:      "Time spent converting post bodies to HTML",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Contact and feedback messages by kind and delivery outcome",
		},
		[]string{"kind", "outcome"},
	)

	PostViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "post_views_total",
			Help:      "Recorded post views by locale and visitor kind",
		},
		[]string{"locale", "kind"},
	)
)

// Visitor kinds for PostViews.
const (
	ViewHuman = "human"
	ViewBot   = "bot"
)
