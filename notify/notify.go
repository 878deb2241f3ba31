// Package notify relays contact and feedback messages to the site owner.
// Delivery is fire-and-forget: callers enqueue and return immediately.
package notify

import (
	"context"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message kinds.
const (
	KindContact  = "contact"
	KindFeedback = "feedback"
)

// Message is one submission to forward.
type Message struct {
	ID        string
	Kind      string
	Locale    string
	Fields    map[string]string
	CreatedAt time.Time
}

// NewMessage returns a Message with a fresh reference ID.
func NewMessage(kind, locale string, fields map[string]string) Message {
	return Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Locale:    locale,
		Fields:    fields,
		CreatedAt: time.Now().UTC(),
	}
}

// Text formats m as Telegram HTML: a bold header followed by one line per
// non-empty field, in key order.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString("<b>New ")
	b.WriteString(html.EscapeString(m.Kind))
	b.WriteString("</b>")
	if m.Locale != "" {
		b.WriteString(" [" + html.EscapeString(m.Locale) + "]")
	}
	b.WriteString("\n")

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(m.Fields[k])
		if v == "" {
			continue
		}
		b.WriteString("<b>" + html.EscapeString(k) + ":</b> " + html.EscapeString(v) + "\n")
	}
	b.WriteString("<i>ref " + m.ID + "</i>")
	return b.String()
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
