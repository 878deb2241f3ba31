package notify

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/metrics"
)

// Dispatcher queues messages and delivers them from a single goroutine so
// request handlers never wait on the sink.
type Dispatcher struct {
	sender  Sender
	queue   chan Message
	timeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewDispatcher starts a dispatcher with room for size queued messages.
// Each delivery gets its own timeout.
func NewDispatcher(sender Sender, size int, timeout time.Duration) *Dispatcher {
	if size <= 0 {
		size = 64
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan Message, size),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch enqueues m. It returns false, and drops m, when the queue is full.
// Dispatch must not be called after Close.
func (d *Dispatcher) Dispatch(m Message) bool {
	select {
	case d.queue <- m:
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues(m.Kind, metrics.NotifyDropped).Inc()
		logger.Warnw("notification dropped: queue full", "id", m.ID, "kind", m.Kind)
		return false
	}
}

// Close stops accepting messages and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for m := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sender.Send(ctx, m)
		cancel()
		if err != nil {
			metrics.NotificationsTotal.WithLabelValues(m.Kind, metrics.NotifyFailed).Inc()
			logger.Errorw("notification delivery failed", "id", m.ID, "kind", m.Kind, "error", err)
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(m.Kind, metrics.NotifySent).Inc()
	}
}
