// Package notify sends email off the request path on a bounded worker pool.
package notify

import (
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"storefront/internal/platform/mailer"
)

// Sender delivers one email synchronously.
type Sender interface {
	Send(email mailer.Email) error
}

// Dispatcher queues emails onto an ants pool. Delivery failures are logged, never returned.
type Dispatcher struct {
	sender Sender
	pool   *ants.Pool
}

// NewDispatcher starts a pool with the given number of workers.
func NewDispatcher(sender Sender, workers int) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorw("mail worker panicked", "panic", p)
	}))
	if err != nil {
		return nil, err
	}
	return &Dispatcher{sender: sender, pool: pool}, nil
}

// SendAsync queues an HTML email to a single recipient.
func (d *Dispatcher) SendAsync(to, subject, html string) {
	email := mailer.Email{To: []string{to}, Subject: subject, HTMLBody: html}
	err := d.pool.Submit(func() {
		if err := d.sender.Send(email); err != nil {
			zap.S().Warnw("failed to send email", "to", to, "subject", subject, "error", err)
		}
	})
	if err != nil {
		zap.S().Warnw("failed to queue email", "to", to, "subject", subject, "error", err)
	}
}

// Close waits up to timeout for queued mail, then releases the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
