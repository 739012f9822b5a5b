package services

import (
	"context"
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// DefaultDispatchTimeout bounds a single delivery attempt.
const DefaultDispatchTimeout = 15 * time.Second

// DispatchService hands reports to the notification channel.
// Failures are logged and reported as false, never returned.
type DispatchService struct {
	notifier driven.Notifier
	timeout  time.Duration
	observer driven.Observer
}

// NewDispatchService creates a new dispatch service.
// The notifier may be nil, in which case every Send reports false.
func NewDispatchService(notifier driven.Notifier, timeout time.Duration) *DispatchService {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &DispatchService{notifier: notifier, timeout: timeout}
}

// SetObserver sets the metrics sink.
func (d *DispatchService) SetObserver(o driven.Observer) {
	d.observer = o
}

// Send delivers the report and returns true on confirmed hand-off.
func (d *DispatchService) Send(ctx context.Context, subject, body string) bool {
	ok := d.send(ctx, subject, body)
	if d.observer != nil {
		d.observer.ObserveDispatch(ok)
	}
	return ok
}

func (d *DispatchService) send(ctx context.Context, subject, body string) bool {
	if d.notifier == nil {
		logger.Warn("dispatch %q skipped: no notifier configured", subject)
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.notifier.Send(sendCtx, driven.Message{Subject: subject, Body: body}); err != nil {
		logger.Error("dispatch %q failed: %v", subject, err)
		return false
	}

	logger.Info("Dispatched %q", subject)
	return true
}
