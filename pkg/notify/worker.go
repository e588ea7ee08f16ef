package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Worker drains the notification outbox. It polls for queued notifications
// and pushes them through the configured Sender, requeueing failures until
// they exhaust their attempts.
type Worker struct {
	store  *Store
	sender Sender
	cfg    *Config
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewWorker creates a new outbox worker.
func NewWorker(store *Store, sender Sender, cfg *Config, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Worker{store: store, sender: sender, cfg: cfg, logger: logger}
}

// Run starts the worker and its retention loop. It blocks until the context
// is cancelled, then waits for in-flight sends to finish.
func (w *Worker) Run(ctx context.Context) {
	if w.store == nil || !w.cfg.Enabled {
		w.logger.Info("notification worker disabled")
		return
	}

	w.logger.Info("notification worker starting",
		"pollInterval", w.cfg.PollInterval.String(),
		"maxAttempts", w.cfg.MaxAttempts)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.retentionLoop(ctx)
	}()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.sendLoop(ctx)
	}()

	<-ctx.Done()
	w.logger.Info("notification worker shutting down")
	w.wg.Wait()
	w.logger.Info("notification worker stopped")
}

// sendLoop is the main polling loop.
func (w *Worker) sendLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain processes queued notifications until the outbox is empty, a
// delivery fails, or the context is cancelled. Stopping on failure keeps a
// requeued notification from being hammered in a tight loop; it waits for
// the next poll tick instead.
func (w *Worker) Drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := w.store.Claim()
		if err != nil {
			w.logger.Error("failed to claim notification", "error", err)
			return
		}
		if n == nil {
			return
		}
		if !w.deliver(ctx, n) {
			return
		}
	}
}

// deliver sends one claimed notification and records the outcome. It
// reports whether the delivery succeeded.
func (w *Worker) deliver(ctx context.Context, n *Notification) bool {
	if err := w.sender.Send(ctx, n); err != nil {
		w.logger.Error("notification delivery failed",
			"id", n.ID,
			"recipient", n.Recipient,
			"attempt", n.Attempts,
			"error", err)
		if failErr := w.store.Fail(n.ID, err.Error(), w.cfg.MaxAttempts); failErr != nil {
			w.logger.Error("failed to record notification failure", "id", n.ID, "error", failErr)
		}
		return false
	}

	if err := w.store.MarkSent(n.ID); err != nil {
		w.logger.Error("failed to mark notification sent", "id", n.ID, "error", err)
		return true
	}
	w.logger.Info("notification sent", "id", n.ID, "recipient", n.Recipient, "subject", n.Subject)
	return true
}

// retentionLoop periodically removes old terminal notifications.
func (w *Worker) retentionLoop(ctx context.Context) {
	if w.cfg.RetentionDays <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -w.cfg.RetentionDays)
			deleted, err := w.store.DeleteOlderThan(cutoff)
			if err != nil {
				w.logger.Error("notification retention cleanup failed", "error", err)
			} else if deleted > 0 {
				w.logger.Info("notification retention cleanup completed", "deleted", deleted)
			}
		}
	}
}
