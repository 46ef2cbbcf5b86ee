// Package notifier pushes the daily budget summary to every opted-in user.
package notifier

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/micanis/bot-pocket-pace/budget"
	"github.com/micanis/bot-pocket-pace/models"
)

// RecordSource is the slice of the record gateway the notifier needs.
type RecordSource interface {
	Fetch(ctx context.Context, userID string) (*models.Record, error)
	ListIDs(ctx context.Context) []string
}

// SendFunc delivers one message to one channel.
type SendFunc func(channelID, content string) error

type Config struct {
	// Hour and Minute are the local wall-clock firing time.
	Hour   int
	Minute int
	// Senders bounds the per-sweep delivery concurrency.
	Senders int
	// Location for the wall-clock; defaults to time.Local.
	Location *time.Location
}

// Metrics is a snapshot of sweep counters, served by the ops endpoints.
type Metrics struct {
	Sweeps            int64     `json:"sweeps"`
	Sent              int64     `json:"sent"`
	Skipped           int64     `json:"skipped"`
	Failed            int64     `json:"failed"`
	LastSweepID       string    `json:"last_sweep_id,omitempty"`
	LastSweepAt       time.Time `json:"last_sweep_at"`
	LastSweepDuration string    `json:"last_sweep_duration,omitempty"`
}

// Notifier fires once per day at the configured time. Instead of polling the
// clock it computes the next firing instant and sleeps until then, so a day
// has exactly one firing by construction. Sweeps never overlap: a sweep still
// running when the next firing arrives makes the new one a no-op.
type Notifier struct {
	source RecordSource
	send   SendFunc
	log    *zap.Logger
	cfg    Config
	now    func() time.Time

	mu       sync.Mutex
	sweeping bool
	metrics  Metrics
}

func New(source RecordSource, send SendFunc, log *zap.Logger, cfg Config) *Notifier {
	if cfg.Senders < 1 {
		cfg.Senders = 4
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Notifier{
		source: source,
		send:   send,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run blocks until ctx is canceled, sweeping once per firing time.
func (n *Notifier) Run(ctx context.Context) {
	n.log.Info("notifier started",
		zap.Int("hour", n.cfg.Hour),
		zap.Int("minute", n.cfg.Minute))

	for {
		next := n.nextFire(n.now())
		timer := time.NewTimer(next.Sub(n.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			n.log.Info("notifier stopped")
			return
		case <-timer.C:
			n.Sweep(ctx)
		}
	}
}

// nextFire returns the next occurrence of the configured wall-clock time
// strictly after now.
func (n *Notifier) nextFire(now time.Time) time.Time {
	now = now.In(n.cfg.Location)
	target := time.Date(now.Year(), now.Month(), now.Day(), n.cfg.Hour, n.cfg.Minute, 0, 0, n.cfg.Location)
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// Sweep walks every stored record once and delivers a projection to each
// opted-in user. Per-user failures are logged and do not abort the sweep.
func (n *Notifier) Sweep(ctx context.Context) {
	n.mu.Lock()
	if n.sweeping {
		n.mu.Unlock()
		n.log.Warn("sweep already in progress, skipping")
		return
	}
	n.sweeping = true
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		n.sweeping = false
		n.mu.Unlock()
	}()

	sweepID := uuid.NewString()
	start := n.now()
	ids := n.source.ListIDs(ctx)
	n.log.Info("sweep started",
		zap.String("sweep_id", sweepID),
		zap.Int("records", len(ids)))

	var sent, skipped, failed atomic.Int64

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < n.cfg.Senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				n.notifyOne(ctx, sweepID, id, &sent, &skipped, &failed)
			}
		}()
	}

	for _, id := range ids {
		select {
		case jobs <- id:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()

	duration := n.now().Sub(start)
	n.mu.Lock()
	n.metrics.Sweeps++
	n.metrics.Sent += sent.Load()
	n.metrics.Skipped += skipped.Load()
	n.metrics.Failed += failed.Load()
	n.metrics.LastSweepID = sweepID
	n.metrics.LastSweepAt = start
	n.metrics.LastSweepDuration = duration.String()
	n.mu.Unlock()

	n.log.Info("sweep finished",
		zap.String("sweep_id", sweepID),
		zap.Int64("sent", sent.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Duration("duration", duration))
}

func (n *Notifier) notifyOne(ctx context.Context, sweepID, userID string, sent, skipped, failed *atomic.Int64) {
	record, err := n.source.Fetch(ctx, userID)
	if err != nil {
		failed.Add(1)
		n.log.Warn("sweep fetch failed",
			zap.String("sweep_id", sweepID),
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	channel := record.Settings.NotificationChannel
	if channel == "" {
		skipped.Add(1)
		return
	}

	if err := n.send(channel, budget.Projection(record, n.now())); err != nil {
		failed.Add(1)
		n.log.Warn("sweep send failed",
			zap.String("sweep_id", sweepID),
			zap.String("user_id", userID),
			zap.String("channel_id", channel),
			zap.Error(err))
		return
	}
	sent.Add(1)
}

// MetricsSnapshot returns a copy of the cumulative sweep counters.
func (n *Notifier) MetricsSnapshot() Metrics {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.metrics
}
