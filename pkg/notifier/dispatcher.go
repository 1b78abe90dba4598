package notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/funding-ledger/pkg/metrics"
)

var (
	// ErrQueueFull is returned by Notify when the delivery queue has no room.
	ErrQueueFull = errors.New("notification queue full")
	// ErrDispatcherClosed is returned by Notify after Shutdown.
	ErrDispatcherClosed = errors.New("notification dispatcher closed")
)

// Config tunes the Dispatcher.
type Config struct {
	QueueSize   int
	Workers     int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// SendTimeout bounds a single delivery attempt.
	SendTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize:   1024,
		Workers:     4,
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		SendTimeout: 5 * time.Second,
	}
}

// Dispatcher is a Notifier that queues notifications and delivers them from a
// pool of workers, retrying with exponential backoff and full jitter.
type Dispatcher struct {
	sender Sender
	cfg    Config

	mu     sync.RWMutex
	closed bool
	queue  chan *deliveryJob
	wg     sync.WaitGroup
	stop   context.CancelFunc

	// OnFailure, when set, receives every notification that exhausted its retries.
	OnFailure func(*NotificationFailure)
}

type deliveryJob struct {
	summary TransactionSummary
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. Call Start before Notify.
func NewDispatcher(sender Sender, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		queue:  make(chan *deliveryJob, cfg.QueueSize),
	}
}

// Start launches the workers. They stop when Shutdown is called or ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.stop = context.WithCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// Notify enqueues a notification without waiting for delivery.
func (d *Dispatcher) Notify(ctx context.Context, accountID string, summary TransactionSummary) error {
	if summary.AccountID == "" {
		summary.AccountID = accountID
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- &deliveryJob{summary: summary}:
		metrics.NotificationQueueDepth.Inc()
		return nil
	default:
		metrics.Notifications.WithLabelValues("dropped").Inc()
		slog.Error("notification queue full, dropping", "transaction_id", summary.TransactionID, "account_id", summary.AccountID)
		return ErrQueueFull
	}
}

// Shutdown stops accepting notifications and waits for queued ones to drain.
// If ctx ends first, in-flight retries are cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if d.stop != nil {
			d.stop()
		}
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for job := range d.queue {
		metrics.NotificationQueueDepth.Dec()
		d.deliver(ctx, job)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, job *deliveryJob) {
	n := Compose(job.summary)

	var lastErr error
	for attempt := 0; attempt < d.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			metrics.Notifications.WithLabelValues("retried").Inc()
			timer := time.NewTimer(retryDelay(d.cfg.BaseDelay, d.cfg.MaxDelay, attempt-1))
			select {
			case <-ctx.Done():
				timer.Stop()
				d.fail(job, attempt, ctx.Err())
				return
			case <-timer.C:
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		lastErr = d.sender.Send(sendCtx, n)
		cancel()
		if lastErr == nil {
			metrics.Notifications.WithLabelValues("delivered").Inc()
			slog.Debug("notification delivered", "transaction_id", n.TransactionID, "attempts", attempt+1)
			return
		}
		slog.Warn("notification delivery failed", "transaction_id", n.TransactionID, "attempt", attempt+1, "error", lastErr)
	}

	d.fail(job, d.cfg.MaxAttempts, lastErr)
}

func (d *Dispatcher) fail(job *deliveryJob, attempts int, err error) {
	failure := &NotificationFailure{
		TransactionID: job.summary.TransactionID,
		AccountID:     job.summary.AccountID,
		Attempts:      attempts,
		Err:           err,
	}
	metrics.Notifications.WithLabelValues("failed").Inc()
	slog.Error("notification failure", "transaction_id", failure.TransactionID, "account_id", failure.AccountID, "attempts", attempts, "error", err)
	if d.OnFailure != nil {
		d.OnFailure(failure)
	}
}
