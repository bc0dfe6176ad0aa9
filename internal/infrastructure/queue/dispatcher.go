package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tenantcore/platform/internal/core/ports"
	"github.com/tenantcore/platform/internal/infrastructure/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	persistTimeout = 10 * time.Second
)

// ErrClosed is returned by Enqueue once Stop has been called.
var ErrClosed = errors.New("notification dispatcher stopped")

// Dispatcher persists notifications on a fixed set of workers, sharded by
// tenant id so notifications of one tenant are stored in the order produced.
// Everything accepted by Enqueue is persisted before Stop returns.
type Dispatcher struct {
	workers []chan ports.NotificationInput
	service ports.NotificationService
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.NotificationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.NotificationInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotificationInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx only provides values to the
// persistence calls; its cancellation does not stop the workers, Stop does.
func (d *Dispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(base, i, ch)
	}
}

// Stop refuses new notifications, lets every worker drain its buffer and
// blocks until all of them have returned. Calling Stop twice is safe.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue hands a notification to the worker owning its tenant. It blocks
// once that worker's buffer is full and fails with ErrClosed after Stop.
func (d *Dispatcher) Enqueue(n ports.NotificationInput) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	idx := d.shardIndex(n.TenantID)
	d.workers[idx] <- n
	metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// shardIndex maps a tenant id deterministically to a worker index.
func (d *Dispatcher) shardIndex(tenantID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NotificationInput) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for n := range ch {
		metrics.NotificationsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.persist(ctx, id, n)
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, n ports.NotificationInput) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if _, err := d.service.Create(ctx, n); err != nil {
		metrics.NotificationsErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("notification_id", n.ID).
			Str("tenant_id", n.TenantID).
			Int("worker_id", id).
			Msg("notification persistence failed")
	}
}
