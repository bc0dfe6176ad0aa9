package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/infrastructure/metrics"
)

const defaultLoadTimeout = 10 * time.Second

// Source produces the full set of module descriptors.
type Source interface {
	Fetch(ctx context.Context) ([]domain.ModuleDescriptor, error)
}

// LoadHook is called after every successful load with the number of modules.
type LoadHook func(ctx context.Context, count int)

// Loader populates a Registry from a Source. Concurrent Load calls share a
// single fetch; the registry is only ever swapped as a whole.
//
// Fetch-and-swap is a critical section: Register waits for it, so a
// descriptor registered while a load is in flight is applied after the swap
// instead of being overwritten by the older snapshot.
type Loader struct {
	registry *Registry
	source   Source
	timeout  time.Duration
	group    singleflight.Group
	sem      chan struct{}
	hooks    []LoadHook
	log      zerolog.Logger
}

// NewLoader creates a Loader. A non-positive timeout falls back to 10s.
func NewLoader(r *Registry, src Source, timeout time.Duration, log zerolog.Logger) *Loader {
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	return &Loader{
		registry: r,
		source:   src,
		timeout:  timeout,
		sem:      make(chan struct{}, 1),
		log:      log,
	}
}

// Register adds or replaces a single descriptor. It waits for any in-flight
// load to finish swapping first, or until ctx is done.
func (l *Loader) Register(ctx context.Context, d domain.ModuleDescriptor) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.release()
	return l.registry.Register(d)
}

func (l *Loader) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) release() { <-l.sem }

// OnLoad registers a hook run after each successful load.
func (l *Loader) OnLoad(h LoadHook) {
	l.hooks = append(l.hooks, h)
}

// Load fetches all descriptors and replaces the registry content. Callers that
// arrive while a load is in flight wait for it and receive its result. The
// shared fetch is bounded by the loader timeout and does not inherit the
// cancellation of whichever caller started it; each caller still stops
// waiting when its own ctx is done.
func (l *Loader) Load(ctx context.Context) (int, error) {
	ch := l.group.DoChan("load", func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

func (l *Loader) load(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	n, start, err := l.swap(ctx)
	if err != nil {
		return 0, err
	}
	l.log.Info().Int("modules", n).Dur("took", time.Since(start)).Msg("module registry loaded")

	for _, h := range l.hooks {
		h(ctx, n)
	}
	return n, nil
}

// swap runs fetch and replace while holding the write semaphore.
func (l *Loader) swap(ctx context.Context) (int, time.Time, error) {
	start := time.Now()
	if err := l.acquire(ctx); err != nil {
		return 0, start, fmt.Errorf("load modules: %w", err)
	}
	defer l.release()

	descs, err := l.source.Fetch(ctx)
	if err == nil {
		err = l.registry.ReplaceAll(descs)
	}
	metrics.ModuleLoadDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ModuleLoadsTotal.WithLabelValues("error").Inc()
		l.log.Error().Err(err).Int("kept", l.registry.Len()).Msg("module load failed, registry unchanged")
		return 0, start, fmt.Errorf("load modules: %w", err)
	}

	n := l.registry.Len()
	metrics.ModuleLoadsTotal.WithLabelValues("ok").Inc()
	metrics.ModulesRegistered.Set(float64(n))
	return n, start, nil
}
