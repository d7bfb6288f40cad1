package capability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Installer makes the external resource available in the hosting environment
// and can remove a stale reference so a later attempt starts clean.
// Install blocks until the completion signal of the underlying fetch; it must
// clean up after itself on failure. Uninstall is idempotent.
type Installer interface {
	Install(ctx context.Context, key string) error
	Uninstall(ctx context.Context) error
}

// Readiness reports whether the full capability (base module plus required
// sub-modules) is actually usable, not just that a fetch completed.
// It must be pure and cheap; the loader re-evaluates it on every completion.
type Readiness func() bool

// Subscriber receives a state snapshot on every transition.
type Subscriber func(State)

// Loader is the singleton loader core. Exactly one instance exists per
// process; it is constructed once in main and injected into consumers.
// Only the Loader mutates status, key and error.
type Loader struct {
	installer Installer
	ready     Readiness
	logger    *zap.Logger
	metrics   *Metrics
	tracer    trace.Tracer

	mu    sync.Mutex
	state State

	group singleflight.Group
	subs  cmap.ConcurrentMap[string, Subscriber]
}

// NewLoader creates the loader core. metrics may be nil (tests).
func NewLoader(installer Installer, ready Readiness, logger *zap.Logger, metrics *Metrics) *Loader {
	return &Loader{
		installer: installer,
		ready:     ready,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("map-manager/capability"),
		subs:      cmap.New[Subscriber](),
	}
}

// State returns a read-only snapshot.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Subscribe registers fn for every state transition and returns the matching
// unsubscribe function. fn is invoked once immediately with the current state
// so late subscribers do not miss an already-completed load. There is no
// ordering contract between subscribers.
func (l *Loader) Subscribe(fn Subscriber) (unsubscribe func()) {
	id := uuid.NewString()
	l.subs.Set(id, fn)
	l.metrics.SetSubscribers(l.subs.Count())
	fn(l.State())
	return func() {
		l.subs.Remove(id)
		l.metrics.SetSubscribers(l.subs.Count())
	}
}

// EnsureLoaded makes sure the capability identified by key is loaded and
// returns a channel that delivers the outcome of the attempt exactly once.
//
// Concurrent calls with the same key share a single installation attempt and
// observe the same outcome. A call after a failure returns the recorded
// error without retrying; callers must Reset first. An empty key means the
// credential is not available yet: the call is a no-op that resolves nil and
// leaves the state untouched.
func (l *Loader) EnsureLoaded(ctx context.Context, key string) <-chan error {
	if key == "" {
		return resolved(nil)
	}

	// Fast path: terminal state for this exact key.
	l.mu.Lock()
	st := l.state
	l.mu.Unlock()
	if st.Key == key {
		switch st.Status {
		case StatusLoaded:
			if l.ready() {
				return resolved(nil)
			}
			// Surface regressed underneath us; fall through to a new attempt.
		case StatusFailed:
			return resolved(st.Err)
		}
	}

	ch := l.group.DoChan(key, func() (any, error) {
		return nil, l.load(ctx, key)
	})

	out := make(chan error, 1)
	go func() {
		res := <-ch
		out <- res.Err
		close(out)
	}()
	return out
}

// load runs one installation attempt. It executes inside the singleflight
// group, so at most one attempt per key is in flight.
func (l *Loader) load(ctx context.Context, key string) error {
	// Double-check after winning the flight: a previous attempt may have
	// reached a terminal state between the caller's fast path and here.
	l.mu.Lock()
	st := l.state
	if st.Key == key {
		switch st.Status {
		case StatusLoaded:
			if l.ready() {
				l.mu.Unlock()
				return nil
			}
		case StatusFailed:
			l.mu.Unlock()
			return st.Err
		}
	}
	l.state = State{Status: StatusLoading, Key: key}
	l.mu.Unlock()
	l.metrics.SetState(StatusLoading)
	l.notify(State{Status: StatusLoading, Key: key})

	// Joined callers must observe this attempt's outcome even if the
	// initiating request goes away; installs are not cancellable mid-flight.
	ctx = context.WithoutCancel(ctx)
	ctx, span := l.tracer.Start(ctx, "capability.load",
		trace.WithAttributes(attribute.String("capability.key", maskKey(key))))
	defer span.End()

	start := time.Now()
	l.metrics.IncAttempts()
	l.logger.Info("Loading map capability", zap.String("key", maskKey(key)))

	err := l.installer.Install(ctx, key)
	if err == nil && !l.ready() {
		// The installer signalled completion but the surface is not whole.
		_ = l.installer.Uninstall(ctx)
		err = ErrIncompleteCapability
	}
	l.metrics.ObserveLoad(start, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		l.logger.Error("Map capability load failed",
			zap.String("key", maskKey(key)), zap.Error(err))
		l.transition(State{Status: StatusFailed, Key: key, Err: err})
		return err
	}

	l.logger.Info("Map capability loaded",
		zap.String("key", maskKey(key)), zap.Duration("took", time.Since(start)))
	l.transition(State{Status: StatusLoaded, Key: key})
	return nil
}

// Reset forces the loader back to NotLoaded, clears the recorded key and
// error and removes any stale resource reference. It is the only way out of
// StatusFailed and exists as the precursor to an explicit retry.
func (l *Loader) Reset(ctx context.Context) {
	l.mu.Lock()
	l.state = State{}
	l.mu.Unlock()

	if err := l.installer.Uninstall(ctx); err != nil {
		l.logger.Warn("Uninstall during reset failed", zap.Error(err))
	}
	l.metrics.SetState(StatusNotLoaded)
	l.notify(State{})
}

// Close disposes the loader: the installed resource is removed and all
// subscriptions dropped. Used on process shutdown.
func (l *Loader) Close(ctx context.Context) {
	l.mu.Lock()
	l.state = State{}
	l.mu.Unlock()

	if err := l.installer.Uninstall(ctx); err != nil {
		l.logger.Warn("Uninstall during close failed", zap.Error(err))
	}
	l.subs.Clear()
	l.metrics.SetSubscribers(0)
}

func (l *Loader) transition(st State) {
	l.mu.Lock()
	l.state = st
	l.mu.Unlock()
	l.metrics.SetState(st.Status)
	l.notify(st)
}

// notify pushes st to every current subscriber, synchronously, exactly once.
func (l *Loader) notify(st State) {
	for item := range l.subs.IterBuffered() {
		item.Val(st)
	}
}

func resolved(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}

// maskKey keeps credentials out of logs and traces.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
