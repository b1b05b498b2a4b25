package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riaz37/meetgenie-sub001/pkg/log"
)

// State tracks where the registry is in its lifecycle. Ready is entered
// even when some platforms fail authentication; a vendor outage never
// blocks the others.
type State int32

const (
	StateEmpty State = iota
	StatePopulated
	StateAuthenticating
	StateReady
	StateShuttingDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting_down"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Registry holds the adapter for each platform and the last-known
// connection status per platform.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Platform]Adapter
	statuses map[Platform]ConnectionStatus
	state    State

	probeTimeout time.Duration
}

// NewRegistry creates an empty registry. probeTimeout bounds every
// authentication attempt and health probe dispatched through it.
func NewRegistry(probeTimeout time.Duration) *Registry {
	return &Registry{
		adapters:     make(map[Platform]Adapter),
		statuses:     make(map[Platform]ConnectionStatus),
		state:        StateEmpty,
		probeTimeout: probeTimeout,
	}
}

// Register adds an adapter keyed by its platform. Re-registration is
// last-write-wins: restart and reload flows replace the previous adapter,
// with a warning so the duplication is visible.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state >= StateShuttingDown {
		return ErrRegistryClosed
	}

	p := a.Platform()
	if _, exists := r.adapters[p]; exists {
		log.Warnf("Adapter for platform %s already registered, replacing", p)
	}
	r.adapters[p] = a
	r.statuses[p] = ConnectionStatus{}
	r.state = StatePopulated

	log.Infof("Registered adapter for platform: %s", p)
	return nil
}

// Get returns the adapter for a platform.
func (r *Registry) Get(p Platform) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.adapters[p]
	if !exists {
		return nil, ErrNotRegistered
	}
	return a, nil
}

// Platforms returns the registered platforms in unspecified order.
func (r *Registry) Platforms() []Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Platform, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	return out
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Authenticate runs the adapter's authentication with a bounded timeout and
// folds the outcome into the platform's ConnectionStatus. Failure is a
// reported false, never an error control path: one platform failing to
// authenticate must not abort initialization of the others.
func (r *Registry) Authenticate(ctx context.Context, p Platform, creds Credentials) bool {
	return r.authenticate(ctx, p, creds) == nil
}

func (r *Registry) authenticate(ctx context.Context, p Platform, creds Credentials) error {
	a, err := r.Get(p)
	if err != nil {
		r.setStatus(p, ConnectionStatus{LastError: err.Error()})
		return err
	}

	authCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	if err := a.Authenticate(authCtx, creds); err != nil {
		authErr := &AuthError{Platform: p, Err: err}
		log.WithError(authErr).Warnf("Authentication failed for platform: %s", p)
		r.setStatus(p, ConnectionStatus{LastError: err.Error()})
		return authErr
	}

	now := time.Now()
	r.setStatus(p, ConnectionStatus{Connected: true, LastConnectedAt: &now})
	log.Infof("Authenticated platform: %s", p)
	return nil
}

// AuthenticateAll authenticates every registered platform concurrently and
// joins at a barrier. Platforms without configured credentials are marked
// disconnected; any subset may fail and the registry still becomes Ready.
// The returned map holds one outcome per attempted platform (nil means
// success); platforms without credentials are not attempted.
func (r *Registry) AuthenticateAll(ctx context.Context, creds map[Platform]Credentials) map[Platform]error {
	r.mu.Lock()
	if r.state >= StateShuttingDown {
		r.mu.Unlock()
		return nil
	}
	r.state = StateAuthenticating
	platforms := make([]Platform, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, p)
	}
	r.mu.Unlock()

	var (
		wg        sync.WaitGroup
		resultsMu sync.Mutex
		results   = make(map[Platform]error)
	)
	for _, p := range platforms {
		c, ok := creds[p]
		if !ok || c.IsZero() {
			r.setStatus(p, ConnectionStatus{LastError: "no credentials configured"})
			log.Infof("No credentials configured for platform: %s", p)
			continue
		}

		wg.Add(1)
		go func(p Platform, c Credentials) {
			defer wg.Done()
			err := r.authenticate(ctx, p, c)
			resultsMu.Lock()
			results[p] = err
			resultsMu.Unlock()
		}(p, c)
	}
	wg.Wait()

	r.mu.Lock()
	if r.state == StateAuthenticating {
		r.state = StateReady
	}
	r.mu.Unlock()

	log.Infof("Adapter registry ready with %d platform(s)", len(platforms))
	return results
}

// Statuses probes all registered adapters concurrently and returns one
// entry per platform. A probe failure produces a disconnected entry with
// the captured cause rather than omitting the platform. A registry that
// has begun shutting down is not probed; the last-known statuses are
// returned instead.
func (r *Registry) Statuses(ctx context.Context) map[Platform]ConnectionStatus {
	r.mu.RLock()
	if r.state >= StateShuttingDown {
		out := make(map[Platform]ConnectionStatus, len(r.statuses))
		for p, s := range r.statuses {
			out[p] = s
		}
		r.mu.RUnlock()
		return out
	}
	adapters := make(map[Platform]Adapter, len(r.adapters))
	for p, a := range r.adapters {
		adapters[p] = a
	}
	r.mu.RUnlock()

	type probeResult struct {
		platform Platform
		status   ConnectionStatus
	}

	results := make(chan probeResult, len(adapters))
	var wg sync.WaitGroup
	for p, a := range adapters {
		wg.Add(1)
		go func(p Platform, a Adapter) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
			defer cancel()

			if err := a.HealthProbe(probeCtx); err != nil {
				results <- probeResult{p, ConnectionStatus{LastError: err.Error()}}
				return
			}
			now := time.Now()
			results <- probeResult{p, ConnectionStatus{Connected: true, LastConnectedAt: &now}}
		}(p, a)
	}
	wg.Wait()
	close(results)

	out := make(map[Platform]ConnectionStatus, len(adapters))
	for res := range results {
		r.setStatus(res.platform, res.status)
		out[res.platform] = res.status
	}
	return out
}

// Shutdown tears down every adapter, proceeding through all of them
// regardless of individual failures. Collected errors are returned for
// reporting; callers log them rather than aborting.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.state >= StateShuttingDown {
		r.mu.Unlock()
		return nil
	}
	r.state = StateShuttingDown
	adapters := make(map[Platform]Adapter, len(r.adapters))
	for p, a := range r.adapters {
		adapters[p] = a
	}
	r.mu.Unlock()

	log.Info("Shutting down adapter registry")

	var errs []error
	for p, a := range adapters {
		if err := a.Shutdown(ctx); err != nil {
			log.WithError(err).Errorf("Error shutting down adapter for platform: %s", p)
			errs = append(errs, fmt.Errorf("platform %s: %w", p, err))
		}
	}

	r.mu.Lock()
	r.state = StateClosed
	r.mu.Unlock()

	log.Info("Adapter registry shutdown complete")

	if len(errs) > 0 {
		return &ShutdownError{Errors: errs}
	}
	return nil
}

func (r *Registry) setStatus(p Platform, s ConnectionStatus) {
	r.mu.Lock()
	r.statuses[p] = s
	r.mu.Unlock()
}
