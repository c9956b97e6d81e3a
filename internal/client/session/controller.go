// Package session implements the client's session lifecycle controller. It
// reconciles remote auth-state events, the locally persisted pending email
// verification record and profile completeness into one Phase, and runs
// user actions against it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/client"
	"github.com/dmitrijs2005/tinnitrack/internal/client/services"
	"github.com/dmitrijs2005/tinnitrack/internal/logging"
)

const (
	DefaultPasswordResetRedirect = "tinnitrack://auth/reset"
	DefaultEmailConfirmRedirect  = "tinnitrack://auth/confirm"
)

type Option func(*Controller)

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now for timestamps written to the pending record.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRedirects sets the links embedded in password-reset and verification
// emails. Empty values keep the defaults.
func WithRedirects(passwordReset, emailConfirm string) Option {
	return func(c *Controller) {
		if passwordReset != "" {
			c.resetRedirect = passwordReset
		}
		if emailConfirm != "" {
			c.confirmRedirect = emailConfirm
		}
	}
}

// WithManualBootstrap stops New from bootstrapping in the background; the
// caller runs Bootstrap itself.
func WithManualBootstrap() Option {
	return func(c *Controller) {
		c.manualBootstrap = true
	}
}

// Controller owns the session phase. All state is guarded by one mutex;
// gateway calls are made without holding it.
type Controller struct {
	auth     client.AuthGateway
	profiles client.ProfileGateway
	pending  services.PendingVerificationStore

	log             logging.Logger
	now             func() time.Time
	resetRedirect   string
	confirmRedirect string
	manualBootstrap bool

	mu           sync.Mutex
	state        State
	observers    map[uint64]func(State)
	nextObserver uint64

	listenerMu     sync.Mutex
	listenerCancel context.CancelFunc
	listenerDone   chan struct{}
	closed         bool

	lifetime context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
}

// New starts the auth-state listener and, unless WithManualBootstrap is
// given, bootstraps in the background.
func New(auth client.AuthGateway, profiles client.ProfileGateway, pending services.PendingVerificationStore, opts ...Option) *Controller {
	c := &Controller{
		auth:            auth,
		profiles:        profiles,
		pending:         pending,
		log:             logging.Nop(),
		now:             time.Now,
		resetRedirect:   DefaultPasswordResetRedirect,
		confirmRedirect: DefaultEmailConfirmRedirect,
		state:           State{Phase: PhaseLoading},
		observers:       make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "session")
	c.lifetime, c.stop = context.WithCancel(context.Background())

	c.RestartAuthStateListener()

	if !c.manualBootstrap {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.Bootstrap(c.lifetime)
		}()
	}
	return c
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change, after the lock is
// released. The returned function unregisters fn.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

// mutate applies fn to the state under the lock, then notifies observers.
func (c *Controller) mutate(fn func(s *State)) {
	c.mu.Lock()
	prev := c.state.Phase
	fn(&c.state)
	snapshot := c.state
	observers := make([]func(State), 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.mu.Unlock()

	if snapshot.Phase != prev {
		c.log.Info(context.Background(), "phase changed", "from", prev, "to", snapshot.Phase)
	}
	for _, o := range observers {
		o(snapshot)
	}
}

// Close stops the listener and waits for background work to finish.
func (c *Controller) Close() {
	c.listenerMu.Lock()
	c.closed = true
	c.stopListenerLocked()
	c.listenerMu.Unlock()

	c.stop()
	c.wg.Wait()
}
