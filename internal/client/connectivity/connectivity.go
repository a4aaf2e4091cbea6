// Package connectivity decides whether the client should attempt remote
// calls. The sync orchestrator consults the policy before every intent and
// can subscribe to transitions to trigger reconciliation when the server
// comes back.
package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Policy reports server reachability.
type Policy interface {
	// Online is the hint consulted before each intent. It must be cheap;
	// probing policies answer from their last probe, not a fresh request.
	Online() bool

	// Subscribe registers a transition listener and returns its
	// unsubscribe func. The listener receives the new online state.
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// notifier implements listener bookkeeping shared by the policies.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(bool)
}

func (n *notifier) Subscribe(fn func(bool)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func(bool))
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

func (n *notifier) notify(online bool) {
	n.mu.Lock()
	fns := make([]func(bool), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(online)
	}
}

// StaticPolicy is a manually driven policy. The application flips it when
// the user toggles offline mode; tests flip it to script scenarios.
type StaticPolicy struct {
	notifier
	mu     sync.RWMutex
	online bool
}

func NewStaticPolicy(online bool) *StaticPolicy {
	return &StaticPolicy{online: online}
}

func (p *StaticPolicy) Online() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online
}

// SetOnline flips the state, notifying subscribers on a transition.
func (p *StaticPolicy) SetOnline(online bool) {
	p.mu.Lock()
	changed := p.online != online
	p.online = online
	p.mu.Unlock()
	if changed {
		p.notify(online)
	}
}

// Prober is the health check a ProbePolicy runs; the remote client's
// Health method satisfies it.
type Prober interface {
	Health(ctx context.Context) error
}

// ProbePolicy derives reachability from a periodic health probe.
type ProbePolicy struct {
	notifier
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	online bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

type ProbeOption func(*ProbePolicy)

func WithProbeLogger(lg *zap.Logger) ProbeOption {
	return func(p *ProbePolicy) {
		p.logger = lg
	}
}

func WithProbeTimeout(d time.Duration) ProbeOption {
	return func(p *ProbePolicy) {
		p.timeout = d
	}
}

// NewProbePolicy starts probing immediately. The policy is pessimistic: it
// reports offline until the first probe succeeds.
func NewProbePolicy(prober Prober, interval time.Duration, opts ...ProbeOption) *ProbePolicy {
	p := &ProbePolicy{
		prober:   prober,
		interval: interval,
		timeout:  5 * time.Second,
		logger:   zap.NewNop(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.loop()
	return p
}

func (p *ProbePolicy) Online() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online
}

// Close stops the probe loop and waits for it to finish.
func (p *ProbePolicy) Close() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
}

func (p *ProbePolicy) loop() {
	defer close(p.done)

	p.probe()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.probe()
		}
	}
}

func (p *ProbePolicy) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	online := p.prober.Health(ctx) == nil

	p.mu.Lock()
	changed := p.online != online
	p.online = online
	p.mu.Unlock()

	if changed {
		p.logger.Info("connectivity changed", zap.Bool("online", online))
		p.notify(online)
	}
}
