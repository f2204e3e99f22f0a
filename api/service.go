// ABOUTME: Fallback orchestrator: per-operation remote-vs-local decision
// ABOUTME: Owns the usingLocalFallback flag and notifies mode observers
package api

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/remote"
	"github.com/fieldfolio/fieldfolio/store"
)

// Service is the single entry point for every data operation. It tries the
// remote gateway first, falls back to the local engine on transport failure,
// and remembers the degraded state so later calls skip the doomed remote
// attempt until a probe or manual retry clears it.
//
// The flag is owned here, behind Mode/SetLocalFallback, rather than living
// as ambient package state; it is initialized false each session and never
// persisted.
type Service struct {
	gw     *remote.Gateway
	engine *local.Engine
	store  *store.Store
	logger *log.Logger

	mu                 sync.Mutex
	usingLocalFallback bool
	observers          []func(localMode bool)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger overrides the default logger.
func WithServiceLogger(l *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService wires the orchestrator over a gateway and a local engine.
func NewService(gw *remote.Gateway, engine *local.Engine, opts ...ServiceOption) *Service {
	s := &Service{
		gw:     gw,
		engine: engine,
		store:  engine.Store(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the local operations engine (settings upserts, tests).
func (s *Service) Engine() *local.Engine {
	return s.engine
}

// UsingLocalFallback reports the current mode.
func (s *Service) UsingLocalFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usingLocalFallback
}

// SetLocalFallback flips the mode explicitly and notifies observers when the
// value actually changes.
func (s *Service) SetLocalFallback(v bool) {
	s.mu.Lock()
	if s.usingLocalFallback == v {
		s.mu.Unlock()
		return
	}
	s.usingLocalFallback = v
	observers := make([]func(bool), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	if v {
		s.logger.Warn("remote unreachable, switching to local fallback mode")
	} else {
		s.logger.Info("remote connectivity restored, leaving local fallback mode")
	}
	for _, fn := range observers {
		fn(v)
	}
}

// OnModeChange registers an observer invoked after every mode transition.
func (s *Service) OnModeChange(fn func(localMode bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// degrade flips into local fallback after a transport-level failure.
func (s *Service) degrade(op string) {
	s.logger.Warn("remote operation failed at transport level", "op", op)
	s.SetLocalFallback(true)
}
