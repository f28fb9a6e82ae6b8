// Package credential checks SIA licences, officer qualifications and insurance
// against per-tier requirement tables, and scores officer fitness.
package credential

import (
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/protectwatch/internal/catalog"
)

// Engine evaluates officers against one catalog.
type Engine struct {
	cat           *catalog.CredentialCatalog
	registry      Registry
	now           func() time.Time
	logger        *zap.Logger
	lookupTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the simulated register.
func WithRegistry(r Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger used for register failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLookupTimeout bounds each register lookup. Zero leaves it to the caller's ctx.
func WithLookupTimeout(d time.Duration) Option {
	return func(e *Engine) { e.lookupTimeout = d }
}

// New creates an Engine. Without WithRegistry it uses a SimulatedRegistry.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		cat:    &cat.Credentials,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewSimulatedRegistry(cat.Credentials).WithClock(e.now)
	}
	return e
}
