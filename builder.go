package sessiongate

import (
	"log/slog"

	"github.com/awqef/sessiongate/store"
)

// Builder defines a public type used by sessiongate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config  Config
	backend Backend
	store   store.Store
	sink    EventSink
	logger  *slog.Logger

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBackend describes the withbackend operation and its observable behavior.
//
// WithBackend may return an error when input validation, dependency calls, or security checks fail.
// WithBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore may return an error when input validation, dependency calls, or security checks fail.
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
//
// WithEventSink may return an error when input validation, dependency calls, or security checks fail.
// WithEventSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and assembles the [Manager]. A builder
// is single-use; the second Build returns [ErrAlreadyBuilt].
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	if b.backend == nil {
		return nil, ErrBackendRequired
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	b.built = true

	st := b.store
	if st == nil {
		st = store.NewMemory()
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		config:       b.config,
		backend:      b.backend,
		store:        st,
		logger:       logger.With(slog.String("component", "sessiongate")),
		events:       newEventDispatcher(b.config.Events, b.sink),
		metrics:      NewMetrics(b.config.Metrics),
		unauthorized: make(map[int]func(reason string)),
		done:         make(chan struct{}),
	}
	return m, nil
}
