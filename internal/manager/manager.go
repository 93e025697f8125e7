package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"genai/internal/engine"
)

// zlog is the package logger; silent until SetLogger is called.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the manager.
func SetLogger(l zerolog.Logger) { zlog = l }

type Manager struct {
	mu     sync.RWMutex
	state  State
	engine *engine.Engine
	err    string

	// Queueing primitives
	genCh   chan struct{} // MaxInflight generation slots
	queueCh chan struct{} // MaxQueueDepth admission slots
	maxWait time.Duration

	drainTimeout time.Duration
	startTime    time.Time

	requestsTotal atomic.Uint64
	rejectedTotal atomic.Uint64
	failuresTotal atomic.Uint64
}

// New constructs a Manager over e with package defaults.
func New(e *engine.Engine) *Manager {
	return NewWithConfig(ManagerConfig{Engine: e})
}

// Ready reports whether new requests are accepted.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.engine != nil
}

// CountTokens returns the engine token count for text.
func (m *Manager) CountTokens(text string) (int, error) {
	return m.engine.SizeInTokens(text)
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.err = err.Error()
	m.mu.Unlock()
}
