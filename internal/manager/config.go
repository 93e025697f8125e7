package manager

import (
	"time"

	"genai/internal/engine"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxInflight   = 1
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 30 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Engine *engine.Engine
	// MaxInflight bounds concurrent generations.
	MaxInflight int
	// MaxQueueDepth bounds requests admitted (waiting plus in flight).
	MaxQueueDepth int
	// MaxWait bounds the time spent waiting for each admission stage.
	MaxWait      time.Duration
	DrainTimeout time.Duration
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:     StateReady,
		engine:    cfg.Engine,
		startTime: time.Now(),
	}
	inflight := cfg.MaxInflight
	if inflight <= 0 {
		inflight = defaultMaxInflight
	}
	depth := cfg.MaxQueueDepth
	if depth <= 0 {
		depth = defaultMaxQueueDepth
	}
	if depth < inflight {
		depth = inflight
	}
	m.genCh = make(chan struct{}, inflight)
	m.queueCh = make(chan struct{}, depth)
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	return m
}
