package manager

// State represents the lifecycle state of the manager.
type State string

const (
	StateReady    State = "ready"
	StateDraining State = "draining"
	StateClosed   State = "closed"
)
