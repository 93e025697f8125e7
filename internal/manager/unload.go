package manager

import (
	"time"
)

// Shutdown stops admitting requests, waits up to the drain timeout for queued
// and in-flight requests to finish, then closes the engine.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return nil
	}
	m.state = StateDraining
	m.mu.Unlock()
	zlog.Info().Msg("drain start")

	deadline := time.Now().Add(m.drainTimeout)
	for {
		qlen := len(m.queueCh)
		if qlen == 0 {
			break
		}
		if time.Now().After(deadline) {
			zlog.Warn().Int("queue", qlen).Int("inflight", len(m.genCh)).Msg("drain timeout")
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	var err error
	if m.engine != nil {
		err = m.engine.Close()
	}
	m.mu.Lock()
	m.state = StateClosed
	m.mu.Unlock()
	zlog.Info().Err(err).Msg("drain end")
	return err
}
