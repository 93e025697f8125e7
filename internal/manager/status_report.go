package manager

import (
	"time"

	"genai/pkg/types"
)

// Status builds a status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		State:          string(m.state),
		Inflight:       len(m.genCh),
		MaxInflight:    cap(m.genCh),
		QueueLen:       len(m.queueCh) - len(m.genCh),
		MaxQueueDepth:  cap(m.queueCh),
		LastError:      m.err,
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		RequestsTotal:  m.requestsTotal.Load(),
		RejectedTotal:  m.rejectedTotal.Load(),
		FailuresTotal:  m.failuresTotal.Load(),
	}
	if m.engine != nil {
		resp.MaxTokens = m.engine.MaxTokens()
		resp.StopSequences = m.engine.StopSequences()
	}
	if resp.QueueLen < 0 {
		resp.QueueLen = 0
	}
	return resp
}
