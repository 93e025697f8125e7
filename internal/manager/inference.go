package manager

import (
	"context"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"genai/internal/engine"
	"genai/pkg/types"
)

// Predict runs one blocking generation on a fresh Session and returns the
// whole output. Admission, session and generation errors are returned as is
// so the HTTP layer can map their status codes.
func (m *Manager) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	m.requestsTotal.Add(1)
	release, err := m.beginGeneration(ctx)
	if err != nil {
		return types.PredictResponse{}, err
	}
	defer release()

	s, err := m.engine.NewSession(engine.SessionConfig{MaxOutputTokens: req.MaxOutputTokens})
	if err != nil {
		return types.PredictResponse{}, err
	}
	defer s.Close()

	start := time.Now()
	resp, err := s.PredictSync(ctx, req.Prompt)
	if err != nil {
		m.failuresTotal.Add(1)
		m.setErr(err)
		zlog.Error().Err(err).Str("session_id", s.ID()).Msg("predict failed")
		return types.PredictResponse{}, err
	}
	out := types.PredictResponse{
		Text:         resp.Text(),
		Done:         true,
		FinishReason: string(resp.FinishReason),
		Usage:        toUsage(resp.Usage),
	}
	resp.Close()
	zlog.Debug().Str("session_id", s.ID()).Str("finish_reason", out.FinishReason).
		Dur("dur", time.Since(start)).Msg("predict done")
	return out, nil
}

// PredictStream runs one generation and writes each flushed chunk as an NDJSON
// types.StreamLine. Errors raised before the first chunk (admission, prompt
// too long, encode) are returned without writing anything. A generation error
// is reported in the final line. After a write error the remaining chunks are
// still drained so the worker is never blocked.
func (m *Manager) PredictStream(ctx context.Context, req types.PredictRequest, w io.Writer, flusher func()) error {
	m.requestsTotal.Add(1)
	release, err := m.beginGeneration(ctx)
	if err != nil {
		return err
	}
	defer release()

	s, err := m.engine.NewSession(engine.SessionConfig{MaxOutputTokens: req.MaxOutputTokens})
	if err != nil {
		return err
	}
	defer s.Close()

	chunks := make(chan *engine.Response, 16)
	if err := s.PredictAsync(ctx, req.Prompt, func(r *engine.Response) { chunks <- r }); err != nil {
		return err
	}

	var werr error
	for r := range chunks {
		line := types.StreamLine{Text: r.Text(), Done: r.Done}
		if r.Done {
			line.FinishReason = string(r.FinishReason)
			u := toUsage(r.Usage)
			line.Usage = &u
			if r.Err != nil {
				line.Error = r.Err.Error()
				m.failuresTotal.Add(1)
				m.setErr(r.Err)
				zlog.Error().Err(r.Err).Str("session_id", s.ID()).Msg("stream generation failed")
			}
		}
		done := r.Done
		r.Close()
		if werr == nil {
			werr = writeLine(w, line)
			if werr == nil && flusher != nil {
				flusher()
			}
		}
		if done {
			break
		}
	}
	return werr
}

func writeLine(w io.Writer, line types.StreamLine) error {
	b, err := json.Marshal(line)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func toUsage(u engine.Usage) types.Usage {
	return types.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
