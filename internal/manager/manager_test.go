package manager

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"genai/internal/engine"
	"genai/pkg/types"
)

func decodeLines(t *testing.T, b []byte) []types.StreamLine {
	t.Helper()
	var lines []types.StreamLine
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		var l types.StreamLine
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		lines = append(lines, l)
	}
	return lines
}

func TestPredict_ReturnsWholeOutput(t *testing.T) {
	m := newTestManager(t, &fakeBackend{text: "hello world. more"}, ManagerConfig{}, ".")
	resp, err := m.Predict(context.Background(), types.PredictRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if resp.Text != "hello world" || resp.FinishReason != "stop" || !resp.Done {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Usage.PromptTokens != 3 || resp.Usage.CompletionTokens != 12 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
}

func TestPredict_PromptTooLongAndEncodeErrors(t *testing.T) {
	m := newTestManager(t, &fakeBackend{text: "x"}, ManagerConfig{})
	_, err := m.Predict(context.Background(), types.PredictRequest{Prompt: strings.Repeat("p", 200)})
	if !engine.IsPromptTooLong(err) {
		t.Fatalf("expected prompt too long, got %v", err)
	}
	_, err = m.Predict(context.Background(), types.PredictRequest{Prompt: "\xff"})
	if !engine.IsEncode(err) {
		t.Fatalf("expected encode error, got %v", err)
	}
	_, err = m.Predict(context.Background(), types.PredictRequest{Prompt: "p", MaxOutputTokens: 1000})
	if !engine.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	// admission slots were returned
	if st := m.Status(); st.Inflight != 0 || st.QueueLen != 0 {
		t.Fatalf("slots leaked: %+v", st)
	}
}

func TestPredictStream_WritesNDJSON(t *testing.T) {
	text := strings.Repeat("abcdefghij", 4)
	m := newTestManager(t, &fakeBackend{text: text}, ManagerConfig{})
	var buf bytes.Buffer
	flushes := 0
	if err := m.PredictStream(context.Background(), types.PredictRequest{Prompt: "p"}, &buf, func() { flushes++ }); err != nil {
		t.Fatalf("stream: %v", err)
	}
	lines := decodeLines(t, buf.Bytes())
	if len(lines) == 0 || flushes != len(lines) {
		t.Fatalf("lines=%d flushes=%d", len(lines), flushes)
	}
	var got strings.Builder
	for i, l := range lines {
		got.WriteString(l.Text)
		if l.Done != (i == len(lines)-1) {
			t.Fatalf("done on line %d of %d", i, len(lines))
		}
	}
	last := lines[len(lines)-1]
	if got.String() != text || last.FinishReason != "eos" || last.Usage == nil || last.Error != "" {
		t.Fatalf("stream %q last %+v", got.String(), last)
	}
}

func TestPredictStream_GenerationErrorInFinalLine(t *testing.T) {
	m := newTestManager(t, &fakeBackend{text: "partial output", failAt: 4}, ManagerConfig{})
	var buf bytes.Buffer
	if err := m.PredictStream(context.Background(), types.PredictRequest{Prompt: "p"}, &buf, nil); err != nil {
		t.Fatalf("stream: %v", err)
	}
	lines := decodeLines(t, buf.Bytes())
	last := lines[len(lines)-1]
	if !last.Done || last.Error == "" || last.FinishReason != "error" || last.Text != "part" {
		t.Fatalf("last line %+v", last)
	}
	if st := m.Status(); st.FailuresTotal != 1 || st.LastError == "" {
		t.Fatalf("status %+v", st)
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("client gone")
}

func TestPredictStream_DrainsAfterWriteError(t *testing.T) {
	m := newTestManager(t, &fakeBackend{text: strings.Repeat("z", 60)}, ManagerConfig{})
	w := &failingWriter{}
	err := m.PredictStream(context.Background(), types.PredictRequest{Prompt: "p"}, w, nil)
	if err == nil || w.n != 1 {
		t.Fatalf("err=%v writes=%d", err, w.n)
	}
	// the generation finished and released its slot
	if _, err := m.Predict(context.Background(), types.PredictRequest{Prompt: "p"}); err != nil {
		t.Fatalf("follow-up predict: %v", err)
	}
}

func TestAdmission_TooBusy(t *testing.T) {
	gate := make(chan struct{})
	m := newTestManager(t, &fakeBackend{text: "slow", gate: gate}, ManagerConfig{
		MaxInflight:   1,
		MaxQueueDepth: 1,
		MaxWait:       30 * time.Millisecond,
	})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := m.Predict(context.Background(), types.PredictRequest{Prompt: "a"}); err != nil {
			t.Errorf("first predict: %v", err)
		}
	}()
	deadline := time.Now().Add(2 * time.Second)
	for m.Status().Inflight == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first request never admitted")
		}
		time.Sleep(time.Millisecond)
	}
	_, err := m.Predict(context.Background(), types.PredictRequest{Prompt: "b"})
	if !IsTooBusy(err) {
		t.Fatalf("expected too busy, got %v", err)
	}
	close(gate)
	wg.Wait()
	if st := m.Status(); st.RejectedTotal != 1 {
		t.Fatalf("rejected = %d", st.RejectedTotal)
	}
}

func TestAdmission_CanceledContext(t *testing.T) {
	m := newTestManager(t, &fakeBackend{text: "x"}, ManagerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Predict(ctx, types.PredictRequest{Prompt: "p"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestShutdown_DrainsAndRejects(t *testing.T) {
	m := newTestManager(t, &fakeBackend{text: "bye"}, ManagerConfig{})
	if !m.Ready() {
		t.Fatalf("new manager not ready")
	}
	if _, err := m.Predict(context.Background(), types.PredictRequest{Prompt: "p"}); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if err := m.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if m.Ready() || m.Status().State != string(StateClosed) {
		t.Fatalf("manager still ready after shutdown")
	}
	if _, err := m.Predict(context.Background(), types.PredictRequest{Prompt: "p"}); !IsDraining(err) {
		t.Fatalf("expected draining error, got %v", err)
	}
	if err := m.Shutdown(); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

func TestCountTokens(t *testing.T) {
	m := newTestManager(t, &fakeBackend{}, ManagerConfig{})
	if n, err := m.CountTokens("four"); err != nil || n != 4 {
		t.Fatalf("count = %d, %v", n, err)
	}
	if n, err := m.CountTokens("\xff"); n != -1 || !engine.IsEncode(err) {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestStatus_ReportsEngineSettings(t *testing.T) {
	m := newTestManager(t, &fakeBackend{}, ManagerConfig{MaxInflight: 2, MaxQueueDepth: 8}, "</s>")
	st := m.Status()
	if st.State != "ready" || st.MaxInflight != 2 || st.MaxQueueDepth != 8 || st.MaxTokens != 128 {
		t.Fatalf("status %+v", st)
	}
	if len(st.StopSequences) != 1 || st.StopSequences[0] != "</s>" {
		t.Fatalf("stops %v", st.StopSequences)
	}
}
