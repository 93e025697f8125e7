package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"genai/internal/httpapi"
	"genai/internal/loader"
	"genai/internal/manager"
	"genai/pkg/types"
)

func fixtureSettings() types.ModelSettings {
	return types.ModelSettings{
		Backend:         "bigram",
		ModelPath:       "../loader/testdata/bigram.json",
		Tokenizer:       "vocab",
		TokenizerPath:   "../loader/testdata/vocab.json",
		Normalizer:      "nfkc",
		StartTokenID:    1,
		StopSequences:   []string{"</s>"},
		MaxTokens:       64,
		EncodeCacheSize: 16,
	}
}

// newServer loads the fixture model and serves it through the full HTTP stack.
func newServer(t *testing.T) (*httptest.Server, *manager.Manager) {
	t.Helper()
	e, err := loader.Load(fixtureSettings())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := manager.NewWithConfig(manager.ManagerConfig{
		Engine:        e,
		MaxInflight:   2,
		MaxQueueDepth: 4,
		MaxWait:       time.Second,
		DrainTimeout:  time.Second,
	})
	srv := httptest.NewServer(httpapi.NewMux(m))
	t.Cleanup(func() {
		srv.Close()
		_ = m.Shutdown()
	})
	return srv, m
}

func httpPostJSON(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, out
}
