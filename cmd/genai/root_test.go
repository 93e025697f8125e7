package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"genai/internal/config"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "genai.yaml")
	cfg := `log_level: error
model:
  backend: bigram
  model_path: ../../internal/loader/testdata/bigram.json
  tokenizer: vocab
  tokenizer_path: ../../internal/loader/testdata/vocab.json
  normalizer: nfkc
  start_token_id: 1
  stop_sequences: ["</s>"]
  max_tokens: 64
`
	if err := os.WriteFile(p, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCount(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "count", "Hi")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("out=%q", out)
	}
}

func TestPredict(t *testing.T) {
	cfg := writeConfig(t)
	for _, args := range [][]string{
		{"--config", cfg, "predict", "Hi"},
		{"--config", cfg, "predict", "--stream", "Hi"},
	} {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if out != " Hello world!\n" {
			t.Fatalf("%v: out=%q", args, out)
		}
	}
}

func TestBench(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "bench", "-q", "-n", "6", "-c", "3", "Hi")
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	if !strings.Contains(out, "requests=6 concurrency=3 tokens=24") {
		t.Fatalf("out=%q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "count", "x"); err == nil {
		t.Fatalf("expected error for missing config")
	}
	if _, err := run(t, "--config", writeConfig(t), "--log-level", "loud", "count", "x"); err == nil {
		t.Fatalf("expected error for bad log level")
	}
	if _, err := run(t, "--config", writeConfig(t), "--model", "nope.json", "count", "x"); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "info", "json")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	l.Info().Msg("hello")
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Fatalf("json output %q", buf.String())
	}
	buf.Reset()
	l, _ = newLogger(&buf, "warn", "console")
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
}

func TestManagerConfig_FromConfig(t *testing.T) {
	var cfg config.Config
	cfg.MaxInflight = 2
	cfg.MaxQueueDepth = 6
	cfg.MaxWaitSeconds = 3
	cfg.DrainTimeoutSeconds = 9
	mc := managerConfig(cfg, nil)
	if mc.MaxInflight != 2 || mc.MaxQueueDepth != 6 {
		t.Fatalf("admission limits: %+v", mc)
	}
	if mc.MaxWait != 3*time.Second || mc.DrainTimeout != 9*time.Second {
		t.Fatalf("timeouts: wait=%v drain=%v", mc.MaxWait, mc.DrainTimeout)
	}
}
