package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("shorthand query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })
	return &buf
}

func TestLoggingLineWriter_SplitsLines(t *testing.T) {
	buf := captureLogger(t)
	lw := &loggingLineWriter{rid: "r1"}
	_, _ = lw.Write([]byte(`{"a":1}` + "\n" + `{"b":`))
	_, _ = lw.Write([]byte("2}\n\n"))

	out := buf.String()
	if strings.Count(out, `"message":"predict>"`) != 2 {
		t.Fatalf("expected two logged lines: %q", out)
	}
	if !strings.Contains(out, `"line":{"b":2}`) || !strings.Contains(out, `"request_id":"r1"`) {
		t.Fatalf("joined line missing: %q", out)
	}
}

func TestLogEnd_RespectsLevel(t *testing.T) {
	buf := captureLogger(t)
	r := httptest.NewRequest(http.MethodPost, "/v1/predict", nil)
	logEnd(r, LevelOff, http.StatusOK, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("logged at level off: %q", buf.String())
	}
	logEnd(r, LevelError, http.StatusOK, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("success logged at level error: %q", buf.String())
	}
	logEnd(r, LevelError, http.StatusInternalServerError, time.Now(), errTest)
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), `"status":500`) {
		t.Fatalf("failure not logged: %q", buf.String())
	}
}

var errTest = testError("boom")

type testError string

func (e testError) Error() string { return string(e) }
