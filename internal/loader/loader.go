// Package loader assembles an engine.Engine from model settings: it resolves
// the model artifact, opens the backend and tokenizer, and applies the
// optional normalizer and encode cache.
package loader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"genai/internal/backend/bigram"
	"genai/internal/backend/hftokenizer"
	"genai/internal/backend/llama"
	"genai/internal/backend/normalize"
	"genai/internal/backend/onnx"
	"genai/internal/backend/tokcache"
	"genai/internal/backend/vocab"
	"genai/internal/common/fsutil"
	"genai/internal/engine"
	"genai/internal/registry"
	"genai/pkg/types"
)

var zlog = zerolog.Nop()

// SetLogger installs the logger used while loading.
func SetLogger(l zerolog.Logger) { zlog = l }

// Load builds an Engine. Errors carry engine status codes: InvalidArgument for
// bad settings, NotFound for missing files and Unavailable for backends that
// were not compiled in.
func Load(ms types.ModelSettings) (*engine.Engine, error) {
	kind := strings.ToLower(ms.Backend)
	exts := registry.ExtensionsFor(kind)
	if len(exts) == 0 {
		return nil, engine.ErrInvalidArgument("unknown backend %q", ms.Backend)
	}
	if ms.MaxTokens <= 0 {
		return nil, engine.ErrInvalidArgument("max tokens must be positive, got %d", ms.MaxTokens)
	}
	norm, ok := normalize.ByName(ms.Normalizer)
	if !ok {
		return nil, engine.ErrInvalidArgument("unknown normalizer %q", ms.Normalizer)
	}
	modelPath, err := registry.NewScanner(exts...).Resolve(ms.ModelPath)
	if err != nil {
		return nil, notFound(err)
	}

	var (
		tok engine.Tokenizer
		be  engine.Backend
	)
	switch kind {
	case "llama":
		rt, err := llama.Open(modelPath, llama.Options{
			ContextSize:  ms.ContextSize,
			Threads:      ms.Threads,
			MaxTokens:    ms.MaxTokens,
			StartTokenID: ms.StartTokenID,
		})
		if err != nil {
			return nil, err
		}
		be = rt
		if ms.Tokenizer == "" || strings.EqualFold(ms.Tokenizer, "llama") {
			tok = rt
		}
	case "onnx":
		m, err := onnx.Open(modelPath, onnx.Options{
			LibraryPath: ms.ONNXLibraryPath,
			VocabSize:   ms.VocabSize,
			EOSTokenID:  ms.EOSTokenID,
			Threads:     ms.Threads,
		})
		if err != nil {
			return nil, err
		}
		be = m
	case "bigram":
		table, err := bigram.Load(modelPath)
		if err != nil {
			return nil, engine.ErrInvalidArgument("%v", err)
		}
		be = bigram.New(table)
	}

	if tok == nil {
		tok, err = openTokenizer(ms)
		if err != nil {
			closeQuietly(be)
			return nil, err
		}
	}
	tok = cacheTokenizer(tok, be, ms.EncodeCacheSize)

	e, err := engine.New(engine.Settings{
		StartTokenID:  ms.StartTokenID,
		StopSequences: ms.StopSequences,
		MaxTokens:     ms.MaxTokens,
	}, engine.Components{Tokenizer: tok, Normalizer: norm, Backend: be})
	if err != nil {
		closeQuietly(be)
		if any(tok) != any(be) {
			closeQuietly(tok)
		}
		return nil, err
	}
	zlog.Info().Str("backend", kind).Str("model", modelPath).Int("max_tokens", ms.MaxTokens).
		Strs("stop", ms.StopSequences).Msg("engine loaded")
	return e, nil
}

// cacheTokenizer wraps tok in the encode cache unless the backend is its own
// tokenizer: such backends key their input state on Encode calls, which a
// cache hit would skip.
func cacheTokenizer(tok engine.Tokenizer, be engine.Backend, size int) engine.Tokenizer {
	if any(tok) == any(be) {
		if size > 0 {
			zlog.Debug().Msg("encode cache disabled for self-tokenizing backend")
		}
		return tok
	}
	return tokcache.Wrap(tok, size)
}

func openTokenizer(ms types.ModelSettings) (engine.Tokenizer, error) {
	kind := strings.ToLower(ms.Tokenizer)
	if kind == "" {
		kind = "vocab"
	}
	if kind == "llama" {
		return nil, engine.ErrInvalidArgument("tokenizer llama requires backend llama")
	}
	if kind != "vocab" && kind != "hf" {
		return nil, engine.ErrInvalidArgument("unknown tokenizer %q", ms.Tokenizer)
	}
	if ms.TokenizerPath == "" {
		return nil, engine.ErrInvalidArgument("tokenizer path is required for tokenizer %q", kind)
	}
	path, err := fsutil.Abs(ms.TokenizerPath)
	if err != nil {
		return nil, engine.ErrInvalidArgument("%v", err)
	}
	if !fsutil.PathExists(path) {
		return nil, engine.ErrNotFound(path)
	}
	if kind == "hf" {
		t, err := hftokenizer.Open(path)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	t, err := vocab.Load(path)
	if err != nil {
		return nil, engine.ErrInvalidArgument("%v", err)
	}
	return t, nil
}

func notFound(err error) error {
	if errors.Is(err, registry.ErrNoModel) {
		return engine.ErrNotFound(err.Error())
	}
	return fmt.Errorf("resolve model: %w", err)
}

func closeQuietly(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
