//go:build onnx

package onnx

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"genai/internal/engine"
)

// Built reports whether this binary has real ONNX Runtime support.
const Built = true

var initOnce sync.Once
var initErr error

func initEnvironment(lib string) error {
	initOnce.Do(func() {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if !ort.IsInitialized() {
			initErr = ort.InitializeEnvironment()
		}
	})
	return initErr
}

// Model holds the shared, read-only model description. Streams forked from
// it keep their own token sequence.
type Model struct {
	path string
	opts Options
}

// Open initializes ONNX Runtime and validates options. The model file is
// loaded per decode step, matching the runtime's pre-allocated tensor API.
func Open(path string, opts Options) (*Model, error) {
	if path == "" {
		return nil, errors.New("model path is empty")
	}
	if opts.VocabSize <= 0 {
		return nil, fmt.Errorf("onnx: vocab size must be positive")
	}
	if err := initEnvironment(opts.LibraryPath); err != nil {
		return nil, engine.ErrUnavailable(fmt.Sprintf("initialize ONNX runtime: %v", err))
	}
	return &Model{path: path, opts: opts}, nil
}

// Fork opens an independent stream.
func (m *Model) Fork() (engine.Backend, error) { return &Stream{model: m}, nil }

func (m *Model) InitInputTokens([]int) error {
	return errors.New("onnx: generate on a forked stream")
}

func (m *Model) NextToken() ([]int, error) {
	return nil, errors.New("onnx: generate on a forked stream")
}

// Stream is one generation context.
type Stream struct {
	model *Model
	seq   []int64
}

func (s *Stream) InitInputTokens(ids []int) error {
	if len(ids) == 0 {
		return errors.New("onnx: empty input")
	}
	s.seq = s.seq[:0]
	for _, id := range ids {
		s.seq = append(s.seq, int64(id))
	}
	return nil
}

func (s *Stream) NextToken() ([]int, error) {
	if len(s.seq) == 0 {
		return nil, errors.New("onnx: NextToken before InitInputTokens")
	}
	logits, err := s.model.forward(s.seq)
	if err != nil {
		return nil, err
	}
	id := argmax(logits)
	if s.model.opts.EOSTokenID >= 0 && id == s.model.opts.EOSTokenID {
		return nil, engine.ErrEndOfSequence
	}
	s.seq = append(s.seq, int64(id))
	return []int{id}, nil
}

// forward runs the model on seq and returns the last position's logits.
func (m *Model) forward(seq []int64) ([]float32, error) {
	vocab := m.opts.VocabSize
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()
	if m.opts.Threads > 0 {
		if err := options.SetIntraOpNumThreads(m.opts.Threads); err != nil {
			return nil, fmt.Errorf("failed to set threads: %w", err)
		}
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(seq))), seq)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(seq)), int64(vocab)))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	session, err := ort.NewAdvancedSession(m.path,
		[]string{"input_ids"}, []string{"logits"},
		[]ort.Value{input}, []ort.Value{output}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Destroy()
	if err := session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	data := output.GetData()
	last := (len(seq) - 1) * vocab
	out := make([]float32, vocab)
	copy(out, data[last:last+vocab])
	return out, nil
}
