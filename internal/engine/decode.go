package engine

import (
	"errors"
	"fmt"
	"strings"
)

// decoder runs the Generating state of one request. It is owned by the
// session worker and never shared.
type decoder struct {
	backend    Backend
	tokenizer  Tokenizer
	normalizer Normalizer
	stops      []string
	lookahead  int

	limit   int // output-token ceiling
	emitted int

	trailing  string
	output    strings.Builder
	earlyStop bool
	finish    FinishReason

	// emit receives each ready chunk. done is the early-stop flag at flush
	// time; err is non-nil only on the terminal failure chunk.
	emit func(chunk string, done bool, err error)
}

// run primes the backend with the prompt ids and decodes until the ceiling,
// a stop sequence, the end of sequence or a failure. It returns the terminal
// error, if any, after it has been emitted.
func (d *decoder) run(prompt []int) error {
	if err := safeInit(d.backend, prompt); err != nil {
		return d.fail(generationError{stage: "prefill", err: err})
	}
	for d.emitted < d.limit && !d.earlyStop {
		if err := d.step(); err != nil {
			return d.fail(err)
		}
	}
	return nil
}

// step performs exactly one backend call and one flush.
func (d *decoder) step() error {
	ids, err := safeNext(d.backend)
	if errors.Is(err, ErrEndOfSequence) {
		d.earlyStop = true
		d.finish = FinishEOS
		d.flush(d.drain())
		return nil
	}
	if err != nil {
		return generationError{stage: "decode", err: err}
	}
	if len(ids) == 0 {
		return generationError{stage: "decode", err: errors.New("backend returned no token")}
	}
	d.emitted++
	if d.emitted == d.limit {
		d.earlyStop = true
		d.finish = FinishLength
	}

	piece, err := safePiece(d.tokenizer, d.normalizer, ids[0])
	if err != nil {
		return generationError{stage: "detokenize", err: fmt.Errorf("token %d: %w", ids[0], err)}
	}
	d.trailing += piece

	if idx, ok := matchStop(d.trailing, d.stops); ok {
		d.trailing = d.trailing[:idx]
		d.earlyStop = true
		d.finish = FinishStop
	}

	var ready string
	if d.earlyStop {
		ready = d.drain()
	} else {
		ready, d.trailing = splitReady(d.trailing, d.lookahead)
	}
	d.flush(ready)
	return nil
}

func (d *decoder) drain() string {
	s := d.trailing
	d.trailing = ""
	return s
}

func (d *decoder) flush(ready string) {
	d.output.WriteString(ready)
	d.emit(ready, d.earlyStop, nil)
}

// fail delivers the buffered tail together with err as the final chunk.
func (d *decoder) fail(err error) error {
	d.earlyStop = true
	d.finish = FinishError
	ready := d.drain()
	d.output.WriteString(ready)
	d.emit(ready, true, err)
	return err
}
