// Package onnx runs a causal language model exported to ONNX with greedy
// decoding. Each step feeds the whole sequence (input_ids) and takes the
// argmax of the last position's logits. Real support requires the 'onnx'
// build tag and the ONNX Runtime shared library.
package onnx

// Options configure the ONNX backend.
type Options struct {
	// LibraryPath points at onnxruntime.so; empty uses the loader default.
	LibraryPath string
	VocabSize   int
	// EOSTokenID ends the sequence when generated; negative disables it.
	EOSTokenID int
	Threads    int
}

// argmax returns the index of the largest value; ties go to the lowest index.
func argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
