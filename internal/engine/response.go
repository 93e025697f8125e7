package engine

import "strings"

// FinishReason explains why a generation stopped.
type FinishReason string

const (
	FinishNone   FinishReason = ""
	FinishStop   FinishReason = "stop"   // a configured stop sequence matched
	FinishLength FinishReason = "length" // the output-token ceiling was reached
	FinishEOS    FinishReason = "eos"    // the backend ended the sequence
	FinishError  FinishReason = "error"
)

// Usage contains token accounting for one generation.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the handoff buffer delivered to callers. The receiver owns it
// and must call Close exactly once when finished with the entries.
//
// Partial responses carry one entry and Done=false. The final response of a
// generation carries Done=true together with FinishReason, Usage and, when
// the backend failed, Err.
type Response struct {
	Entries      []string
	Done         bool
	FinishReason FinishReason
	Usage        Usage
	Err          error
}

func newResponse(chunk string) *Response {
	return &Response{Entries: []string{chunk}}
}

// Count returns the number of entries owned by the response.
func (r *Response) Count() int { return len(r.Entries) }

// Text concatenates all entries.
func (r *Response) Text() string { return strings.Join(r.Entries, "") }

// Close releases every entry and clears the array. Calling Close twice is a
// caller error and is not guarded against.
func (r *Response) Close() {
	clear(r.Entries)
	r.Entries = nil
}
