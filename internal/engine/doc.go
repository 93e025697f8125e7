// Package engine implements the streaming text-generation core: an immutable
// Engine shared by Sessions, each of which drives one decode loop at a time
// on a worker goroutine. It is structured into small files by concern:
//
//   - backend.go: Backend, Tokenizer, Normalizer and Forker interfaces.
//   - engine.go: Engine construction, token counting and Close.
//   - session.go: Session lifecycle, PredictAsync/PredictSync and the worker.
//   - decode.go: the Generating state as an explicit iterative loop.
//   - stop.go: earliest-match stop-sequence search and lookahead flushing.
//   - response.go: the Response handoff buffer with explicit Close.
//   - errors.go: typed errors with status codes and Is* predicates.
//   - safe.go: panic-to-error wrappers around external collaborators.
//   - metrics.go: Prometheus collectors and the package logger.
//
// Concrete backends and tokenizers live under internal/backend and are
// assembled from configuration by internal/loader.
package engine
