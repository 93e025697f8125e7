// Package manager coordinates HTTP-facing generation requests over one
// engine.Engine. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: lifecycle State.
//   - errors.go: error types and helpers (IsTooBusy, IsDraining).
//   - queue_admission.go: FIFO queueing and generation admission.
//   - inference.go: Predict and PredictStream over per-request Sessions.
//   - status_report.go: Status reporting for /status.
//   - unload.go: Shutdown drains in-flight work and closes the engine.
//
// Every request gets its own engine.Session, which is closed before the
// admission slot is released. Backends that cannot fork are serialized inside
// the engine; admission only bounds how many requests wait for them.
package manager
