// Package gateway provides admission, batching, and lifecycle coordination
// for a single generation engine. It is structured into small files by
// concern:
//
//   - gateway.go: core Gateway type, readiness, request accounting.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: lifecycle State, PendingRequest and its state machine.
//   - errors.go: error types and helpers (IsValidation, IsQueueFull, ...).
//   - validate.go: request validation/normalization into engine params.
//   - batcher.go: admission, queueing, and size/deadline batch formation.
//   - dispatch.go: serialized engine dispatch and result fan-out.
//   - lifecycle.go: Start (fail-fast engine construction) and Stop (drain).
//   - generate.go: Generate entry point and response assembly.
//   - status.go: status projection for the HTTP layer.
//   - events.go: lifecycle event publisher interface.
//   - metrics.go: prometheus instrumentation for batches and the queue.
//
// Concurrency model: admission and validation run on caller goroutines; one
// goroutine forms batches; one goroutine dispatches them, so at most one
// batch is in flight to the engine at a time. The engine handle is touched
// only on the dispatch path.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, Start, Stop, Generate, Status,
// Ready). Internal types are subject to change.
package gateway
