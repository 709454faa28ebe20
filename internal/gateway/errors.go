package gateway

import (
	"errors"
	"fmt"
)

// errRequestCancelled is the terminal error carried by cancelled requests.
var errRequestCancelled = errors.New("request cancelled")

// IsCancelled reports whether err indicates a cancelled request.
func IsCancelled(err error) bool { return errors.Is(err, errRequestCancelled) }

// initializationError is fatal: the engine could not be constructed and the
// service must not begin serving traffic.
type initializationError struct{ err error }

func (e initializationError) Error() string { return "engine initialization: " + e.err.Error() }
func (e initializationError) Unwrap() error { return e.err }

// ErrInitialization wraps an engine construction failure.
func ErrInitialization(err error) error { return initializationError{err: err} }

// IsInitialization reports whether err is a startup initialization failure.
func IsInitialization(err error) bool {
	var ie initializationError
	return errors.As(err, &ie)
}

// validationError signals a client-caused bad request for 400 mapping.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

// ErrValidation constructs a validationError.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// queueFullError signals admission backpressure for 429 mapping. The client
// may retry; nothing was queued.
type queueFullError struct{ limit int }

func (e queueFullError) Error() string {
	return fmt.Sprintf("queue full: %d requests already admitted", e.limit)
}

// ErrQueueFull constructs a queueFullError for the given admission limit.
func ErrQueueFull(limit int) error { return queueFullError{limit: limit} }

// IsQueueFull reports whether err indicates admission backpressure.
func IsQueueFull(err error) bool {
	var qe queueFullError
	return errors.As(err, &qe)
}

// notAcceptingError signals that the gateway is draining or shut down and
// rejects new admissions, mapped to 503.
type notAcceptingError struct{ state State }

func (e notAcceptingError) Error() string {
	return "gateway not accepting requests (state: " + string(e.state) + ")"
}

// ErrNotAccepting constructs a notAcceptingError for the given state.
func ErrNotAccepting(state State) error { return notAcceptingError{state: state} }

// IsNotAccepting reports whether err indicates the gateway rejected admission
// due to its lifecycle state.
func IsNotAccepting(err error) bool {
	var ne notAcceptingError
	return errors.As(err, &ne)
}

// engineContractError means the engine violated its output contract
// (wrong number of outputs for the prompts submitted). Logged and surfaced
// as a server error.
type engineContractError struct{ want, got int }

func (e engineContractError) Error() string {
	return fmt.Sprintf("engine contract violation: %d prompts submitted, %d outputs returned", e.want, e.got)
}

// IsEngineContract reports whether err is an engine output contract violation.
func IsEngineContract(err error) bool {
	var ce engineContractError
	return errors.As(err, &ce)
}

// engineExecutionError wraps any failure the engine reports during generation.
type engineExecutionError struct{ err error }

func (e engineExecutionError) Error() string { return "engine execution: " + e.err.Error() }
func (e engineExecutionError) Unwrap() error { return e.err }

// ErrEngineExecution wraps an engine-reported generation failure.
func ErrEngineExecution(err error) error { return engineExecutionError{err: err} }

// IsEngineExecution reports whether err wraps an engine generation failure.
func IsEngineExecution(err error) bool {
	var ee engineExecutionError
	return errors.As(err, &ee)
}
