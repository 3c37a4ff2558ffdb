package resilience

import "errors"

// ErrCircuitOpen is returned when the circuit breaker rejects a call
// without invoking the wrapped operation. It is distinct from any error
// the operation itself returns, so callers can apply a different backoff
// policy to each. Match with errors.Is.
var ErrCircuitOpen = errors.New("circuit breaker is open")
