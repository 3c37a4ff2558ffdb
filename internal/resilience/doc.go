// Package resilience isolates a flaky dependency behind a circuit breaker.
//
// The breaker wraps an operation and short-circuits calls while the
// dependency is considered unhealthy: consecutive failures open the
// circuit, a recovery timeout moves it to half-open, and a bounded number
// of successful trial calls close it again.
package resilience
