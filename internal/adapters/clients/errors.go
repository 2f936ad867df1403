// Package clients contains the outbound HTTP plumbing used to reach remote
// quote sources: an instrumented client with retries plus a circuit breaker
// guarding each downstream host.
package clients

import "errors"

// Sentinels returned by Client.Do when the client machinery itself gives up,
// as opposed to the remote source answering with an error status. Callers
// check them with errors.Is; the acl translator maps both to domain
// unavailability so a sync cycle backs off instead of failing hard.
var (
	// ErrCircuitOpen means the breaker rejected the call before any request
	// went out. The remote source was never contacted.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded means every configured attempt against the
	// remote source failed. The last attempt's error is included in the
	// message.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
