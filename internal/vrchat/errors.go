package vrchat

import (
	"errors"
	"fmt"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = errors.New("vrchat circuit breaker is open")

// NetworkError wraps transport failures and timeouts.
type NetworkError struct {
	WorldID string
	Latency time.Duration
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch world %s (latency=%v): %v", e.WorldID, e.Latency, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError reports a non-success HTTP status.
type RemoteError struct {
	WorldID    string
	StatusCode int
	Latency    time.Duration
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("vrchat world %s returned %d (latency=%v)", e.WorldID, e.StatusCode, e.Latency)
}

// NotFound reports whether the world does not exist remotely.
func (e *RemoteError) NotFound() bool {
	return e.StatusCode == 404
}

// clientFault reports failures that say nothing about service health.
func clientFault(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.StatusCode >= 400 && remote.StatusCode < 500 && remote.StatusCode != 429
}
