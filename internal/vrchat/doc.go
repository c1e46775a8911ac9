// Package vrchat looks up public world details from the VRChat API.
//
// Only the unauthenticated world endpoint is used. Every request carries a
// fixed identifying User-Agent, waits on a token-bucket limiter, and runs
// through a circuit breaker so a scan against an unreachable API fails fast
// after a few attempts instead of waiting out every timeout.
package vrchat
