// Package clock is the time source for credential operation timings.
//
// Use cases measure hash and verify latency through Clocker instead of
// calling time.Now directly.
package clock
