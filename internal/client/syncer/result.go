package syncer

import "github.com/pkg/errors"

// ErrOffline is the degradation reason when the connectivity policy said
// the server is unreachable before any request was attempted.
var ErrOffline = errors.New("syncer: operating offline")

// Outcome tells the caller how its intent was served, so the UI never
// misleads the user about durability.
type Outcome string

const (
	// Live means the server handled the intent and the cache mirrors it.
	Live Outcome = "live"
	// Degraded means the intent was served from the local cache only; the
	// server has not seen it yet.
	Degraded Outcome = "degraded"
	// Rejected means the server refused the intent; nothing was applied
	// locally.
	Rejected Outcome = "rejected"
)

// Result annotates a value with the provenance of its execution. Reason is
// set for Degraded (why the client fell back) and Rejected (the server's
// error) results.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Reason  error
}

// IsLive reports whether the server served this result.
func (r Result[T]) IsLive() bool {
	return r.Outcome == Live
}

func live[T any](v T) Result[T] {
	return Result[T]{Outcome: Live, Value: v}
}

func degraded[T any](v T, reason error) Result[T] {
	return Result[T]{Outcome: Degraded, Value: v, Reason: reason}
}

func rejected[T any](reason error) Result[T] {
	return Result[T]{Outcome: Rejected, Reason: reason}
}
