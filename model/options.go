package model

import "time"

// Options configures a single query or mutation handle. Layers of Options
// (client defaults, handle setup, per-invocation overrides) are merged
// left-to-right; later layers win on scalar fields and merge one level deep
// on the transport bag.
type Options struct {
	// Enabled overrides the derived enabled state. Accepts a bool, a
	// reactive source of bool, or a zero-argument func() bool. A false
	// override disables execution even when the path fully resolves; a
	// value of any other type also disables.
	Enabled any

	// Query holds query parameters appended to the cache key as a single
	// trailing object. Values may be reactive.
	Query map[string]any

	// Transport carries options the engine merges but does not interpret;
	// they are handed to the external store / transport unchanged.
	Transport *TransportOptions

	// OnSuccess is invoked with the execution result after a successful
	// fetch or mutation execute.
	OnSuccess func(result any)

	// OnError is invoked with any execution failure, including the
	// recoverable disabled-execution error.
	OnError func(err error)

	// Invalidates lists cache entries to invalidate after a successful
	// mutation.
	Invalidates []InvalidationTarget
}

// TransportOptions is the pass-through transport configuration bag. Headers
// and Extra merge across layers; scalar fields follow later-wins.
type TransportOptions struct {
	Headers map[string]string
	Timeout time.Duration

	// Extra carries transport-specific extension fields the engine itself
	// does not interpret. Arbitrary key/value pairs survive merging
	// unmodified.
	Extra map[string]any
}
