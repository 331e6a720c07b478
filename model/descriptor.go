package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Method is an HTTP method as declared by an operation descriptor.
type Method string

// Supported HTTP methods.
const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
)

// IsQuery reports whether the method belongs to the read (query) execution mode.
func (m Method) IsQuery() bool {
	switch m {
	case MethodGet, MethodHead, MethodOptions:
		return true
	}
	return false
}

// IsMutation reports whether the method belongs to the write (mutation)
// execution mode.
func (m Method) IsMutation() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// Valid reports whether the method is one of the supported HTTP methods.
func (m Method) Valid() bool {
	return m.IsQuery() || m.IsMutation()
}

// OperationDescriptor describes a single named network operation: a path
// template with {name} placeholders and the HTTP method it is invoked with.
// Descriptors are immutable once the registry holding them is built.
type OperationDescriptor struct {
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path" yaml:"path"`
	Method Method `json:"method" yaml:"method"`
}

// PathParams maps placeholder names to their current values. A value may be a
// string, any numeric type, nil, a reactive source, or a zero-argument
// function producing one of those. The engine reads but never mutates it.
type PathParams map[string]any

// QueryKey is the ordered, structurally comparable cache key derived from a
// resolved path: string segments optionally followed by one trailing
// map[string]any (or slice) of query parameters.
type QueryKey []any

// Equal reports whether two keys match positionally, comparing the trailing
// parameter object (if any) by deep equality.
func (k QueryKey) Equal(other QueryKey) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if !reflect.DeepEqual(k[i], other[i]) {
			return false
		}
	}
	return true
}

// String renders the key in a stable, human-readable form. Trailing parameter
// objects are rendered with sorted keys so the output is deterministic.
func (k QueryKey) String() string {
	parts := make([]string, 0, len(k))
	for _, el := range k {
		parts = append(parts, renderKeyElement(el))
	}
	return strings.Join(parts, "/")
}

func renderKeyElement(el any) string {
	switch v := el.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s=%v", name, v[name]))
		}
		return "{" + strings.Join(pairs, ",") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// InvalidationTarget names cache entries to invalidate (and optionally
// refetch) after a successful mutation. Either an operation ID with optional
// concrete path params, or a raw predicate over candidate keys.
type InvalidationTarget struct {
	// OperationID selects entries derived from a declared operation.
	OperationID string

	// Params pins the target to a specific resolved key. When nil the
	// collection-matching rule applies: entries whose key equals the
	// operation's key prefix, with or without a trailing parameter object,
	// match; entries carrying a trailing scalar identifier do not.
	Params PathParams

	// Predicate, when set, overrides OperationID/Params and matches
	// arbitrary cached keys directly.
	Predicate func(QueryKey) bool

	// Refetch requests that matching live query handles re-execute after
	// invalidation instead of waiting for their next read.
	Refetch bool
}
