package engine

import (
	"github.com/qualisero/opquery/reactive"
)

// ComputeEnabled derives whether an operation may currently execute. A path
// with unresolved placeholders is never enabled, regardless of the explicit
// override. Otherwise the override (a bool, reactive source of bool, or
// zero-argument func) decides; absent an override the operation is enabled,
// and an override of any other type disables it.
func ComputeEnabled(resolvedPath string, explicit any) bool {
	if !IsResolved(resolvedPath) {
		return false
	}
	return explicitEnabled(explicit)
}

func explicitEnabled(explicit any) bool {
	switch v := reactive.Unwrap(explicit).(type) {
	case nil:
		return true
	case bool:
		return v
	default:
		// Malformed overrides (e.g. Enabled: "false") fail closed.
		return false
	}
}
