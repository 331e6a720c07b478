// Package engine implements the operation dispatch core: path-template
// resolution against reactive parameters, structural cache keys,
// enabled-state derivation, call-argument normalization, option layering,
// and post-mutation invalidation matching. The engine performs no network
// I/O; fetching, caching, and retry policy live behind the cache.Store
// boundary.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/reactive"
)

// Resolve substitutes each {name} token in template with the current value
// of params[name]. Values are reactively unwrapped first; a nil (or missing)
// value leaves its token literal, which is the explicit "not yet resolvable"
// signal. Resolve is side-effect-free and does not require that every
// placeholder be supplied.
func Resolve(template string, params model.PathParams) string {
	if params == nil {
		return template
	}

	resolved := template
	for _, name := range model.TemplatePlaceholders(template) {
		raw, ok := params[name]
		if !ok {
			continue
		}
		value := reactive.Unwrap(raw)
		if value == nil {
			continue
		}
		resolved = strings.ReplaceAll(resolved, "{"+name+"}", stringifyParam(value))
	}
	return resolved
}

// IsResolved reports whether the path contains no {…} token. It returns
// false for partially resolved paths, including ones where only some
// parameters have been filled in.
func IsResolved(path string) bool {
	return !model.HasUnresolvedPlaceholders(path)
}

// UnresolvedPlaceholders returns the placeholder names still literal in a
// (possibly partially) resolved path.
func UnresolvedPlaceholders(path string) []string {
	return model.TemplatePlaceholders(path)
}

// stringifyParam renders a parameter value for substitution. Numbers are
// stringified verbatim, without formatting beyond their natural decimal form.
func stringifyParam(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", n)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// resolveParams normalizes the whole-map reactive shapes of a parameter set:
// a plain PathParams, a func() PathParams, or a reactive source yielding one.
func resolveParams(src any) model.PathParams {
	if src == nil {
		return nil
	}
	switch p := src.(type) {
	case model.PathParams:
		return p
	case map[string]any:
		return model.PathParams(p)
	case func() model.PathParams:
		return p()
	}

	switch p := reactive.Unwrap(src).(type) {
	case model.PathParams:
		return p
	case map[string]any:
		return model.PathParams(p)
	case nil:
		return nil
	default:
		return nil
	}
}
