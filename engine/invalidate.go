package engine

import (
	"reflect"

	"github.com/qualisero/opquery/model"
)

// BuildPredicate returns the matcher deciding whether a cached entry's key
// belongs to the resource collection identified by listKeyPrefix. A trailing
// non-nil object (map or slice) on the candidate is treated as a query
// parameter suffix and stripped before comparison; a trailing scalar is a
// single-item identifier and keeps the candidate from matching. This is how
// "invalidate every list view of this resource, whatever its filters, but
// leave single-item caches alone" works without enumerating filter
// combinations.
func BuildPredicate(listKeyPrefix model.QueryKey) func(candidate model.QueryKey) bool {
	return func(candidate model.QueryKey) bool {
		if len(candidate) == 0 {
			return false
		}

		normalized := candidate
		if isParamObject(candidate[len(candidate)-1]) {
			normalized = candidate[:len(candidate)-1]
		}

		return normalized.Equal(listKeyPrefix)
	}
}

// isParamObject reports whether a key element is a trailing query-parameter
// object: a non-nil map or slice. nil is not an object and is never stripped.
func isParamObject(el any) bool {
	if el == nil {
		return false
	}
	switch reflect.TypeOf(el).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}
