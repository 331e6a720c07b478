package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/reactive"
)

// keySeparator delimits serialized cache key segments handed to the store.
const keySeparator = "::"

// GenerateKey derives the structural cache key for a resolved path: the path
// is split on '/', empty segments are dropped (leading, trailing, and
// doubled slashes collapse; the root path "/" yields an empty key), and any
// query parameters are appended as a single trailing object element rather
// than flattened into segments. Reactive query parameter values are
// unwrapped to their current value.
func GenerateKey(resolvedPath string, query map[string]any) model.QueryKey {
	var key model.QueryKey
	for _, segment := range strings.Split(resolvedPath, "/") {
		if segment == "" {
			continue
		}
		key = append(key, segment)
	}

	if len(query) > 0 {
		snapshot := make(map[string]any, len(query))
		for name, raw := range query {
			snapshot[name] = reactive.Unwrap(raw)
		}
		key = append(key, snapshot)
	}

	return key
}

// SerializeKey renders a structural key as the stable string form used to
// index the external store. Trailing parameter objects serialize with sorted
// keys so equal structural keys always map to the same string.
func SerializeKey(key model.QueryKey) string {
	parts := make([]string, 0, len(key))
	for _, el := range key {
		parts = append(parts, serializeKeyElement(el))
	}
	return strings.Join(parts, keySeparator)
}

func serializeKeyElement(el any) string {
	switch v := el.(type) {
	case nil:
		return "nil"
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
			pairs = append(pairs, fmt.Sprintf("%s=%s", name, serializeKeyElement(v[name])))
		}
		return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = serializeKeyElement(item)
		}
		return fmt.Sprintf("slice[%d]:{%s}", len(v), strings.Join(parts, ","))
	default:
		return fmt.Sprintf("%v", v)
	}
}
