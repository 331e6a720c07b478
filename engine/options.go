package engine

import (
	"github.com/qualisero/opquery/model"
)

// MergeOptions layers option sets left-to-right: instance-level defaults
// first, call-setup options next, per-invocation overrides last. Later
// layers win on scalar fields; the transport bag and its header/extra maps
// merge one level deep so a later layer overrides individual keys without
// wholesale replacement. Unrecognized Extra entries pass through untouched.
// Nil layers are skipped; the inputs are never modified.
func MergeOptions(layers ...*model.Options) *model.Options {
	merged := &model.Options{}

	for _, layer := range layers {
		if layer == nil {
			continue
		}

		if layer.Enabled != nil {
			merged.Enabled = layer.Enabled
		}
		if layer.OnSuccess != nil {
			merged.OnSuccess = layer.OnSuccess
		}
		if layer.OnError != nil {
			merged.OnError = layer.OnError
		}
		if len(layer.Invalidates) > 0 {
			merged.Invalidates = append(merged.Invalidates, layer.Invalidates...)
		}

		if len(layer.Query) > 0 {
			if merged.Query == nil {
				merged.Query = make(map[string]any, len(layer.Query))
			}
			for name, value := range layer.Query {
				merged.Query[name] = value
			}
		}

		if layer.Transport != nil {
			merged.Transport = mergeTransport(merged.Transport, layer.Transport)
		}
	}

	return merged
}

func mergeTransport(base, overlay *model.TransportOptions) *model.TransportOptions {
	if base == nil {
		base = &model.TransportOptions{}
	}
	out := &model.TransportOptions{
		Timeout: base.Timeout,
		Headers: copyStringMap(base.Headers),
		Extra:   copyAnyMap(base.Extra),
	}

	if overlay.Timeout != 0 {
		out.Timeout = overlay.Timeout
	}
	if len(overlay.Headers) > 0 {
		if out.Headers == nil {
			out.Headers = make(map[string]string, len(overlay.Headers))
		}
		for name, value := range overlay.Headers {
			out.Headers[name] = value
		}
	}
	if len(overlay.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(overlay.Extra))
		}
		for name, value := range overlay.Extra {
			out.Extra[name] = value
		}
	}

	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
