package engine

import (
	"fmt"
	"reflect"

	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/reactive"
)

// Call is the unambiguous way to supply path parameters and options to a
// query or mutation entry point. Either part may be omitted.
type Call struct {
	params any
	opts   *model.Options
}

// NewCall creates an empty call.
func NewCall() *Call {
	return &Call{}
}

// WithParams sets the path-parameter source: a model.PathParams, a
// func() model.PathParams, or a reactive source yielding one.
func (c *Call) WithParams(params any) *Call {
	c.params = params
	return c
}

// WithOptions sets the call-setup options layer.
func (c *Call) WithOptions(opts *model.Options) *Call {
	c.opts = opts
	return c
}

// Params returns the configured path-parameter source, which may be nil.
func (c *Call) Params() any {
	if c == nil {
		return nil
	}
	return c.params
}

// Options returns the configured options layer, which may be nil.
func (c *Call) Options() *model.Options {
	if c == nil {
		return nil
	}
	return c.opts
}

// Normalize resolves up to two positional arguments into a path-parameter
// source and an options layer. With two arguments the first is always path
// params and the second always options, regardless of shape. With one
// argument, its static type decides: an options value is options, a
// params-shaped value (map, func, or reactive source of a map) is path
// params. A *Call is accepted as the sole argument and used directly.
func Normalize(args ...any) (*Call, error) {
	switch len(args) {
	case 0:
		return NewCall(), nil
	case 1:
		return normalizeSingle(args[0])
	case 2:
		call := NewCall()
		if args[0] != nil {
			if !isParamsShaped(args[0]) {
				return nil, fmt.Errorf("engine: first argument must be path params, got %T", args[0])
			}
			call.WithParams(args[0])
		}
		if args[1] != nil {
			opts, ok := asOptions(args[1])
			if !ok {
				return nil, fmt.Errorf("engine: second argument must be *model.Options, got %T", args[1])
			}
			call.WithOptions(opts)
		}
		return call, nil
	default:
		return nil, fmt.Errorf("engine: at most two call arguments are accepted, got %d", len(args))
	}
}

func normalizeSingle(arg any) (*Call, error) {
	if arg == nil {
		return NewCall(), nil
	}
	if call, ok := arg.(*Call); ok {
		if call == nil {
			return NewCall(), nil
		}
		return call, nil
	}
	if opts, ok := asOptions(arg); ok {
		return NewCall().WithOptions(opts), nil
	}
	if isParamsShaped(arg) {
		return NewCall().WithParams(arg), nil
	}
	return nil, fmt.Errorf("engine: argument %T is neither path params nor options", arg)
}

func asOptions(arg any) (*model.Options, bool) {
	switch o := arg.(type) {
	case *model.Options:
		return o, true
	case model.Options:
		return &o, true
	}
	return nil, false
}

func isParamsShaped(arg any) bool {
	switch arg.(type) {
	case model.PathParams, map[string]any, func() model.PathParams:
		return true
	case reactive.AnySource:
		return true
	}
	// A bare zero-argument function is accepted; its result is resolved at
	// read time.
	return isNullaryFunc(arg)
}

func isNullaryFunc(arg any) bool {
	t := reflect.TypeOf(arg)
	return t != nil && t.Kind() == reflect.Func && t.NumIn() == 0 && t.NumOut() == 1
}
