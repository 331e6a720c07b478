package engine

import (
	"reflect"
	"testing"

	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/reactive"
)

func TestNormalize_noArgs(t *testing.T) {
	call, err := Normalize()
	if err != nil {
		t.Fatalf("Normalize(): %v", err)
	}
	if call.Params() != nil || call.Options() != nil {
		t.Errorf("empty call has params=%v opts=%v", call.Params(), call.Options())
	}
}

func TestNormalize_singleArg(t *testing.T) {
	params := model.PathParams{"petId": "123"}
	opts := &model.Options{Enabled: false}

	tests := []struct {
		name       string
		arg        any
		wantParams bool
		wantOpts   bool
		wantErr    bool
	}{
		{"path params", params, true, false, false},
		{"plain map", map[string]any{"petId": "123"}, true, false, false},
		{"func of params", func() model.PathParams { return params }, true, false, false},
		{"reactive source", reactive.NewCell(params), true, false, false},
		{"bare nullary func", func() map[string]any { return nil }, true, false, false},
		{"options pointer", opts, false, true, false},
		{"options value", model.Options{Enabled: false}, false, true, false},
		{"nil", nil, false, false, false},
		{"unusable shape", 42, false, false, true},
		{"two-arg func rejected", func(a, b int) int { return a }, false, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			call, err := Normalize(tc.arg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("Normalize succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got := call.Params() != nil; got != tc.wantParams {
				t.Errorf("params present = %v, want %v", got, tc.wantParams)
			}
			if got := call.Options() != nil; got != tc.wantOpts {
				t.Errorf("options present = %v, want %v", got, tc.wantOpts)
			}
		})
	}
}

func TestNormalize_twoArgs(t *testing.T) {
	params := model.PathParams{"petId": "123"}
	opts := &model.Options{Enabled: false}

	call, err := Normalize(params, opts)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(call.Params(), params) {
		t.Errorf("params = %v, want %v", call.Params(), params)
	}
	if call.Options() != opts {
		t.Errorf("options = %v, want the supplied layer", call.Options())
	}
}

func TestNormalize_twoArgs_positional(t *testing.T) {
	opts := &model.Options{Enabled: false}

	// Position is authoritative with two arguments: options first is an error.
	if _, err := Normalize(opts, opts); err == nil {
		t.Error("Normalize(opts, opts) succeeded, want error")
	}
	if _, err := Normalize(model.PathParams{}, model.PathParams{}); err == nil {
		t.Error("Normalize(params, params) succeeded, want error")
	}

	// Nil slots are allowed on either side.
	call, err := Normalize(nil, opts)
	if err != nil {
		t.Fatalf("Normalize(nil, opts): %v", err)
	}
	if call.Params() != nil || call.Options() != opts {
		t.Errorf("call = (%v, %v), want (nil, opts)", call.Params(), call.Options())
	}

	call, err = Normalize(model.PathParams{"petId": "1"}, nil)
	if err != nil {
		t.Fatalf("Normalize(params, nil): %v", err)
	}
	if call.Params() == nil || call.Options() != nil {
		t.Errorf("call = (%v, %v), want (params, nil)", call.Params(), call.Options())
	}
}

func TestNormalize_callPassthrough(t *testing.T) {
	in := NewCall().
		WithParams(model.PathParams{"petId": "123"}).
		WithOptions(&model.Options{Enabled: false})

	call, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize(*Call): %v", err)
	}
	if call != in {
		t.Error("Normalize should use the supplied *Call directly")
	}

	var nilCall *Call
	call, err = Normalize(nilCall)
	if err != nil {
		t.Fatalf("Normalize(nil *Call): %v", err)
	}
	if call.Params() != nil || call.Options() != nil {
		t.Error("nil *Call should normalize to an empty call")
	}
}

func TestNormalize_tooManyArgs(t *testing.T) {
	if _, err := Normalize(1, 2, 3); err == nil {
		t.Fatal("Normalize with three args succeeded, want error")
	}
}
