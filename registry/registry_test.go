package registry

import (
	"reflect"
	"strings"
	"testing"

	"github.com/qualisero/opquery/model"
)

func testTable() map[string]model.OperationDescriptor {
	return map[string]model.OperationDescriptor{
		"listPets":  {ID: "listPets", Path: "/pets", Method: model.MethodGet},
		"getPet":    {ID: "getPet", Path: "/pets/{petId}", Method: model.MethodGet},
		"createPet": {ID: "createPet", Path: "/pets", Method: model.MethodPost},
		"updatePet": {ID: "updatePet", Path: "/pets/{petId}", Method: model.MethodPut},
		"deletePet": {ID: "deletePet", Path: "/pets/{petId}", Method: model.MethodDelete},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := New(testTable())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return reg
}

func TestNew_fillsDescriptorID(t *testing.T) {
	reg, err := New(map[string]model.OperationDescriptor{
		"ping": {Path: "/ping", Method: model.MethodGet},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	desc, err := reg.Get("ping")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if desc.ID != "ping" {
		t.Errorf("descriptor ID = %q, want ping", desc.ID)
	}
}

func TestNew_validation(t *testing.T) {
	tests := []struct {
		name    string
		table   map[string]model.OperationDescriptor
		wantErr string
	}{
		{
			"empty id",
			map[string]model.OperationDescriptor{"": {Path: "/pets", Method: model.MethodGet}},
			"empty operation id",
		},
		{
			"id mismatch",
			map[string]model.OperationDescriptor{"a": {ID: "b", Path: "/pets", Method: model.MethodGet}},
			"does not match table key",
		},
		{
			"empty path",
			map[string]model.OperationDescriptor{"getPet": {Method: model.MethodGet}},
			"empty path template",
		},
		{
			"bad method",
			map[string]model.OperationDescriptor{"getPet": {Path: "/pets", Method: "TRACE"}},
			"unsupported method",
		},
		{
			"unclosed brace",
			map[string]model.OperationDescriptor{"getPet": {Path: "/pets/{petId", Method: model.MethodGet}},
			"unclosed '{'",
		},
		{
			"unmatched close",
			map[string]model.OperationDescriptor{"getPet": {Path: "/pets/petId}", Method: model.MethodGet}},
			"unmatched '}'",
		},
		{
			"empty placeholder",
			map[string]model.OperationDescriptor{"getPet": {Path: "/pets/{}", Method: model.MethodGet}},
			"empty placeholder",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.table)
			if err == nil {
				t.Fatal("New succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestGet_unknownOperation(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Get("ghost")
	if err == nil {
		t.Fatal("Get(ghost) succeeded, want error")
	}
	if !model.IsCode(err, model.ErrUnknownOperation) {
		t.Errorf("error code = %v, want UNKNOWN_OPERATION", err)
	}
}

func TestClassification(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		id       string
		query    bool
		mutation bool
	}{
		{"listPets", true, false},
		{"getPet", true, false},
		{"createPet", false, true},
		{"updatePet", false, true},
		{"deletePet", false, true},
		{"ghost", false, false},
	}

	for _, tc := range tests {
		if got := reg.IsQueryCompatible(tc.id); got != tc.query {
			t.Errorf("IsQueryCompatible(%q) = %v, want %v", tc.id, got, tc.query)
		}
		if got := reg.IsMutationCompatible(tc.id); got != tc.mutation {
			t.Errorf("IsMutationCompatible(%q) = %v, want %v", tc.id, got, tc.mutation)
		}
	}
}

func TestAssertQueryUsage_rejectsMutationMethod(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.AssertQueryUsage("updatePet")
	if err == nil {
		t.Fatal("AssertQueryUsage(updatePet) succeeded, want error")
	}
	if !model.IsCode(err, model.ErrInvalidOperationUsage) {
		t.Errorf("error code = %v, want INVALID_OPERATION_USAGE", err)
	}
	if !strings.Contains(err.Error(), "is not a query operation") {
		t.Errorf("error = %q, want mode named", err)
	}
	if !strings.Contains(err.Error(), "Query()") {
		t.Errorf("error = %q, want entry point named", err)
	}
}

func TestAssertMutationUsage_rejectsQueryMethod(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.AssertMutationUsage("getPet")
	if err == nil {
		t.Fatal("AssertMutationUsage(getPet) succeeded, want error")
	}
	if !strings.Contains(err.Error(), "is not a mutation operation") {
		t.Errorf("error = %q, want mode named", err)
	}
	if !strings.Contains(err.Error(), "Mutation()") {
		t.Errorf("error = %q, want entry point named", err)
	}
}

func TestAssertUsage_acceptsMatchingMode(t *testing.T) {
	reg := newTestRegistry(t)

	desc, err := reg.AssertQueryUsage("getPet")
	if err != nil {
		t.Fatalf("AssertQueryUsage(getPet): %v", err)
	}
	if desc.Path != "/pets/{petId}" {
		t.Errorf("descriptor path = %q", desc.Path)
	}

	if _, err := reg.AssertMutationUsage("deletePet"); err != nil {
		t.Fatalf("AssertMutationUsage(deletePet): %v", err)
	}
}

func TestOperationIDs_sorted(t *testing.T) {
	reg := newTestRegistry(t)

	want := []string{"createPet", "deletePet", "getPet", "listPets", "updatePet"}
	if got := reg.OperationIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("OperationIDs() = %v, want %v", got, want)
	}
	if reg.Len() != 5 {
		t.Errorf("Len() = %d, want 5", reg.Len())
	}
}
