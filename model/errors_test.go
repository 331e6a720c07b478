package model

import (
	"errors"
	"strings"
	"testing"
)

func TestNewInvalidUsageError_message(t *testing.T) {
	err := NewInvalidUsageError("updatePet", MethodPut, "query", "Query")

	want := "Operation 'updatePet' uses method PUT and is not a query operation; it cannot be used with Query()"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if err.Code != ErrInvalidOperationUsage {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidOperationUsage)
	}
	if err.OperationID != "updatePet" {
		t.Errorf("OperationID = %q, want updatePet", err.OperationID)
	}
}

func TestNewDisabledExecutionError(t *testing.T) {
	err := NewDisabledExecutionError("getPet", []string{"petId"})
	if !strings.Contains(err.Message, "path parameters not resolved: petId") {
		t.Errorf("Message = %q, want unresolved parameter named", err.Message)
	}
	if !IsDisabledExecution(err) {
		t.Error("IsDisabledExecution = false, want true")
	}

	explicit := NewDisabledExecutionError("getPet", nil)
	if !strings.Contains(explicit.Message, "disabled and was not executed") {
		t.Errorf("Message = %q, want explicit-disable wording", explicit.Message)
	}
}

func TestNewBackendError_unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendError("listPets", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if !IsCode(err, ErrBackendError) {
		t.Error("IsCode(err, BACKEND_ERROR) = false, want true")
	}
	if IsCode(err, ErrUnknownOperation) {
		t.Error("IsCode(err, UNKNOWN_OPERATION) = true, want false")
	}
}

func TestErrorEnvelope_Error(t *testing.T) {
	err := NewUnknownOperationError("nope")
	if got := err.Error(); !strings.HasPrefix(got, ErrUnknownOperation+": ") {
		t.Errorf("Error() = %q, want code prefix", got)
	}
}

func TestIsCode_plainError(t *testing.T) {
	if IsCode(errors.New("plain"), ErrBackendError) {
		t.Error("IsCode on a plain error = true, want false")
	}
	if IsCode(nil, ErrBackendError) {
		t.Error("IsCode(nil) = true, want false")
	}
}
