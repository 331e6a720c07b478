// Package registry holds the closed table of operation descriptors and
// classifies operations as query- or mutation-compatible. The table is
// validated eagerly at construction and immutable afterwards, so lookups are
// safe for concurrent use without locking.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qualisero/opquery/model"
)

// Registry is the read-only operation descriptor table, keyed by operation ID.
type Registry struct {
	ops map[string]model.OperationDescriptor
}

// New builds a Registry from a fully-formed descriptor table, typically
// produced from an API description document. Every entry is validated up
// front: a bad descriptor fails construction rather than a later invocation.
func New(table map[string]model.OperationDescriptor) (*Registry, error) {
	ops := make(map[string]model.OperationDescriptor, len(table))

	for id, desc := range table {
		if id == "" {
			return nil, fmt.Errorf("registry: descriptor with empty operation id")
		}
		if desc.ID == "" {
			desc.ID = id
		}
		if desc.ID != id {
			return nil, fmt.Errorf("registry: descriptor id %q does not match table key %q", desc.ID, id)
		}
		if desc.Path == "" {
			return nil, fmt.Errorf("registry: operation %q has an empty path template", id)
		}
		if !desc.Method.Valid() {
			return nil, fmt.Errorf("registry: operation %q declares unsupported method %q", id, desc.Method)
		}
		if err := validateTemplate(desc.Path); err != nil {
			return nil, fmt.Errorf("registry: operation %q: %w", id, err)
		}
		ops[id] = desc
	}

	return &Registry{ops: ops}, nil
}

// validateTemplate checks that every brace in the template opens and closes a
// non-empty placeholder name.
func validateTemplate(template string) error {
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return fmt.Errorf("path template %q has an unmatched '}'", template)
			}
			return nil
		}
		if stray := strings.IndexByte(rest[:open], '}'); stray >= 0 {
			return fmt.Errorf("path template %q has an unmatched '}'", template)
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			return fmt.Errorf("path template %q has an unclosed '{'", template)
		}
		if close == 1 {
			return fmt.Errorf("path template %q has an empty placeholder", template)
		}
		rest = rest[open+close+1:]
	}
}

// Get returns the descriptor for the given operation ID. Unknown IDs fail
// with an UNKNOWN_OPERATION envelope before any path resolution happens.
func (r *Registry) Get(operationID string) (model.OperationDescriptor, error) {
	desc, ok := r.ops[operationID]
	if !ok {
		return model.OperationDescriptor{}, model.NewUnknownOperationError(operationID)
	}
	return desc, nil
}

// Has reports whether the operation ID is declared.
func (r *Registry) Has(operationID string) bool {
	_, ok := r.ops[operationID]
	return ok
}

// IsQueryCompatible reports whether the operation's method belongs to the
// query execution mode (GET, HEAD, OPTIONS). Unknown IDs report false.
func (r *Registry) IsQueryCompatible(operationID string) bool {
	desc, ok := r.ops[operationID]
	return ok && desc.Method.IsQuery()
}

// IsMutationCompatible reports whether the operation's method belongs to the
// mutation execution mode (POST, PUT, PATCH, DELETE). Unknown IDs report false.
func (r *Registry) IsMutationCompatible(operationID string) bool {
	desc, ok := r.ops[operationID]
	return ok && desc.Method.IsMutation()
}

// AssertQueryUsage validates that the operation may be used through the query
// entry point and returns its descriptor.
func (r *Registry) AssertQueryUsage(operationID string) (model.OperationDescriptor, error) {
	desc, err := r.Get(operationID)
	if err != nil {
		return model.OperationDescriptor{}, err
	}
	if !desc.Method.IsQuery() {
		return model.OperationDescriptor{}, model.NewInvalidUsageError(operationID, desc.Method, "query", "Query")
	}
	return desc, nil
}

// AssertMutationUsage validates that the operation may be used through the
// mutation entry point and returns its descriptor.
func (r *Registry) AssertMutationUsage(operationID string) (model.OperationDescriptor, error) {
	desc, err := r.Get(operationID)
	if err != nil {
		return model.OperationDescriptor{}, err
	}
	if !desc.Method.IsMutation() {
		return model.OperationDescriptor{}, model.NewInvalidUsageError(operationID, desc.Method, "mutation", "Mutation")
	}
	return desc, nil
}

// OperationIDs returns all declared operation IDs, sorted.
func (r *Registry) OperationIDs() []string {
	ids := make([]string, 0, len(r.ops))
	for id := range r.ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of declared operations.
func (r *Registry) Len() int {
	return len(r.ops)
}
