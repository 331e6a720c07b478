// Package openapi builds operation descriptor tables from OpenAPI
// documents. The engine itself only consumes the finished table; this
// package is the bridge from an API description document to it.
package openapi

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/qualisero/opquery/model"
)

// TableFromFile loads and validates an OpenAPI document from disk and
// returns the descriptor table for every operation carrying an operationId.
func TableFromFile(ctx context.Context, path string) (map[string]model.OperationDescriptor, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: loading %s: %w", path, err)
	}
	return tableFromDoc(ctx, doc)
}

// TableFromData builds the descriptor table from an in-memory OpenAPI
// document (JSON or YAML).
func TableFromData(ctx context.Context, data []byte) (map[string]model.OperationDescriptor, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: parsing document: %w", err)
	}
	return tableFromDoc(ctx, doc)
}

func tableFromDoc(ctx context.Context, doc *openapi3.T) (map[string]model.OperationDescriptor, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validating document: %w", err)
	}

	table := make(map[string]model.OperationDescriptor)
	for path, pathItem := range doc.Paths.Map() {
		for method, op := range pathItem.Operations() {
			if op.OperationID == "" {
				continue
			}
			if existing, dup := table[op.OperationID]; dup {
				return nil, fmt.Errorf(
					"openapi: duplicate operationId %q (%s %s and %s %s)",
					op.OperationID, existing.Method, existing.Path, method, path,
				)
			}
			table[op.OperationID] = model.OperationDescriptor{
				ID:     op.OperationID,
				Path:   path,
				Method: model.Method(method),
			}
		}
	}

	return table, nil
}
