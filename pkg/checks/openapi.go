// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"fmt"
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// OpenapiFromPerfData builds the schema of a [Result] whose data has the type of perfData.
// Customizers adjust the generated schemas of types that marshal themselves.
func OpenapiFromPerfData[T any](perfData T, customizers ...openapi3gen.SchemaCustomizerFn) (*openapi3.SchemaRef, error) {
	checkSchema, err := openapi3gen.NewSchemaRefForValue(Result{}, openapi3.Schemas{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate result schema: %w", err)
	}

	customize := func(name string, t reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
		for _, c := range customizers {
			if err := c(name, t, tag, schema); err != nil {
				return err
			}
		}
		return nil
	}
	dataSchema, err := openapi3gen.NewSchemaRefForValue(perfData, openapi3.Schemas{}, openapi3gen.SchemaCustomizer(customize))
	if err != nil {
		return nil, fmt.Errorf("failed to generate data schema: %w", err)
	}

	checkSchema.Value.Properties["data"] = dataSchema
	return checkSchema, nil
}
