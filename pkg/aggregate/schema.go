package aggregate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/aggregate.json
var aggregateSchema []byte

const schemaName = "aggregate.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func payloadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, bytes.NewReader(aggregateSchema)); err != nil {
			schemaErr = fmt.Errorf("aggregate: load schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaName)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("aggregate: compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

func validatePayload(body []byte) error {
	schema, err := payloadSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return &DecodeError{Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
