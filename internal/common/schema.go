package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildOptionsSchema returns a JSON-Schema (draft 2020-12 subset) for
// config.json as a generic map. Unknown keys are allowed and ignored by the
// decoder, so additionalProperties stays open.
func BuildOptionsSchema() map[string]any {
	ratio := map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
	margin := map[string]any{"type": "number", "minimum": 0.0}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"marketplace": map[string]any{
				"type": "string",
				"enum": []string{"meesho", "flipkart", "jiomart"},
			},
			"multi_first":            map[string]any{"type": "boolean"},
			"sku_sort":               map[string]any{"type": "boolean"},
			"sku_ascending":          map[string]any{"type": "boolean"},
			"courier_sort":           map[string]any{"type": "boolean"},
			"courier_ascending":      map[string]any{"type": "boolean"},
			"soldBy_sort":            map[string]any{"type": "boolean"},
			"soldBy_ascending":       map[string]any{"type": "boolean"},
			"keep_invoice":           map[string]any{"type": "boolean"},
			"combined_sheet":         map[string]any{"type": "boolean"},
			"add_date_on_top":        map[string]any{"type": "boolean"},
			"label_fallback_ratio":   ratio,
			"invoice_fallback_ratio": ratio,
			"label_top_margin":       margin,
			"label_side_margin":      margin,
			"anchor_pad":             margin,
			"workers":                map[string]any{"type": "integer", "minimum": 0},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
