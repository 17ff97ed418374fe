package importer

// BuildImportJSONSchema returns the JSON-Schema (draft 2020-12 subset) an
// import document must satisfy before any row is written.
func BuildImportJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"product_name": map[string]any{"type": "string"},
			"price":        decimalProp(),
			"category":     map[string]any{"type": "string"},
			"quantity":     map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []string{"price"},
	}

	receipt := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"store_name":    map[string]any{"type": "string"},
			"purchase_date": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"image_path":    map[string]any{"type": "string"},
			"items":         map[string]any{"type": "array", "items": item},
		},
		"required": []string{"purchase_date"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"receipts": map[string]any{"type": "array", "items": receipt},
		},
		"required": []string{"receipts"},
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^-?\d+(\.\d{1,2})?$`,
	}
}
