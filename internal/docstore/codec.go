package docstore

import (
	"encoding/json"
	"fmt"
)

// Encode converts v into a field map using its JSON representation.
// Struct tags therefore decide the stored field names.
func Encode(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore.Encode: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("docstore.Encode: %w", err)
	}
	return fields, nil
}

// Decode fills v from the fields of doc. Fields unknown to v are ignored.
func Decode(doc Document, v any) error {
	b, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("docstore.Decode %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("docstore.Decode %s: %w", doc.ID, err)
	}
	return nil
}

// copyFields returns a shallow copy so stored maps are never shared with callers.
func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
