package repository

import (
	"encoding/json"
	"fmt"
)

// marshalJSONB converts an optional value into jsonb bytes, preserving SQL
// NULL for nil input.
func marshalJSONB(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if v == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jsonb value: %w", err)
	}
	return data, nil
}

// unmarshalJSONBMap decodes a nullable jsonb column into a map.
func unmarshalJSONBMap(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal jsonb value: %w", err)
	}
	return out, nil
}
