package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// Shared property keys.
const (
	propID        = "id"
	propCreatedAt = "created_at"
	propUpdatedAt = "updated_at"
	propMetadata  = "metadata"
)

// formatTime serialises a timestamp deterministically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime restores a timestamp from a stored property. Backends may
// return either the stored string or a native time value.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}

// encodeMetadata serialises a metadata map to a JSON property. Graph
// backends store flat primitive properties, not nested maps.
func encodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

// decodeMetadata restores a metadata map from its JSON property.
func decodeMetadata(v any) map[string]any {
	s, ok := v.(string)
	if !ok || s == "" {
		return make(map[string]any)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return make(map[string]any)
	}
	return m
}

// stringProp reads a string property, tolerating absence.
func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

// intProp reads an integer property. Backends return int64.
func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// boolProp reads a boolean property, tolerating absence.
func boolProp(props map[string]any, key string) bool {
	b, _ := props[key].(bool)
	return b
}

// encodeEmbedding converts an embedding to the float64 list shape
// graph backends store.
func encodeEmbedding(embedding []float32) []float64 {
	out := make([]float64, len(embedding))
	for i, v := range embedding {
		out[i] = float64(v)
	}
	return out
}

// DecodeEmbedding restores an embedding from a stored property list.
func DecodeEmbedding(v any) []float32 {
	switch vals := v.(type) {
	case []float32:
		return vals
	case []float64:
		out := make([]float32, len(vals))
		for i, f := range vals {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(vals))
		for _, item := range vals {
			switch f := item.(type) {
			case float64:
				out = append(out, float32(f))
			case float32:
				out = append(out, f)
			case int64:
				out = append(out, float32(f))
			}
		}
		return out
	default:
		return nil
	}
}

// restMetadata collects every property not consumed by the typed
// fields into the metadata map, so unknown fields survive a
// serialisation round trip.
func restMetadata(props map[string]any, consumed ...string) map[string]any {
	known := make(map[string]bool, len(consumed)+3)
	known[propID] = true
	known[propCreatedAt] = true
	known[propUpdatedAt] = true
	for _, key := range consumed {
		known[key] = true
	}

	meta := decodeMetadata(props[propMetadata])
	known[propMetadata] = true

	for key, val := range props {
		if !known[key] {
			meta[key] = val
		}
	}
	return meta
}
