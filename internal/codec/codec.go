// Package codec encodes the list and key/value columns stored as JSON text.
//
// Values are written inside a small versioned envelope so the stored shape can
// evolve. Bare JSON arrays and objects written by older versions, including the
// column defaults '[]' and '{}', decode as version 0.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CurrentVersion is the envelope version written by the encoders
const CurrentVersion = 1

type listEnvelope struct {
	Version int      `json:"v"`
	Items   []string `json:"items"`
}

type mapEnvelope struct {
	Version int            `json:"v"`
	Data    map[string]any `json:"data"`
}

// EncodeList encodes a string list column value
func EncodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(listEnvelope{Version: CurrentVersion, Items: items})
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

// DecodeList decodes a string list column value. Empty input yields an empty list.
func DecodeList(raw string) ([]string, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return []string{}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode legacy list: %w", err)
		}
		return nonNilList(items), nil
	case '{':
		var env listEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		if env.Version > CurrentVersion {
			return nil, fmt.Errorf("unsupported list encoding version %d", env.Version)
		}
		return nonNilList(env.Items), nil
	default:
		return nil, fmt.Errorf("failed to decode list: unexpected value %q", raw)
	}
}

// EncodeMap encodes a key/value metadata column value
func EncodeMap(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(mapEnvelope{Version: CurrentVersion, Data: data})
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(b), nil
}

// DecodeMap decodes a key/value metadata column value. Empty input yields an empty map.
func DecodeMap(raw string) (map[string]any, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("failed to decode metadata: unexpected value %q", raw)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	if !isMapEnvelope(probe) {
		data := map[string]any{}
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return nil, fmt.Errorf("failed to decode legacy metadata: %w", err)
		}
		return data, nil
	}

	var env mapEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if env.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported metadata encoding version %d", env.Version)
	}
	if env.Data == nil {
		env.Data = map[string]any{}
	}
	return env.Data, nil
}

// A legacy object could contain a "v" key of its own, so both envelope keys must be present.
func isMapEnvelope(probe map[string]json.RawMessage) bool {
	if len(probe) != 2 {
		return false
	}
	_, hasVersion := probe["v"]
	_, hasData := probe["data"]
	return hasVersion && hasData
}

func nonNilList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
