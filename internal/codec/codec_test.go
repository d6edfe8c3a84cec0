package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeList(t *testing.T) {
	raw, err := EncodeList([]string{"vip", "new-patient"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"items":["vip","new-patient"]}`, raw)

	raw, err = EncodeList(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"items":[]}`, raw)
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
		wantErr  bool
	}{
		{"envelope", `{"v":1,"items":["a","b"]}`, []string{"a", "b"}, false},
		{"legacy array", `["{ClientName}","{Date}"]`, []string{"{ClientName}", "{Date}"}, false},
		{"column default", `[]`, []string{}, false},
		{"empty string", ``, []string{}, false},
		{"envelope without items", `{"v":1}`, []string{}, false},
		{"future version", `{"v":9,"items":[]}`, nil, true},
		{"garbage", `vip,new`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := DecodeList(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, items)
		})
	}
}

func TestDecodeMap(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected map[string]any
		wantErr  bool
	}{
		{"envelope", `{"v":1,"data":{"source":"calendar"}}`, map[string]any{"source": "calendar"}, false},
		{"legacy object", `{"source":"manual"}`, map[string]any{"source": "manual"}, false},
		{"legacy object with v key", `{"v":"x","channel":"sms","data":1}`, map[string]any{"v": "x", "channel": "sms", "data": float64(1)}, false},
		{"column default", `{}`, map[string]any{}, false},
		{"empty", ``, map[string]any{}, false},
		{"array", `[]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := DecodeMap(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

func TestEncodeMap_DecodesBack(t *testing.T) {
	raw, err := EncodeMap(map[string]any{"templates": float64(2)})
	require.NoError(t, err)

	data, err := DecodeMap(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"templates": float64(2)}, data)
}
