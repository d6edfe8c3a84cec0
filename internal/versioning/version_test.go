package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    APIVersion
		wantErr bool
	}{
		{"1.0.0", APIVersion{Major: 1}, false},
		{"1.1.0", V1_1_0, false},
		{"2.3.4-beta.1", APIVersion{Major: 2, Minor: 3, Patch: 4, Prerelease: "beta.1"}, false},
		{"1.0", APIVersion{}, true},
		{"v1.0.0", APIVersion{}, true},
		{"", APIVersion{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestCompare(t *testing.T) {
	beta := APIVersion{Major: 1, Minor: 1, Patch: 0, Prerelease: "beta"}
	alpha := APIVersion{Major: 1, Minor: 1, Patch: 0, Prerelease: "alpha"}

	assert.Equal(t, 0, V1_1_0.Compare(V1_1_0))
	assert.Equal(t, -1, V1_0_0.Compare(V1_1_0))
	assert.Equal(t, 1, V1_1_0.Compare(V1_0_0))
	assert.Equal(t, 1, V1_1_0.Compare(beta))
	assert.Equal(t, -1, beta.Compare(V1_1_0))
	assert.Equal(t, -1, alpha.Compare(beta))
	assert.Equal(t, 1, APIVersion{Major: 2}.Compare(V1_1_0))
}

func TestCheckCompatibility(t *testing.T) {
	assert.True(t, CheckCompatibility(V1_0_0).Compatible)
	assert.True(t, CheckCompatibility(CurrentVersion).Compatible)

	newer := CheckCompatibility(APIVersion{Major: 1, Minor: 9})
	assert.False(t, newer.Compatible)
	assert.Contains(t, newer.Reason, "not available")

	older := CheckCompatibility(APIVersion{Major: 0, Minor: 9})
	assert.False(t, older.Compatible)
	assert.Contains(t, older.Reason, "no longer supported")

	assert.Equal(t, "1.0.0 - 1.1.0", SupportedRange())
}
