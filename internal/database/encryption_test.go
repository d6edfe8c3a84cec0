package database

import (
	"strings"
	"testing"

	"curalink/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-test-secret-of-32-chars!"

func TestFieldCipher_Disabled(t *testing.T) {
	c, err := newFieldCipher(false, "")
	require.NoError(t, err)

	out, err := c.EncryptIfEnabled("plain notes")
	require.NoError(t, err)
	assert.Equal(t, "plain notes", out)

	out, err = c.DecryptIfEnabled("plain notes")
	require.NoError(t, err)
	assert.Equal(t, "plain notes", out)
}

func TestFieldCipher_RoundTrip(t *testing.T) {
	c, err := newFieldCipher(true, testSecret)
	require.NoError(t, err)

	sealed, err := c.EncryptIfEnabled("Allergic to penicillin")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, constants.EncryptedValuePrefix))

	again, err := c.EncryptIfEnabled("Allergic to penicillin")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ between encryptions")

	plain, err := c.DecryptIfEnabled(sealed)
	require.NoError(t, err)
	assert.Equal(t, "Allergic to penicillin", plain)
}

func TestFieldCipher_LegacyPlaintextPassesThrough(t *testing.T) {
	c, err := newFieldCipher(true, testSecret)
	require.NoError(t, err)

	out, err := c.DecryptIfEnabled("written before encryption was enabled")
	require.NoError(t, err)
	assert.Equal(t, "written before encryption was enabled", out)

	empty, err := c.EncryptIfEnabled("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFieldCipher_Errors(t *testing.T) {
	_, err := newFieldCipher(true, "")
	assert.Error(t, err)

	_, err = newFieldCipher(true, "too-short")
	assert.Error(t, err)

	enabled, err := newFieldCipher(true, testSecret)
	require.NoError(t, err)
	sealed, err := enabled.EncryptIfEnabled("secret")
	require.NoError(t, err)

	disabled, err := newFieldCipher(false, "")
	require.NoError(t, err)
	_, err = disabled.DecryptIfEnabled(sealed)
	assert.Error(t, err)

	_, err = enabled.DecryptIfEnabled(constants.EncryptedValuePrefix + "!!not-base64!!")
	assert.Error(t, err)

	_, err = enabled.DecryptIfEnabled(constants.EncryptedValuePrefix + "AAAA")
	assert.Error(t, err)

	other, err := newFieldCipher(true, strings.Repeat("x", 40))
	require.NoError(t, err)
	_, err = other.DecryptIfEnabled(sealed)
	assert.Error(t, err)
}
