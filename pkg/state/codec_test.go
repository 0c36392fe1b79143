package state

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmptyTokenCopiesDefault(t *testing.T) {
	def := map[string]any{"count": 0}
	got, err := Decode("", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	got["count"] = 1
	assert.Equal(t, 0, def["count"], "default must not be mutated through the decoded copy")

	got, err = Decode("", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeMalformedTokenIsFatal(t *testing.T) {
	_, err := Decode("{not json", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedState))
}

func TestSerializeIsIdempotent(t *testing.T) {
	values := []map[string]any{
		{},
		{"b": 2, "a": []any{"x", 1.5}},
		{"nested": map[string]any{"z": true, "y": nil}},
	}
	for _, v := range values {
		first, err := Serialize(v)
		require.NoError(t, err)
		decoded, err := Decode(first, nil)
		require.NoError(t, err)
		second, err := Serialize(decoded)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestEncoderOmitsUnchangedData(t *testing.T) {
	def := map[string]any{"count": 0}
	enc, err := NewEncoder(def, map[string]any{"count": 0})
	require.NoError(t, err)

	_, changed, err := enc.Encode(map[string]any{"count": 0})
	require.NoError(t, err)
	assert.False(t, changed)

	token, changed, err := enc.Encode(map[string]any{"count": 1})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `{"count":1}`, token)
}

func TestEncoderComparesAgainstIncomingAndDefault(t *testing.T) {
	enc, err := NewEncoder(map[string]any{}, map[string]any{"step": "two"})
	require.NoError(t, err)

	_, changed, err := enc.Encode(map[string]any{"step": "two"})
	require.NoError(t, err)
	assert.False(t, changed, "equal to incoming")

	_, changed, err = enc.Encode(map[string]any{})
	require.NoError(t, err)
	assert.False(t, changed, "equal to default")

	_, changed, err = enc.Encode(map[string]any{"step": "three"})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestUserStorageEnvelope(t *testing.T) {
	got, err := DecodeUserStorage(`{"data":{"name":"Ada"}}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada"}, got)

	got, err = DecodeUserStorage("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeUserStorage("nope")
	assert.True(t, errors.Is(err, ErrMalformedState))

	s, err := EncodeUserStorage(map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"name":"Ada"}}`, s)
}

func TestStorageEncoderWritesClears(t *testing.T) {
	enc, err := NewStorageEncoder(map[string]any{"name": "Ada"})
	require.NoError(t, err)

	_, changed, err := enc.Encode(map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.False(t, changed)

	s, changed, err := enc.Encode(map[string]any{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `{"data":{}}`, s)
}

func TestStorageEncoderIgnoresDefaults(t *testing.T) {
	// storage that came in empty and stays empty is not sent
	enc, err := NewStorageEncoder(nil)
	require.NoError(t, err)
	_, changed, err := enc.Encode(map[string]any{})
	require.NoError(t, err)
	assert.False(t, changed)

	// storage that came in set is cleared even when the app default is empty
	enc, err = NewStorageEncoder(map[string]any{"theme": "dark"})
	require.NoError(t, err)
	_, changed, err = enc.Encode(nil)
	require.NoError(t, err)
	assert.True(t, changed)
}
