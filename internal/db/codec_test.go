package db

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadCodec_RoundTrip(t *testing.T) {
	codec := newPayloadCodec()

	raw := bytes.Repeat([]byte(`{"airline":"ANA","price":"$850"},`), 500)
	compressed := codec.Compress(raw)

	require.NotEmpty(t, compressed)
	assert.Less(t, len(compressed), len(raw))

	restored, err := codec.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, raw, restored)
}

func TestPayloadCodec_NilPassthrough(t *testing.T) {
	codec := newPayloadCodec()

	assert.Nil(t, codec.Compress(nil))

	restored, err := codec.Decompress(nil)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestPayloadCodec_CorruptInput(t *testing.T) {
	codec := newPayloadCodec()

	_, err := codec.Decompress([]byte("not a zstd frame"))
	assert.Error(t, err)
}
