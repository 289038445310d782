package paks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_EncodeDecodeRoundTrip(t *testing.T) {
	h := &header{
		version:       formatVersion,
		dirStart:      7,
		dirBlockCount: 3,
		dirByteLength: 40,
		dirNonce:      555,
		dirMAC:        [16]byte{9, 8, 7},
	}

	raw := encodeHeader(h)
	assert.Len(t, raw, int(headerBlocks*BlockSize))

	got, err := decodeHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, h.version, got.version)
	assert.Equal(t, h.dirStart, got.dirStart)
	assert.Equal(t, h.dirBlockCount, got.dirBlockCount)
	assert.Equal(t, h.dirByteLength, got.dirByteLength)
	assert.Equal(t, h.dirNonce, got.dirNonce)
	assert.Equal(t, h.dirMAC, got.dirMAC)
}

func TestHeader_RejectsWrongVersion(t *testing.T) {
	h := &header{version: formatVersion + 1}
	raw := encodeHeader(h)
	_, err := decodeHeader(raw)
	require.Error(t, err)
	assert.True(t, IsHeaderError(err))
}

func TestHeader_RejectsByteLengthExceedingCapacity(t *testing.T) {
	h := &header{version: formatVersion, dirBlockCount: 1, dirByteLength: 100}
	raw := encodeHeader(h)
	_, err := decodeHeader(raw)
	require.Error(t, err)
	assert.True(t, IsHeaderError(err))
}

func TestHeader_ReadWriteThroughStore(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Append(make([]Block, headerBlocks))
	require.NoError(t, err)

	key := Key{1, 2, 3}
	env := NewEnvelope(key)

	h := &header{
		version:       formatVersion,
		dirStart:      headerBlocks,
		dirBlockCount: 2,
		dirByteLength: 30,
		dirNonce:      42,
		dirMAC:        [16]byte{4, 4, 4},
	}
	require.NoError(t, writeHeader(store, env, h))

	got, err := readHeader(store, env)
	require.NoError(t, err)
	assert.Equal(t, h.dirStart, got.dirStart)
	assert.Equal(t, h.dirByteLength, got.dirByteLength)
	assert.Equal(t, h.dirMAC, got.dirMAC)
}

func TestHeader_WrongKeyFailsToParse(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Append(make([]Block, headerBlocks))
	require.NoError(t, err)

	writeEnv := NewEnvelope(Key{1})
	h := &header{version: formatVersion, dirStart: headerBlocks, dirBlockCount: 1, dirByteLength: 10}
	require.NoError(t, writeHeader(store, writeEnv, h))

	readEnv := NewEnvelope(Key{2})
	_, err = readHeader(store, readEnv)
	assert.Error(t, err, "decrypting the header under the wrong key must not parse cleanly")
}
