package paks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocksFromBytes_RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte{},
		[]byte("x"),
		[]byte("exactly16bytes!!"),
		[]byte("seventeen bytes!x"),
		make([]byte, 1024),
	}

	for _, data := range cases {
		blocks := blocksFromBytes(data)
		assert.Equal(t, blockCount(uint64(len(data))), uint64(len(blocks)))

		// bytesFromBlocks never returns nil, so compare contents rather
		// than nil-ness for the empty cases.
		got := bytesFromBlocks(blocks, uint64(len(data)))
		assert.True(t, bytes.Equal(data, got), "round trip of %q returned %q", data, got)
	}
}

func TestBlocksFromBytes_PaddingIsZero(t *testing.T) {
	data := []byte("abc")
	blocks := blocksFromBytes(data)
	assert.Len(t, blocks, 1)
	for i := 3; i < BlockSize; i++ {
		assert.Equal(t, byte(0), blocks[0][i])
	}
}

func TestBlockCount(t *testing.T) {
	assert.Equal(t, uint64(0), blockCount(0))
	assert.Equal(t, uint64(1), blockCount(1))
	assert.Equal(t, uint64(1), blockCount(16))
	assert.Equal(t, uint64(2), blockCount(17))
}
