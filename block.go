package paks

// Block is the fundamental 16-byte unit of storage and encryption.
// Every offset, length, and position internal to the format is
// block-indexed (spec §3).
type Block [BlockSize]byte

// blocksFromBytes packs a byte slice into a slice of Blocks, zero-
// padding the final block. The caller-visible byte length is tracked
// separately (in the file descriptor); padding bytes are arbitrary and
// covered by the MAC like any other ciphertext byte.
func blocksFromBytes(data []byte) []Block {
	n := blockCount(uint64(len(data)))
	blocks := make([]Block, n)
	for i := range blocks {
		start := i * BlockSize
		end := start + BlockSize
		if end > len(data) {
			end = len(data)
		}
		copy(blocks[i][:], data[start:end])
	}
	return blocks
}

// bytesFromBlocks unpacks blocks back into a byte slice truncated to
// byteLength, discarding trailing padding.
func bytesFromBlocks(blocks []Block, byteLength uint64) []byte {
	out := make([]byte, byteLength)
	for i := range blocks {
		start := uint64(i) * BlockSize
		if start >= byteLength {
			break
		}
		end := start + BlockSize
		if end > byteLength {
			end = byteLength
		}
		copy(out[start:end], blocks[i][:end-start])
	}
	return out
}
