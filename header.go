package paks

import (
	"bytes"
	"encoding/binary"
)

// formatVersion is the only version this package writes or accepts.
const formatVersion = uint32(1)

// headerNonce is the fixed, well-known nonce the header itself is
// encrypted under (spec §3/§4.7) — its own confidentiality is not the
// point; a wrong key simply yields a header that fails to parse.
const headerNonce = uint64(0)

// headerBlocks is the number of 16-byte blocks the header occupies.
// Packed at u64 width, magic/version (4) + directory start (8) +
// directory block count (8) + directory byte length (8) + directory
// nonce (8) + directory mac (16) = 52 bytes, which does not fit the
// two blocks a byte-frugal packing might suggest; four blocks is the
// smallest block-aligned size that holds every listed field at its
// specified width while staying self-consistent between writer and
// reader, per spec §9's "implementations MUST document and remain
// self-consistent" header sizing note.
const headerBlocks = uint64(4)

const headerByteLen = 4 + 8 + 8 + 8 + 8 + 16

// header is the parsed content of the archive's fixed header region
// (spec §3 "Header", §4.7, §6 on-disk layout).
type header struct {
	version        uint32
	dirStart       uint64
	dirBlockCount  uint64
	dirByteLength  uint64
	dirNonce       uint64
	dirMAC         [16]byte
}

// encodeHeader packs h into its plaintext byte form, zero-padded to a
// whole number of blocks.
func encodeHeader(h *header) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, h.version)
	binary.Write(buf, binary.LittleEndian, h.dirStart)
	binary.Write(buf, binary.LittleEndian, h.dirBlockCount)
	binary.Write(buf, binary.LittleEndian, h.dirByteLength)
	binary.Write(buf, binary.LittleEndian, h.dirNonce)
	buf.Write(h.dirMAC[:])

	out := buf.Bytes()
	padded := make([]byte, headerBlocks*BlockSize)
	copy(padded, out)
	return padded
}

// decodeHeader parses a header from its plaintext byte form.
func decodeHeader(data []byte) (*header, error) {
	if len(data) < headerByteLen {
		return nil, newHeaderError("truncated header")
	}
	h := &header{}
	h.version = binary.LittleEndian.Uint32(data[0:4])
	h.dirStart = binary.LittleEndian.Uint64(data[4:12])
	h.dirBlockCount = binary.LittleEndian.Uint64(data[12:20])
	h.dirByteLength = binary.LittleEndian.Uint64(data[20:28])
	h.dirNonce = binary.LittleEndian.Uint64(data[28:36])
	copy(h.dirMAC[:], data[36:52])

	if h.version != formatVersion {
		return nil, newHeaderError("unsupported format version")
	}
	if h.dirByteLength > h.dirBlockCount*BlockSize {
		return nil, newHeaderError("directory byte length exceeds block capacity")
	}
	return h, nil
}

// readHeader reads and decrypts the fixed header region from store.
func readHeader(store BlockStore, env *Envelope) (*header, error) {
	if store.Len() < headerBlocks {
		return nil, newHeaderError("store shorter than header region")
	}
	blocks, err := store.ReadAt(0, headerBlocks)
	if err != nil {
		return nil, err
	}
	env.CryptBlocks(headerNonce, 0, blocks)
	return decodeHeader(bytesFromBlocks(blocks, headerBlocks*BlockSize))
}

// writeHeader encrypts and writes h into the store's fixed header
// region (blocks [0, headerBlocks)), which must already exist.
func writeHeader(store BlockStore, env *Envelope, h *header) error {
	blocks := blocksFromBytes(encodeHeader(h))
	env.CryptBlocks(headerNonce, 0, blocks)
	return store.WriteAt(0, blocks)
}
