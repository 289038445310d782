package paks

import (
	"crypto/subtle"
	"encoding/binary"
)

// Envelope is the block-oriented crypto layer every archive byte passes
// through: CTR-mode confidentiality over a run of 16-byte blocks
// addressed by a 64-bit block index plus a 64-bit nonce, and a CBC-MAC
// integrity tag over that same run of ciphertext blocks (spec §4.2).
//
// This plays the role the teacher's CipherEngine interface (cipher.go)
// plays for AES-GCM/ChaCha20-Poly1305 — a small, key-scoped encrypt/
// decrypt/mac surface — but CTR+CBC-MAC is not an AEAD construction
// provided by any library in the pack, so it is built directly on the
// Speck128/128 primitive instead of wrapping a crypto.AEAD.
type Envelope struct {
	rk roundKeys
}

// NewEnvelope derives the round-key schedule for key once so that
// every subsequent CTR/MAC call just runs rounds, not key expansion.
func NewEnvelope(key Key) *Envelope {
	return &Envelope{rk: expandKey(key)}
}

// counterBlock builds the injective (nonce, blockIndex) -> 128-bit
// input block used to generate one keystream block. Per spec §4.2 any
// injective mapping is conformant so long as write and read agree; the
// low word carries nonce XOR index, the high word carries the index
// itself, so two different (nonce, index) pairs can only collide if
// both words collide simultaneously.
func counterBlock(nonce, index uint64) Block {
	var b Block
	binary.LittleEndian.PutUint64(b[0:8], nonce^index)
	binary.LittleEndian.PutUint64(b[8:16], index)
	return b
}

// keystreamBlock returns encrypt(rk, counter(nonce, index)).
func (e *Envelope) keystreamBlock(nonce, index uint64) Block {
	b := counterBlock(nonce, index)
	encryptBlock(&e.rk, (*[BlockSize]byte)(&b))
	return b
}

// CryptBlocks XORs the CTR keystream for [startBlock, startBlock+len(blocks))
// into blocks in place. CTR is its own inverse, so the same call
// encrypts plaintext or decrypts ciphertext.
func (e *Envelope) CryptBlocks(nonce, startBlock uint64, blocks []Block) {
	for i := range blocks {
		ks := e.keystreamBlock(nonce, startBlock+uint64(i))
		for j := 0; j < BlockSize; j++ {
			blocks[i][j] ^= ks[j]
		}
	}
}

// MAC computes the CBC-MAC over a run of ciphertext blocks:
// T0 = E(B0); Ti = E(T(i-1) XOR Bi); the final chained value is the
// 16-byte tag (spec §4.2). MAC is always computed over ciphertext, so
// verifying a tag never requires decrypting first.
func (e *Envelope) MAC(blocks []Block) [16]byte {
	var tag [16]byte
	if len(blocks) == 0 {
		return tag
	}

	tag = blocks[0]
	encryptBlock(&e.rk, &tag)

	for i := 1; i < len(blocks); i++ {
		xorBlock(&tag, &blocks[i])
		encryptBlock(&e.rk, &tag)
	}
	return tag
}

// xorBlock XORs src into dst in place.
func xorBlock(dst *[16]byte, src *Block) {
	for i := 0; i < BlockSize; i++ {
		dst[i] ^= src[i]
	}
}

// VerifyMAC computes the CBC-MAC of blocks and compares it against want
// in constant time, per spec §7 ("MAC comparison uses constant-time
// equality").
func (e *Envelope) VerifyMAC(blocks []Block, want [16]byte) bool {
	got := e.MAC(blocks)
	return subtle.ConstantTimeCompare(got[:], want[:]) == 1
}
