package paks

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// RNG supplies the 64-bit nonces data regions need on every create and,
// optionally, on relocation during GC. Per spec §1 the random-nonce
// source is an injected external collaborator, not part of the core —
// Editor and Reader never reach for a global random source themselves.
type RNG interface {
	// NextNonce returns a fresh 64-bit nonce. Implementations need not
	// be cryptographically strong; they must simply avoid repeating a
	// nonce within one editor session (spec §8 invariant 8).
	NextNonce() uint64
}

// DefaultRNG is a convenience RNG for examples and tests: each call
// mints a new github.com/google/uuid v4 value and folds its random
// bits down to a uint64, the same "reach for uuid when you need a
// fresh random identifier" instinct the teacher uses for its random
// filename tokens (filename.go's randomFilenameEncryptor).
type DefaultRNG struct{}

// NextNonce implements RNG.
func (DefaultRNG) NextNonce() uint64 {
	id := uuid.New()
	lo := binary.BigEndian.Uint64(id[0:8])
	hi := binary.BigEndian.Uint64(id[8:16])
	return lo ^ hi
}
