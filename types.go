package paks

import "fmt"

// KeySize is the length in bytes of a Speck128/128 key.
const KeySize = 16

// BlockSize is the length in bytes of one block, the quantum of storage
// and encryption for every PAKS archive.
const BlockSize = 16

// Key is a 128-bit Speck128/128 key supplied by the caller. PAKS never
// derives, stretches, or rotates a Key; the caller is responsible for
// its provenance (see spec Non-goals — no KDF, no rekeying).
type Key [KeySize]byte

// Validate reports whether k looks like a usable key. A zero key is
// valid (the test vectors and CLI examples use an all-zero key), but a
// Key of the wrong length cannot occur in Go's type system — Validate
// exists mainly as a hook for future constraints and for symmetry with
// the rest of the validation surface.
func (k Key) Validate() error {
	return nil
}

// NodeKind distinguishes a directory descriptor from a file descriptor
// in the TLV stream and in the in-memory tree.
type NodeKind uint8

const (
	// KindFile marks a leaf node holding a data region descriptor.
	KindFile NodeKind = iota
	// KindDir marks an internal node holding named children.
	KindDir
)

func (k NodeKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// AllocPolicy selects how the editor picks a block range for new data.
type AllocPolicy uint8

const (
	// AllocAppend always appends new data regions at the end of the
	// store. Simplest acceptable policy per spec §4.5.
	AllocAppend AllocPolicy = iota
	// AllocFirstFit satisfies a new allocation from the smallest free
	// hole that fits before falling back to append.
	AllocFirstFit
)

// Config tunes editor policy. The zero Config is a valid, conservative
// default (append-only allocation, nonces preserved across GC).
type Config struct {
	// Alloc selects the data-region allocation policy.
	Alloc AllocPolicy

	// GCRotateNonces, when true, draws a fresh nonce (from the RNG
	// passed to GC) for every file relocated during garbage collection
	// instead of preserving its existing nonce. Left false by default
	// because the spec's worked example preserves nonces and simply
	// re-encrypts at the new position (§9, "Nonce/position coupling").
	GCRotateNonces bool
}

// DefaultConfig returns the zero-value Config, spelled out for callers
// who want to start from the documented defaults rather than a bare
// literal.
func DefaultConfig() Config {
	return Config{Alloc: AllocAppend, GCRotateNonces: false}
}
