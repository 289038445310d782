// Package paks implements PAKS, a lightweight, obfuscated,
// content-addressable archive format inspired by Quake's PAK.
//
// # Overview
//
// A PAKS archive bundles many named byte blobs ("files") in a
// hierarchical directory. Every byte written to backing storage is
// encrypted, block by block, under a caller-supplied 128-bit key using
// Speck128/128 in CTR mode; every file carries a CBC-MAC tag computed
// over its ciphertext. Confidentiality comes from obfuscation, not from
// a hardened cryptosystem — see Security Considerations below.
//
// # Basic Usage
//
//	store := paks.NewMemoryStore()
//	key := paks.Key{ /* 16 bytes */ }
//	rng := paks.DefaultRNG{}
//
//	ed, err := paks.Create(store, key)
//	if err != nil {
//	    panic(err)
//	}
//	if err := ed.CreateFile("sub/foo", []byte("hello"), rng); err != nil {
//	    panic(err)
//	}
//	if err := ed.Finish(rng); err != nil {
//	    panic(err)
//	}
//
//	rd, err := paks.OpenReader(store, key)
//	if err != nil {
//	    panic(err)
//	}
//	data, err := rd.Read("sub/foo")
//
// # On-disk Layout
//
// The archive is a sequence of fixed 16-byte blocks. Blocks 0 through 3
// together hold the header (magic/version, directory location and
// length, directory nonce and MAC); all four are encrypted as one CTR
// run under a fixed, well-known nonce so a wrong key simply yields
// garbage that fails downstream parsing. Remaining blocks hold file
// data regions and the serialized directory TLV stream, in any order —
// the header is the only thing that says where the directory lives.
//
// # Security Considerations
//
// Protected against:
//   - Casual inspection of archive contents without the key
//   - Accidental or malicious tampering with a file's ciphertext
//     (detected by CBC-MAC on read)
//   - Accidental or malicious tampering with the directory's ciphertext
//     (detected by CBC-MAC on open)
//
// Not protected against (see spec Non-goals):
//   - Chosen-ciphertext or side-channel attacks
//   - A corrupted header, which is itself unauthenticated; depending on
//     the field hit, the damage surfaces later as a MAC failure, a
//     malformed directory, an out-of-range read, or a header error
//   - Key compromise: there is no key derivation and no rekeying
//
// # Performance
//
// Speck128/128 is a small, software-oriented ARX cipher; encrypting one
// block is a handful of adds, rotates, and xors — cheap enough that CTR
// and CBC-MAC run comfortably in pure Go without hardware acceleration.
package paks
