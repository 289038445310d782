package paks

// Reader is a read-only view over a finished archive's block store
// (spec §4.6): it decrypts and parses the directory once at Open time,
// then resolves, verifies, and decrypts individual files on demand.
// Multiple Readers may share one immutable store; Reader never writes
// to it.
type Reader struct {
	store BlockStore
	env   *Envelope
	dir   *Directory
}

// OpenReader decrypts store's header and directory under key and
// verifies the directory's own MAC, returning a Reader positioned to
// serve Read/Iter calls. Fails with a HeaderError or MacError exactly
// as Open does (spec §8 invariant 2: a wrong key fails here, not
// silently).
func OpenReader(store BlockStore, key Key) (*Reader, error) {
	env := NewEnvelope(key)

	h, err := readHeader(store, env)
	if err != nil {
		return nil, err
	}

	dirBlocks, err := store.ReadAt(h.dirStart, h.dirBlockCount)
	if err != nil {
		return nil, err
	}
	if !env.VerifyMAC(dirBlocks, h.dirMAC) {
		return nil, newMacError("")
	}
	env.CryptBlocks(h.dirNonce, h.dirStart, dirBlocks)

	dir, err := decodeDirectory(bytesFromBlocks(dirBlocks, h.dirByteLength))
	if err != nil {
		return nil, err
	}

	return &Reader{store: store, env: env, dir: dir}, nil
}

// Read resolves path, verifies the file's CBC-MAC against its
// ciphertext (constant-time, without decrypting first), decrypts with
// CTR, and returns exactly byte_length plaintext bytes (spec §4.6
// "read"). Fails with NotFound, NotAFile, or a MacError.
func (r *Reader) Read(path string) ([]byte, error) {
	n, err := r.dir.resolve(path)
	if err != nil {
		return nil, err
	}
	if n.kind != KindFile {
		return nil, newPathError(path, PathNotAFile)
	}

	blocks, err := r.store.ReadAt(n.file.start, n.file.blockCount)
	if err != nil {
		return nil, err
	}
	if !r.env.VerifyMAC(blocks, n.file.mac) {
		return nil, newMacError(path)
	}
	r.env.CryptBlocks(n.file.nonce, n.file.start, blocks)
	return bytesFromBlocks(blocks, n.file.byteLength), nil
}

// Iter returns every (path, descriptor) pair in the archive, depth-
// first pre-order (spec §4.6 "iter" — finite and restartable since it
// is computed eagerly from the already-parsed in-memory tree rather
// than streamed lazily from disk).
func (r *Reader) Iter() []Entry {
	var out []Entry
	r.dir.Walk(func(e Entry) { out = append(out, e) })
	return out
}

// Tree exposes the reader's parsed directory for inspection (e.g.
// rendering a tree view without reading any file contents).
func (r *Reader) Tree() *Directory {
	return r.dir
}
