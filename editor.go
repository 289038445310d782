package paks

import "sort"

// blockRange is a half-open [Start, Start+Count) run of block indices.
type blockRange struct {
	Start uint64
	Count uint64
}

func (r blockRange) end() uint64 { return r.Start + r.Count }

// Editor is the read-write view over an archive's block store (spec
// §4.5): it holds the parsed directory tree, the block store, and a
// free-space tracker, and drives the Open -> (mutations) -> Dirty ->
// Finish -> Closed state machine. The shape mirrors the teacher's
// encryptedFile/Filesystem pairing in encryptfs.go — one struct owning
// both the backing store and the key-scoped crypto envelope — but the
// mutations themselves (create/link/remove/move/gc) are PAKS's, not
// the teacher's passthrough file operations.
type Editor struct {
	store BlockStore
	env   *Envelope
	dir   *Directory
	cfg   Config

	closed bool

	// reserved is the on-disk directory's current block range (set at
	// Open, cleared after a GC truncates or overwrites it; Finish leaves
	// it as is, since the editor is closed afterwards). It is treated as
	// live even though no file descriptor points at it, so a later
	// allocation never overwrites the directory a reader would still
	// find at the header's recorded location before the next Finish.
	reserved blockRange
}

// Create initializes a brand-new, empty archive over store: it reserves
// the header region and writes a placeholder header, leaving an empty
// directory to be populated by subsequent operations and serialized on
// Finish. store must be empty (Len() == 0).
func Create(store BlockStore, key Key) (*Editor, error) {
	return CreateConfig(store, key, DefaultConfig())
}

// CreateConfig is Create with an explicit Config.
func CreateConfig(store BlockStore, key Key, cfg Config) (*Editor, error) {
	if store.Len() != 0 {
		return nil, newStoreError("create", errNotEmpty{})
	}
	env := NewEnvelope(key)

	placeholder := make([]Block, headerBlocks)
	if _, err := store.Append(placeholder); err != nil {
		return nil, err
	}

	return &Editor{
		store: store,
		env:   env,
		dir:   newDirectory(),
		cfg:   cfg,
	}, nil
}

// errNotEmpty is a small sentinel-shaped error for Create's precondition.
type errNotEmpty struct{}

func (errNotEmpty) Error() string { return "store is not empty" }

// Open decrypts store's header and parses its directory, returning an
// Editor positioned to mutate the existing archive (spec §4.5 "open").
// Wrong-key opens typically fail here as a malformed header or
// directory rather than a distinguishable error, matching spec §8
// invariant 2.
func Open(store BlockStore, key Key) (*Editor, error) {
	return OpenConfig(store, key, DefaultConfig())
}

// OpenConfig is Open with an explicit Config.
func OpenConfig(store BlockStore, key Key, cfg Config) (*Editor, error) {
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

	e := &Editor{
		store:    store,
		env:      env,
		dir:      dir,
		cfg:      cfg,
		reserved: blockRange{Start: h.dirStart, Count: h.dirBlockCount},
	}
	return e, nil
}

// freeRanges computes, fresh each call, the block ranges below
// store.Len() not covered by any live file's data region or by the
// on-disk directory's current reserved range (spec §4.5's free-space
// tracker). Recomputing on demand — rather than maintaining a list
// incrementally through Remove/Link — gets aliasing for free: a
// region only drops out once every descriptor referencing it is gone,
// which is exactly what liveRanges already determines.
func (e *Editor) freeRanges() []blockRange {
	live := e.liveRanges()
	if e.reserved.Count > 0 {
		live = append(live, e.reserved)
	}
	return gaps(live, e.store.Len())
}

// liveRanges returns the block range of every distinct data region
// referenced by a live file descriptor (header's own region excluded),
// deduplicated so an aliased (linked) region is not counted twice.
func (e *Editor) liveRanges() []blockRange {
	seen := make(map[uint64]bool)
	var out []blockRange
	var walk func(n *node)
	walk = func(n *node) {
		for _, c := range n.children {
			if c.kind == KindFile {
				// An empty file's start can equal a later file's start;
				// it covers no blocks, so it must not claim that start.
				if c.file.blockCount > 0 && !seen[c.file.start] {
					seen[c.file.start] = true
					out = append(out, blockRange{Start: c.file.start, Count: c.file.blockCount})
				}
			} else {
				walk(c)
			}
		}
	}
	walk(e.dir.root)
	out = append(out, blockRange{Start: 0, Count: headerBlocks})
	return out
}

// gaps computes the free block ranges below storeLen not covered by
// any range in used.
func gaps(used []blockRange, storeLen uint64) []blockRange {
	sort.Slice(used, func(i, j int) bool { return used[i].Start < used[j].Start })

	var out []blockRange
	cursor := uint64(0)
	for _, r := range used {
		if r.Start > cursor {
			out = append(out, blockRange{Start: cursor, Count: r.Start - cursor})
		}
		if r.end() > cursor {
			cursor = r.end()
		}
	}
	if cursor < storeLen {
		out = append(out, blockRange{Start: cursor, Count: storeLen - cursor})
	}
	return out
}

// alloc reserves count contiguous blocks according to e.cfg.Alloc,
// returning the starting block index. AllocFirstFit takes the
// smallest free hole that fits (recomputed from the live descriptor
// set, see freeRanges); both policies fall back to appending fresh
// blocks at the end of the store when no hole fits or count is 0.
func (e *Editor) alloc(count uint64) (uint64, error) {
	if e.cfg.Alloc == AllocFirstFit && count > 0 {
		free := e.freeRanges()
		best := -1
		for i, f := range free {
			if f.Count >= count && (best == -1 || f.Count < free[best].Count) {
				best = i
			}
		}
		if best != -1 {
			return free[best].Start, nil
		}
	}

	blocks := make([]Block, count)
	return e.store.Append(blocks)
}

// checkOpen returns ClosedError if Finish has already run.
func (e *Editor) checkOpen() error {
	if e.closed {
		return &ClosedError{}
	}
	return nil
}

// CreateFile writes data at path under key, allocating a fresh data
// region and nonce (spec §4.5 "create"). If the parent directory does
// not exist, intermediate directory nodes are created; if a file
// already exists at path, its descriptor is overwritten and its old
// data region becomes unreferenced, reclaimable at the next GC.
func (e *Editor) CreateFile(path string, data []byte, rng RNG) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := validatePath(path); err != nil {
		return err
	}

	parent, name, err := e.dir.resolveParent(path)
	if err != nil {
		return err
	}

	blocks := blocksFromBytes(data)
	nonce := rng.NextNonce()

	start, err := e.alloc(uint64(len(blocks)))
	if err != nil {
		return err
	}

	e.env.CryptBlocks(nonce, start, blocks)
	mac := e.env.MAC(blocks)
	if err := e.store.WriteAt(start, blocks); err != nil {
		return err
	}

	fd := fileDescriptor{
		start:      start,
		blockCount: uint64(len(blocks)),
		byteLength: uint64(len(data)),
		nonce:      nonce,
		mac:        mac,
	}

	if existing := parent.child(name); existing != nil {
		if existing.kind == KindDir {
			return newPathError(path, PathNotAFile)
		}
		existing.file = fd
		return nil
	}

	parent.addChild(&node{name: name, kind: KindFile, file: fd})
	return nil
}

// Link copies existingPath's file descriptor (data region, nonce, and
// MAC unchanged) into newPath, so both paths reference the same
// encrypted blocks without copying data (spec §4.5 "link").
func (e *Editor) Link(existingPath, newPath string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := validatePath(newPath); err != nil {
		return err
	}

	src, err := e.dir.resolve(existingPath)
	if err != nil {
		return err
	}
	if src.kind != KindFile {
		return newPathError(existingPath, PathNotAFile)
	}

	parent, name, err := e.dir.resolveParent(newPath)
	if err != nil {
		return err
	}
	if existing := parent.child(name); existing != nil {
		return newPathError(newPath, PathAlreadyExists)
	}

	parent.addChild(&node{name: name, kind: KindFile, file: src.file})
	return nil
}

// Remove detaches the descriptor at path. If path names a directory,
// its entire subtree is detached recursively. The underlying data
// regions remain allocated in the store until GC (spec §4.5 "remove").
func (e *Editor) Remove(path string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	parts := splitPath(path)
	if len(parts) == 0 {
		return newPathError(path, PathNotFound)
	}
	parentPath := parts[:len(parts)-1]
	name := parts[len(parts)-1]

	parent := e.dir.root
	for _, p := range parentPath {
		next := parent.child(p)
		if next == nil {
			return newPathError(path, PathNotFound)
		}
		parent = next
	}
	if !parent.removeChild(name) {
		return newPathError(path, PathNotFound)
	}
	return nil
}

// Move atomically detaches src and re-attaches it at dst (spec §4.5
// "move"). Moving onto an existing file overwrites it; moving onto an
// existing directory is rejected with AlreadyExists (spec §9's
// resolution of the open move-over-existing-directory question).
func (e *Editor) Move(src, dst string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := validatePath(dst); err != nil {
		return err
	}

	srcParts := splitPath(src)
	srcParentPath := srcParts[:len(srcParts)-1]
	srcName := srcParts[len(srcParts)-1]

	srcParent := e.dir.root
	for _, p := range srcParentPath {
		next := srcParent.child(p)
		if next == nil {
			return newPathError(src, PathNotFound)
		}
		srcParent = next
	}
	moved := srcParent.child(srcName)
	if moved == nil {
		return newPathError(src, PathNotFound)
	}

	dstParent, dstName, err := e.dir.resolveParent(dst)
	if err != nil {
		return err
	}
	if existing := dstParent.child(dstName); existing != nil {
		if existing.kind == KindDir {
			return newPathError(dst, PathAlreadyExists)
		}
	}

	srcParent.removeChild(srcName)
	dstParent.removeChild(dstName)
	moved.name = dstName
	dstParent.addChild(moved)
	return nil
}

// GC compacts the store: it computes every block range still live
// (referenced by a file descriptor after accounting for aliasing via
// Link), relocates those ranges down into the lowest available holes,
// re-encrypts each relocated region's blocks at its new position and
// recomputes its MAC, then truncates the store to the new high-water
// mark (spec §4.5 "gc", §9 "Nonce/position coupling"). The directory
// itself is not persisted here; the next Finish serializes it fresh.
func (e *Editor) GC(rng RNG) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	type liveFile struct {
		fd    *fileDescriptor
		nodes []*node
	}
	// Keyed by (start, count) so an empty file that shares its start
	// with a non-empty region is not merged into that region.
	byStart := make(map[blockRange]*liveFile)
	var order []blockRange

	var walk func(n *node)
	walk = func(n *node) {
		for _, c := range n.children {
			if c.kind == KindFile {
				key := blockRange{Start: c.file.start, Count: c.file.blockCount}
				lf, ok := byStart[key]
				if !ok {
					lf = &liveFile{fd: &c.file}
					byStart[key] = lf
					order = append(order, key)
				}
				lf.nodes = append(lf.nodes, c)
			} else {
				walk(c)
			}
		}
	}
	walk(e.dir.root)

	sort.Slice(order, func(i, j int) bool { return order[i].Start < order[j].Start })

	cursor := headerBlocks
	for _, key := range order {
		lf := byStart[key]
		oldStart := lf.fd.start
		count := lf.fd.blockCount
		newStart := cursor
		cursor += count

		if newStart == oldStart {
			continue
		}

		blocks, err := e.store.ReadAt(oldStart, count)
		if err != nil {
			return err
		}
		e.env.CryptBlocks(lf.fd.nonce, oldStart, blocks)

		nonce := lf.fd.nonce
		if e.cfg.GCRotateNonces {
			nonce = rng.NextNonce()
		}
		e.env.CryptBlocks(nonce, newStart, blocks)
		mac := e.env.MAC(blocks)

		if err := e.store.WriteAt(newStart, blocks); err != nil {
			return err
		}

		for _, n := range lf.nodes {
			n.file.start = newStart
			n.file.nonce = nonce
			n.file.mac = mac
		}
	}

	if cursor < e.store.Len() {
		if err := e.store.Truncate(cursor); err != nil {
			return err
		}
	}
	// Every block in [headerBlocks, cursor) was just (re)written by a
	// relocated file, and anything at or above cursor was truncated
	// away, so the directory's old on-disk range is gone either way.
	e.reserved = blockRange{}
	return nil
}

// Finish serializes the directory tree, allocates a block range for
// it (appending if no hole fits), encrypts it under a fresh nonce,
// computes its MAC, writes the header, flushes the store, and closes
// the editor (spec §4.5 "finish"). After Finish, every other method
// returns ClosedError.
func (e *Editor) Finish(rng RNG) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	tlv := encodeDirectory(e.dir)
	blocks := blocksFromBytes(tlv)
	start, err := e.alloc(uint64(len(blocks)))
	if err != nil {
		return err
	}

	nonce := rng.NextNonce()
	e.env.CryptBlocks(nonce, start, blocks)
	mac := e.env.MAC(blocks)

	if err := e.store.WriteAt(start, blocks); err != nil {
		return err
	}

	h := &header{
		version:       formatVersion,
		dirStart:      start,
		dirBlockCount: uint64(len(blocks)),
		dirByteLength: uint64(len(tlv)),
		dirNonce:      nonce,
		dirMAC:        mac,
	}
	if err := writeHeader(e.store, e.env, h); err != nil {
		return err
	}
	if err := e.store.Flush(); err != nil {
		return err
	}

	e.closed = true
	return nil
}

// Tree exposes the editor's in-memory directory for inspection (e.g.
// rendering a tree view); it reflects every mutation made so far,
// including ones not yet visible to a reader until the next Finish.
func (e *Editor) Tree() *Directory {
	return e.dir
}
