package paks

import (
	"fmt"
	"io"
	"os"

	"github.com/absfs/absfs"
	"github.com/google/renameio"
)

// BlockStore is a mutable sequence of 16-byte blocks (spec §4.3): the
// editor's only view of its backing medium. Two implementations are
// provided — MemoryStore (a growable in-memory vector) and FileStore
// (a block-aligned view over a seekable absfs.File, so the same code
// runs over a real file or an in-memory absfs.FileSystem such as
// github.com/absfs/memfs).
type BlockStore interface {
	// Len returns the number of blocks currently in the store.
	Len() uint64

	// ReadAt copies count blocks starting at start into a fresh slice.
	// The range [start, start+count) must lie within Len().
	ReadAt(start, count uint64) ([]Block, error)

	// WriteAt overwrites count blocks starting at start. The range
	// must lie within Len(); WriteAt never grows the store.
	WriteAt(start uint64, blocks []Block) error

	// Append grows the store by len(blocks) blocks and returns the
	// block index the new range starts at.
	Append(blocks []Block) (start uint64, err error)

	// Truncate shrinks the store to newLen blocks. newLen must not
	// exceed Len().
	Truncate(newLen uint64) error

	// Flush durably persists any buffered writes. A no-op for
	// MemoryStore; for FileStore it syncs the underlying file.
	Flush() error
}

// MemoryStore is a BlockStore backed by a growable slice held entirely
// in memory. The simplest conformant storage implementation (spec
// §4.3).
type MemoryStore struct {
	blocks []Block
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Len implements BlockStore.
func (s *MemoryStore) Len() uint64 { return uint64(len(s.blocks)) }

// ReadAt implements BlockStore.
func (s *MemoryStore) ReadAt(start, count uint64) ([]Block, error) {
	if err := validateRange(start, count, s.Len()); err != nil {
		return nil, err
	}
	out := make([]Block, count)
	copy(out, s.blocks[start:start+count])
	return out, nil
}

// WriteAt implements BlockStore.
func (s *MemoryStore) WriteAt(start uint64, blocks []Block) error {
	if err := validateRange(start, uint64(len(blocks)), s.Len()); err != nil {
		return err
	}
	copy(s.blocks[start:], blocks)
	return nil
}

// Append implements BlockStore.
func (s *MemoryStore) Append(blocks []Block) (uint64, error) {
	start := uint64(len(s.blocks))
	s.blocks = append(s.blocks, blocks...)
	return start, nil
}

// Truncate implements BlockStore.
func (s *MemoryStore) Truncate(newLen uint64) error {
	if newLen > s.Len() {
		return newStoreError("truncate", fmt.Errorf("new length %d exceeds store length %d", newLen, s.Len()))
	}
	s.blocks = s.blocks[:newLen]
	return nil
}

// Flush implements BlockStore; MemoryStore has nothing to flush.
func (s *MemoryStore) Flush() error { return nil }

// Snapshot returns a copy of every block currently in the store, for
// callers that want the raw archive bytes (e.g. to persist them, or to
// hand them to another MemoryStore/Reader).
func (s *MemoryStore) Snapshot() []Block {
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// FileStore is a BlockStore backed by a seekable absfs.File, using
// block-aligned ReadAt/WriteAt the way the teacher's encryptedFile
// wraps an absfs.File (file.go). Because *os.File and
// github.com/absfs/memfs both satisfy absfs.File, the exact same
// FileStore code exercises a real file on disk or an in-memory
// filesystem in tests.
type FileStore struct {
	f   absfs.File
	len uint64
}

// NewFileStore wraps f, an already-open absfs.File positioned at a
// block-aligned length, as a BlockStore. The caller owns opening and
// eventually closing f.
func NewFileStore(f absfs.File) (*FileStore, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, newStoreError("stat", err)
	}
	size := info.Size()
	if size%BlockSize != 0 {
		return nil, newStoreError("open", fmt.Errorf("file size %d is not block-aligned", size))
	}
	return &FileStore{f: f, len: uint64(size) / BlockSize}, nil
}

// Len implements BlockStore.
func (s *FileStore) Len() uint64 { return s.len }

// ReadAt implements BlockStore.
func (s *FileStore) ReadAt(start, count uint64) ([]Block, error) {
	if err := validateRange(start, count, s.len); err != nil {
		return nil, err
	}
	buf := make([]byte, count*BlockSize)
	if count > 0 {
		if _, err := s.f.ReadAt(buf, int64(start*BlockSize)); err != nil && err != io.EOF {
			return nil, newStoreError("read", err)
		}
	}
	out := make([]Block, count)
	for i := range out {
		copy(out[i][:], buf[i*BlockSize:(i+1)*BlockSize])
	}
	return out, nil
}

// WriteAt implements BlockStore.
func (s *FileStore) WriteAt(start uint64, blocks []Block) error {
	if err := validateRange(start, uint64(len(blocks)), s.len); err != nil {
		return err
	}
	buf := make([]byte, len(blocks)*BlockSize)
	for i, b := range blocks {
		copy(buf[i*BlockSize:(i+1)*BlockSize], b[:])
	}
	if _, err := s.f.WriteAt(buf, int64(start*BlockSize)); err != nil {
		return newStoreError("write", err)
	}
	return nil
}

// Append implements BlockStore.
func (s *FileStore) Append(blocks []Block) (uint64, error) {
	start := s.len
	if err := s.growTo(start + uint64(len(blocks))); err != nil {
		return 0, err
	}
	if err := s.WriteAt(start, blocks); err != nil {
		return 0, err
	}
	return start, nil
}

// growTo extends the backing file to newLen blocks, zero-filling the
// new range, and updates the cached length.
func (s *FileStore) growTo(newLen uint64) error {
	if newLen <= s.len {
		return nil
	}
	if err := s.f.Truncate(int64(newLen * BlockSize)); err != nil {
		return newStoreError("truncate", err)
	}
	s.len = newLen
	return nil
}

// Truncate implements BlockStore.
func (s *FileStore) Truncate(newLen uint64) error {
	if newLen > s.len {
		return newStoreError("truncate", fmt.Errorf("new length %d exceeds store length %d", newLen, s.len))
	}
	if err := s.f.Truncate(int64(newLen * BlockSize)); err != nil {
		return newStoreError("truncate", err)
	}
	s.len = newLen
	return nil
}

// Flush implements BlockStore by syncing the underlying file.
func (s *FileStore) Flush() error {
	if err := s.f.Sync(); err != nil {
		return newStoreError("sync", err)
	}
	return nil
}

// CreateFileStore atomically creates a brand-new, empty archive file at
// path and returns a FileStore over it. It writes through
// renameio.TempFile/CloseAtomicallyReplace (the same pattern
// distr1-distri's installer uses for internal/install/install.go) so a
// crash between creation and the caller's first Finish never leaves a
// partially-initialized file at path — satisfying spec §5's
// requirement that Finish be durable on return for file-backed stores.
func CreateFileStore(path string) (*FileStore, error) {
	t, err := renameio.TempFile("", path)
	if err != nil {
		return nil, newStoreError("create", err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return nil, newStoreError("create", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, newStoreError("open", err)
	}
	return NewFileStore(f)
}

// OpenFileStore opens an existing archive file at path read-write and
// wraps it as a FileStore.
func OpenFileStore(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, newStoreError("open", err)
	}
	return NewFileStore(f)
}

// SaveFile atomically writes a finished, in-memory archive to path.
// Editor.Finish returns no blocks itself; the blocks come from the
// store the editor finished, e.g. MemoryStore.Snapshot. It uses the same
// renameio.TempFile/CloseAtomicallyReplace pattern as CreateFileStore
// so a reader never observes a half-written archive at path.
func SaveFile(path string, blocks []Block) error {
	t, err := renameio.TempFile("", path)
	if err != nil {
		return newStoreError("save", err)
	}
	buf := make([]byte, len(blocks)*BlockSize)
	for i, b := range blocks {
		copy(buf[i*BlockSize:(i+1)*BlockSize], b[:])
	}
	if _, err := t.Write(buf); err != nil {
		return newStoreError("save", err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return newStoreError("save", err)
	}
	return nil
}
