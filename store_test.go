package paks

import (
	"testing"

	"github.com/absfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AppendReadWriteTruncate(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, uint64(0), s.Len())

	b := []Block{{1}, {2}, {3}}
	start, err := s.Append(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), start)
	assert.Equal(t, uint64(3), s.Len())

	got, err := s.ReadAt(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []Block{{2}, {3}}, got)

	require.NoError(t, s.WriteAt(0, []Block{{9}}))
	got, err = s.ReadAt(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []Block{{9}}, got)

	require.NoError(t, s.Truncate(2))
	assert.Equal(t, uint64(2), s.Len())

	_, err = s.ReadAt(0, 3)
	assert.Error(t, err, "reading past the truncated length must fail")
}

func TestMemoryStore_RangeOutOfBoundsErrors(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Append(make([]Block, 2))
	require.NoError(t, err)

	_, err = s.ReadAt(1, 5)
	assert.Error(t, err)

	err = s.WriteAt(1, make([]Block, 5))
	assert.Error(t, err)

	err = s.Truncate(10)
	assert.Error(t, err)
}

// newMemfsFile opens a fresh, empty, block-aligned file on an in-memory
// absfs.FileSystem, exercising FileStore the same way chunked_file_test.go
// exercises chunked files over memfs.NewFS() instead of touching disk.
func newMemfsFile(t *testing.T) *FileStore {
	t.Helper()
	fs, err := memfs.NewFS()
	require.NoError(t, err)

	f, err := fs.Create("/archive.paks")
	require.NoError(t, err)

	fstore, err := NewFileStore(f)
	require.NoError(t, err)
	return fstore
}

func TestFileStore_AppendReadWriteTruncate(t *testing.T) {
	s := newMemfsFile(t)
	assert.Equal(t, uint64(0), s.Len())

	blocks := []Block{{1, 1}, {2, 2}, {3, 3}}
	start, err := s.Append(blocks)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), start)
	assert.Equal(t, uint64(3), s.Len())

	got, err := s.ReadAt(0, 3)
	require.NoError(t, err)
	assert.Equal(t, blocks, got)

	require.NoError(t, s.WriteAt(1, []Block{{7, 7}}))
	got, err = s.ReadAt(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []Block{{7, 7}}, got)

	require.NoError(t, s.Flush())

	require.NoError(t, s.Truncate(1))
	assert.Equal(t, uint64(1), s.Len())
}

func TestFileStore_RejectsMisalignedFile(t *testing.T) {
	fs, err := memfs.NewFS()
	require.NoError(t, err)

	f, err := fs.Create("/misaligned.paks")
	require.NoError(t, err)
	_, err = f.Write(make([]byte, 10))
	require.NoError(t, err)

	_, err = NewFileStore(f)
	assert.Error(t, err, "a non-block-aligned file length must be rejected")
}
