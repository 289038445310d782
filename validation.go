package paks

import (
	"fmt"
	"strings"
)

// validateName checks that a single path component is a legal node
// name: non-empty and free of the '/' path separator.
func validateName(name string) error {
	if name == "" {
		return newDirectoryError("empty node name")
	}
	if strings.ContainsRune(name, '/') {
		return newDirectoryError(fmt.Sprintf("node name %q contains '/'", name))
	}
	return nil
}

// validatePath checks that every component of a slash-separated path is
// a legal node name and that the path itself is not empty.
func validatePath(path string) error {
	if path == "" {
		return newDirectoryError("empty path")
	}
	for _, part := range strings.Split(path, "/") {
		if err := validateName(part); err != nil {
			return err
		}
	}
	return nil
}

// validateRange checks a block range against a store length, used
// before any write/read so a bad range never reaches the backing store.
func validateRange(start, count, storeLen uint64) error {
	if count == 0 {
		return nil
	}
	end := start + count
	if end < start {
		return newStoreError("range", fmt.Errorf("block range overflow: start=%d count=%d", start, count))
	}
	if end > storeLen {
		return newStoreError("range", fmt.Errorf("block range [%d,%d) exceeds store length %d", start, end, storeLen))
	}
	return nil
}

// blockCount returns ceil(byteLength / BlockSize).
func blockCount(byteLength uint64) uint64 {
	return (byteLength + BlockSize - 1) / BlockSize
}
