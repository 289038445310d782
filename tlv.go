package paks

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// TLV tag bytes for the directory stream (spec §4.4/§6).
const (
	tagFile = uint8(1)
	tagDir  = uint8(2)
)

// maxNameLen bounds a single path component so a corrupted length
// field can never trigger a multi-gigabyte allocation while parsing.
const maxNameLen = 1 << 16

// encodeDirectory serializes a Directory's tree into the depth-first
// TLV stream described in spec §4.4/§6: the root is implicit, so only
// its children (and their descendants) are written.
func encodeDirectory(d *Directory) []byte {
	buf := new(bytes.Buffer)
	for _, c := range d.root.children {
		encodeNode(buf, c)
	}
	return buf.Bytes()
}

func encodeNode(buf *bytes.Buffer, n *node) {
	nameBytes := []byte(n.name)

	switch n.kind {
	case KindFile:
		buf.WriteByte(tagFile)
		binary.Write(buf, binary.LittleEndian, uint16(len(nameBytes)))
		buf.Write(nameBytes)
		binary.Write(buf, binary.LittleEndian, n.file.start)
		binary.Write(buf, binary.LittleEndian, n.file.blockCount)
		binary.Write(buf, binary.LittleEndian, n.file.byteLength)
		binary.Write(buf, binary.LittleEndian, n.file.nonce)
		buf.Write(n.file.mac[:])

	case KindDir:
		buf.WriteByte(tagDir)
		binary.Write(buf, binary.LittleEndian, uint16(len(nameBytes)))
		buf.Write(nameBytes)
		binary.Write(buf, binary.LittleEndian, uint64(len(n.children)))
		for _, c := range n.children {
			encodeNode(buf, c)
		}
	}
}

// decodeDirectory parses a TLV stream back into a Directory, rejecting
// duplicate sibling names as spec §9 requires ("the TLV format does
// not enforce uniqueness on decode; implementations MUST reject
// duplicates during parse").
func decodeDirectory(data []byte) (*Directory, error) {
	r := bytes.NewReader(data)
	root := newDirNode("")

	children, err := decodeChildren(r, -1)
	if err != nil {
		return nil, err
	}
	root.children = children

	return &Directory{root: root}, nil
}

// decodeChildren reads count descriptors (or, if count < 0, reads until
// r is exhausted — used only for the implicit root) and returns them as
// a slice, rejecting duplicate names among siblings.
func decodeChildren(r *bytes.Reader, count int) ([]*node, error) {
	var out []*node
	seen := make(map[string]bool)

	readOne := func() (*node, error) {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}

		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, newDirectoryError(fmt.Sprintf("reading name length: %s", err))
		}
		if int(nameLen) > maxNameLen || int(nameLen) > r.Len() {
			return nil, newDirectoryError("name length exceeds remaining stream")
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, newDirectoryError(fmt.Sprintf("reading name: %s", err))
		}
		name := string(nameBytes)
		if err := validateName(name); err != nil {
			return nil, err
		}

		switch tag {
		case tagFile:
			n := &node{name: name, kind: KindFile}
			if err := binary.Read(r, binary.LittleEndian, &n.file.start); err != nil {
				return nil, newDirectoryError("reading file start")
			}
			if err := binary.Read(r, binary.LittleEndian, &n.file.blockCount); err != nil {
				return nil, newDirectoryError("reading file block count")
			}
			if err := binary.Read(r, binary.LittleEndian, &n.file.byteLength); err != nil {
				return nil, newDirectoryError("reading file byte length")
			}
			if err := binary.Read(r, binary.LittleEndian, &n.file.nonce); err != nil {
				return nil, newDirectoryError("reading file nonce")
			}
			if _, err := io.ReadFull(r, n.file.mac[:]); err != nil {
				return nil, newDirectoryError("reading file mac")
			}
			if n.file.byteLength > n.file.blockCount*BlockSize {
				return nil, newDirectoryError(fmt.Sprintf("file %q: byte length %d exceeds block capacity %d", name, n.file.byteLength, n.file.blockCount*BlockSize))
			}
			return n, nil

		case tagDir:
			n := newDirNode(name)
			var childCount uint64
			if err := binary.Read(r, binary.LittleEndian, &childCount); err != nil {
				return nil, newDirectoryError("reading child count")
			}
			if childCount > uint64(r.Len()) {
				return nil, newDirectoryError("child count exceeds remaining stream")
			}
			children, err := decodeChildren(r, int(childCount))
			if err != nil {
				return nil, err
			}
			n.children = children
			return n, nil

		default:
			return nil, newDirectoryError(fmt.Sprintf("invalid tag byte %#x", tag))
		}
	}

	if count < 0 {
		for r.Len() > 0 {
			n, err := readOne()
			if err != nil {
				if err == io.EOF {
					break
				}
				return nil, err
			}
			if seen[n.name] {
				return nil, newDirectoryError(fmt.Sprintf("duplicate sibling name %q", n.name))
			}
			seen[n.name] = true
			out = append(out, n)
		}
		return out, nil
	}

	for i := 0; i < count; i++ {
		n, err := readOne()
		if err != nil {
			return nil, newDirectoryError(fmt.Sprintf("reading child %d of %d: %s", i, count, err))
		}
		if seen[n.name] {
			return nil, newDirectoryError(fmt.Sprintf("duplicate sibling name %q", n.name))
		}
		seen[n.name] = true
		out = append(out, n)
	}
	return out, nil
}
