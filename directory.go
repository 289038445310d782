package paks

import "strings"

// fileDescriptor is the data-region descriptor carried by a file node
// (spec §3 "File descriptor"): where its ciphertext lives, how it was
// encrypted, and the tag that authenticates it.
type fileDescriptor struct {
	start       uint64
	blockCount  uint64
	byteLength  uint64
	nonce       uint64
	mac         [16]byte
}

// node is one entry in the in-memory directory tree: either a file
// (kind == KindFile, descriptor set, children nil) or a directory
// (kind == KindDir, children holds its ordered entries, descriptor
// unused). The tree's root is a node with an empty name and KindDir.
type node struct {
	name     string
	kind     NodeKind
	file     fileDescriptor
	children []*node
}

func newDirNode(name string) *node {
	return &node{name: name, kind: KindDir}
}

// Directory is the in-memory representation of an archive's namespace:
// a tree whose internal nodes are directories and whose leaves are
// files, traversed and mutated by Editor and walked read-only by
// Reader (spec §4.4).
type Directory struct {
	root *node
}

// newDirectory returns an empty directory (no children under root).
func newDirectory() *Directory {
	return &Directory{root: newDirNode("")}
}

// splitPath breaks a slash-separated path into its components. Paths
// never have a leading slash (spec §4.4); splitPath does not validate
// — callers run validatePath first.
func splitPath(path string) []string {
	return strings.Split(path, "/")
}

// child finds n's direct child named name, or nil.
func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// addChild appends c to n's children. Callers must have already
// checked for a name collision (spec invariant 6: no two siblings
// share a name).
func (n *node) addChild(c *node) {
	n.children = append(n.children, c)
}

// removeChild detaches the child named name, if present, and reports
// whether it found one.
func (n *node) removeChild(name string) bool {
	for i, c := range n.children {
		if c.name == name {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}

// resolve walks path component by component from the root, returning
// the final node. A missing component yields ErrNotFound; a file
// component reached mid-path yields ErrNotADirectory (spec §4.4).
func (d *Directory) resolve(path string) (*node, error) {
	parts := splitPath(path)
	cur := d.root
	for i, part := range parts {
		next := cur.child(part)
		if next == nil {
			return nil, newPathError(path, PathNotFound)
		}
		if next.kind == KindFile && i != len(parts)-1 {
			return nil, newPathError(path, PathNotADirectory)
		}
		cur = next
	}
	return cur, nil
}

// resolveParent walks all but the last component of path, creating any
// missing intermediate directories along the way (spec §4.5 create:
// "if the parent directory does not exist, create intermediate
// directory nodes"). It returns the parent node and the final
// component's name.
func (d *Directory) resolveParent(path string) (*node, string, error) {
	parts := splitPath(path)
	cur := d.root
	for _, part := range parts[:len(parts)-1] {
		next := cur.child(part)
		if next == nil {
			next = newDirNode(part)
			cur.addChild(next)
		} else if next.kind == KindFile {
			return nil, "", newPathError(path, PathNotADirectory)
		}
		cur = next
	}
	return cur, parts[len(parts)-1], nil
}

// Entry is one (path, descriptor) pair yielded by Directory.Walk and
// Reader.Iter, in depth-first pre-order (spec §4.4/§4.6).
type Entry struct {
	Path       string
	IsDir      bool
	ByteLength uint64 // valid only when !IsDir
}

// Walk visits every node in the tree, depth-first pre-order, calling fn
// with each entry's full path. Directories are visited before their
// children; the (unnamed) root itself is not visited.
func (d *Directory) Walk(fn func(Entry)) {
	var walk func(n *node, prefix string)
	walk = func(n *node, prefix string) {
		for _, c := range n.children {
			path := c.name
			if prefix != "" {
				path = prefix + "/" + c.name
			}
			if c.kind == KindDir {
				fn(Entry{Path: path, IsDir: true})
				walk(c, path)
			} else {
				fn(Entry{Path: path, IsDir: false, ByteLength: c.file.byteLength})
			}
		}
	}
	walk(d.root, "")
}
