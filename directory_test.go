package paks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ResolveParentCreatesIntermediateDirs(t *testing.T) {
	d := newDirectory()
	parent, name, err := d.resolveParent("a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "c", name)
	assert.Equal(t, "b", parent.name)

	a := d.root.child("a")
	require.NotNil(t, a)
	assert.Equal(t, KindDir, a.kind)
	b := a.child("b")
	require.NotNil(t, b)
	assert.Equal(t, KindDir, b.kind)
}

func TestDirectory_ResolveMissingComponent(t *testing.T) {
	d := newDirectory()
	_, err := d.resolve("nope")
	require.Error(t, err)
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PathNotFound, pe.Kind)
}

func TestDirectory_ResolveThroughFileIsNotADirectory(t *testing.T) {
	d := newDirectory()
	d.root.addChild(&node{name: "f", kind: KindFile})

	_, err := d.resolve("f/g")
	require.Error(t, err)
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PathNotADirectory, pe.Kind)
}

func TestDirectory_ResolveParentRejectsFileAsIntermediate(t *testing.T) {
	d := newDirectory()
	d.root.addChild(&node{name: "f", kind: KindFile})

	_, _, err := d.resolveParent("f/g")
	require.Error(t, err)
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PathNotADirectory, pe.Kind)
}

func TestDirectory_NoDuplicateSiblingNamesOnAdd(t *testing.T) {
	d := newDirectory()
	parent, name, err := d.resolveParent("dir/file")
	require.NoError(t, err)
	assert.Equal(t, "file", name)
	assert.Equal(t, 1, len(d.root.children))

	// Resolving a second path under the same parent reuses "dir" rather
	// than adding a sibling of the same name.
	parent2, name2, err := d.resolveParent("dir/other")
	require.NoError(t, err)
	assert.Equal(t, "other", name2)
	assert.Same(t, parent, parent2)
	assert.Equal(t, 1, len(d.root.children))
}

func TestDirectory_WalkDepthFirstPreOrder(t *testing.T) {
	d := newDirectory()
	sub := newDirNode("sub")
	sub.addChild(&node{name: "inner", kind: KindFile, file: fileDescriptor{byteLength: 3}})
	d.root.addChild(sub)
	d.root.addChild(&node{name: "top", kind: KindFile, file: fileDescriptor{byteLength: 1}})

	var paths []string
	d.Walk(func(e Entry) { paths = append(paths, e.Path) })

	assert.Equal(t, []string{"sub", "sub/inner", "top"}, paths)
}

func TestDirectory_RemoveChild(t *testing.T) {
	d := newDirectory()
	d.root.addChild(&node{name: "x", kind: KindFile})
	assert.True(t, d.root.removeChild("x"))
	assert.False(t, d.root.removeChild("x"))
	assert.Nil(t, d.root.child("x"))
}
