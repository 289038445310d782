package paks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeKind_String(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "dir", KindDir.String())
	assert.Contains(t, NodeKind(99).String(), "NodeKind")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, AllocAppend, cfg.Alloc)
	assert.False(t, cfg.GCRotateNonces)
}

func TestKey_Validate(t *testing.T) {
	var k Key
	assert.NoError(t, k.Validate())
}
