package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOps(t *testing.T) *Ops {
	t.Helper()
	ops, err := NewOps(t.TempDir())
	require.NoError(t, err)
	return ops
}

func TestNewOpsRequiresAbsoluteBase(t *testing.T) {
	_, err := NewOps("relative/dir")
	assert.Error(t, err)

	ops, err := NewOps("/srv/agent/../agent/")
	require.NoError(t, err)
	assert.Equal(t, "/srv/agent", ops.BaseDir)
}

func TestResolve(t *testing.T) {
	ops := &Ops{BaseDir: "/srv/agent"}

	assert.Equal(t, "/srv/agent/notes.txt", ops.Resolve("notes.txt"))
	assert.Equal(t, "/srv/agent/a/b", ops.Resolve("a/./b"))
	assert.Equal(t, "/etc/hosts", ops.Resolve("/etc//hosts"))
	assert.Equal(t, filepath.Join("/srv", "other"), ops.Resolve("../other"))
}
