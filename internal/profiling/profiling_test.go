package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

func nonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPaths_Enabled(t *testing.T) {
	assert.False(t, Paths{}.Enabled())
	assert.True(t, Paths{Heap: "x"}.Enabled())
}

func TestSession_WritesAllProfiles(t *testing.T) {
	// Given: every profile requested
	dir := t.TempDir()
	paths := Paths{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Heap:  filepath.Join(dir, "heap.prof"),
		Trace: filepath.Join(dir, "trace.out"),
	}

	// When: some work runs inside a session
	s, err := Start(paths)
	require.NoError(t, err)
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i
	}
	_ = sum
	require.NoError(t, s.Stop())

	// Then: each file has content, and stopping again is a no-op
	nonEmpty(t, paths.CPU)
	nonEmpty(t, paths.Heap)
	nonEmpty(t, paths.Trace)
	assert.NoError(t, s.Stop())
}

func TestStart_UnwritablePath(t *testing.T) {
	_, err := Start(Paths{CPU: filepath.Join(t.TempDir(), "missing", "cpu.prof")})

	require.Error(t, err)
	assert.Equal(t, naverrors.ErrCodeIOFailure, naverrors.GetCode(err))
}

func TestStart_TraceFailureStopsCPU(t *testing.T) {
	dir := t.TempDir()

	_, err := Start(Paths{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Trace: filepath.Join(dir, "missing", "trace.out"),
	})
	require.Error(t, err)

	// CPU profiling was released, so a new session can start it again.
	s, err := Start(Paths{CPU: filepath.Join(dir, "cpu2.prof")})
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}
