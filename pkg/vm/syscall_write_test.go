package vm

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestAppendIOBufPrintsCompletedLinesImmediately(t *testing.T) {
	program := newTestProgram(nil)
	rt := New(program, nil, Options(), nil)
	rt.initialize()

	out := captureStdout(t, func() {
		rt.appendIOBuf(fdStdout, []byte("hello\nwor"))
	})

	assert.Equal(t, "stdout: hello\n", out)
	assert.Equal(t, []byte("wor"), rt.ioBuf[fdStdout].buf)
}

func TestAppendIOBufHoldsPartialLineAcrossWrites(t *testing.T) {
	program := newTestProgram(nil)
	rt := New(program, nil, Options(), nil)
	rt.initialize()

	out := captureStdout(t, func() {
		rt.appendIOBuf(fdStdout, []byte("wor"))
		rt.appendIOBuf(fdStdout, []byte("ld\n"))
	})

	assert.Equal(t, "stdout: world\n", out)
	assert.Empty(t, rt.ioBuf[fdStdout].buf)
}

func TestPostprocessFlushesOnlyRemainingPartialLine(t *testing.T) {
	program := newTestProgram(nil)
	rt := New(program, nil, Options(), nil)
	rt.initialize()

	out := captureStdout(t, func() {
		rt.appendIOBuf(fdStdout, []byte("first\nsecond"))
		rt.postprocess()
	})

	assert.Equal(t, "stdout: first\nstdout: second\n", out)
	assert.Empty(t, rt.ioBuf[fdStdout].buf)
}
