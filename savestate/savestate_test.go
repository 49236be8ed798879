package savestate_test

import (
	"bytes"
	"testing"

	"github.com/retropix/psxcore/savestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCPUSnapshot struct {
	PC  uint32
	GPR [32]uint32
}

func TestRoundTripSingleComponent(t *testing.T) {
	w := savestate.NewWriter()
	in := fakeCPUSnapshot{PC: 0xBFC00000}
	in.GPR[8] = 0xDEADBEEF
	require.NoError(t, w.Put("cpu", in))

	var buf bytes.Buffer
	require.NoError(t, w.Encode(&buf))

	r, err := savestate.NewReader(&buf)
	require.NoError(t, err)

	var out fakeCPUSnapshot
	require.NoError(t, r.Get("cpu", &out))
	assert.Equal(t, in, out)
}

func TestMissingComponentReturnsInvalidSaveStateError(t *testing.T) {
	w := savestate.NewWriter()
	var buf bytes.Buffer
	require.NoError(t, w.Encode(&buf))

	r, err := savestate.NewReader(&buf)
	require.NoError(t, err)

	var out fakeCPUSnapshot
	err = r.Get("cpu", &out)
	assert.Error(t, err)
}

func TestCorruptStreamIsRejected(t *testing.T) {
	_, err := savestate.NewReader(bytes.NewReader([]byte("not a save state")))
	assert.Error(t, err)
}
