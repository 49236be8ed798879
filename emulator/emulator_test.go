package emulator_test

import (
	"bytes"
	"testing"

	"github.com/retropix/psxcore/config"
	"github.com/retropix/psxcore/emulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDisc struct{}

func (stubDisc) ReadSector(int) ([]byte, error) { return make([]byte, 2352), nil }
func (stubDisc) TrackCount() int                { return 1 }
func (stubDisc) Region() string                 { return "SCEA" }

func fakeBIOS() []byte {
	return make([]byte, 512*1024)
}

func TestNewBuildsAWorkingConsole(t *testing.T) {
	cfg := config.Default()
	cfg.BIOSPath = "fake"
	cfg.DiscPath = "fake"
	c, err := emulator.New(cfg, fakeBIOS(), stubDisc{})
	require.NoError(t, err)
	assert.Equal(t, uint32(0xBFC00000), c.CPU.PC())
}

func TestSaveStateRoundTripsThroughConsole(t *testing.T) {
	cfg := config.Default()
	cfg.BIOSPath = "fake"
	cfg.DiscPath = "fake"
	c, err := emulator.New(cfg, fakeBIOS(), stubDisc{})
	require.NoError(t, err)

	c.Bus.RAM.Write32(0x1000, 0x12345678)

	var buf bytes.Buffer
	require.NoError(t, c.SaveState(&buf))

	c2, err := emulator.New(cfg, fakeBIOS(), stubDisc{})
	require.NoError(t, err)
	require.NoError(t, c2.LoadState(&buf))

	assert.Equal(t, uint32(0x12345678), c2.Bus.RAM.Read32(0x1000))
}

func TestSideloadEXERejectsBadMagic(t *testing.T) {
	cfg := config.Default()
	cfg.BIOSPath = "fake"
	cfg.EXEPath = "fake.exe"
	c, err := emulator.New(cfg, fakeBIOS(), nil)
	require.NoError(t, err)

	err = emulator.SideloadEXE(c, make([]byte, 0x800))
	assert.Error(t, err)
}
