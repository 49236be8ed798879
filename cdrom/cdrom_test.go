package cdrom_test

import (
	"testing"

	"github.com/retropix/psxcore/cdrom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisc struct {
	sectors map[int][]byte
	region  string
}

func (d *fakeDisc) ReadSector(lba int) ([]byte, error) {
	return d.sectors[lba], nil
}
func (d *fakeDisc) TrackCount() int  { return 1 }
func (d *fakeDisc) Region() string   { return d.region }

// runScheduled is a synchronous stand-in for the scheduler: it runs the
// callback immediately, ignoring the delay, which is sufficient to exercise
// command sequencing without pulling in the full scheduler package.
func runScheduled(_ int, fn func()) { fn() }

func TestGetIDReturnsLicensedRegion(t *testing.T) {
	disc := &fakeDisc{region: "SCEA", sectors: map[int][]byte{}}
	var tags []cdrom.InterruptTag
	c := cdrom.New(disc, runScheduled, func(tag cdrom.InterruptTag) { tags = append(tags, tag) })

	c.ExecCommand(0x1A)
	require.Contains(t, tags, cdrom.INT2)
	resp := drain(c)
	require.Len(t, resp, 8)
	assert.Equal(t, "SCEA", string(resp[4:8]))
}

func TestGetIDWithNoDiscReportsError(t *testing.T) {
	var tags []cdrom.InterruptTag
	c := cdrom.New(nil, runScheduled, func(tag cdrom.InterruptTag) { tags = append(tags, tag) })
	c.ExecCommand(0x1A)
	assert.Contains(t, tags, cdrom.INT5)
}

func TestReadNDeliversDataSector(t *testing.T) {
	sector := make([]byte, 2352)
	for i := 24; i < 24+2048; i++ {
		sector[i] = byte(i)
	}
	disc := &fakeDisc{region: "SCEA", sectors: map[int][]byte{0: sector}}
	c := cdrom.New(disc, runScheduled, func(cdrom.InterruptTag) {})
	c.ExecCommand(0x06)
	assert.False(t, c.DataFIFOEmpty())
	assert.Equal(t, byte(24), c.ReadDataByte())
}

func drain(c *cdrom.Controller) []byte {
	var out []byte
	for !c.ResponseFIFOEmpty() {
		out = append(out, c.PopResponse())
	}
	return out
}
