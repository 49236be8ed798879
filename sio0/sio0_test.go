package sio0_test

import (
	"testing"

	"github.com/retropix/psxcore/sio0"
	"github.com/stretchr/testify/assert"
)

func TestPadRespondsWithIDAndButtons(t *testing.T) {
	pad := sio0.NewPad()
	pad.ButtonMask = 0x0008 // start button held
	c := sio0.New()
	c.AttachPad(0, pad)

	c.WriteData(0x01)
	assert.Equal(t, uint8(0xFF), c.ReadData())
	c.WriteData(0x42)
	assert.Equal(t, uint8(0x41), c.ReadData())
	c.WriteData(0x00)
	assert.Equal(t, uint8(0x5A), c.ReadData())
}

func TestMemoryCardRespondsToSelect(t *testing.T) {
	card := sio0.NewMemoryCard()
	c := sio0.New()
	c.AttachCard(0, card)
	c.WriteData(0x81)
	assert.True(t, c.Status()&(1<<7) != 0, "ack line must pulse on a recognized memory card command")
}

func TestMemoryCardSectorRoundTrip(t *testing.T) {
	card := sio0.NewMemoryCard()
	payload := make([]byte, 128)
	payload[0] = 0x5A
	card.WriteSector(3, payload)
	assert.Equal(t, byte(0x5A), card.ReadSector(3)[0])
}
