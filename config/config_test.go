package config_test

import (
	"testing"

	"github.com/retropix/psxcore/config"
	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresBIOS(t *testing.T) {
	c := config.Default()
	c.DiscPath = "game.bin"
	assert.Error(t, c.Validate())
}

func TestValidateRequiresDiscOrEXE(t *testing.T) {
	c := config.Default()
	c.BIOSPath = "scph1001.bin"
	assert.Error(t, c.Validate())
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	c := config.Default()
	c.BIOSPath = "scph1001.bin"
	c.DiscPath = "game.bin"
	assert.NoError(t, c.Validate())
}
