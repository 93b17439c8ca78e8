package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilClientIsNoOp(t *testing.T) {
	var c *Client
	assert.NotPanics(t, func() {
		c.SendPlay(1.5)
		c.SendPause(1.5)
		c.SendSeek(0)
		c.SendFrame(2.25, true)
		c.SendRegion(nil)
		c.SendRegion(&[2]float64{1, 2})
		c.SendLooping(true)
		c.SendBlackout()
		c.SendShowPath("show.json")
		c.SendSequence(0, "main")
	})
}
