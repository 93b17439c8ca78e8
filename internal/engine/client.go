// Package engine streams transport state to an external lighting engine
// over OSC. The editor never blocks on the engine: sends are fire-and-forget
// UDP, and a nil *Client is a usable no-op so --no-engine mode needs no
// branching at call sites.
package engine

import (
	"log"

	"github.com/hypebeast/go-osc/osc"
)

type Client struct {
	client *osc.Client
}

func NewClient(host string, port int) *Client {
	return &Client{client: osc.NewClient(host, port)}
}

func (c *Client) send(addr string, args ...interface{}) {
	if c == nil || c.client == nil {
		return
	}
	msg := osc.NewMessage(addr)
	for _, a := range args {
		msg.Append(a)
	}
	if err := c.client.Send(msg); err != nil {
		log.Printf("Error sending %s: %v", addr, err)
	}
}

func (c *Client) SendPlay(t float64) {
	c.send("/vibe/play", float32(t))
}

func (c *Client) SendPause(t float64) {
	c.send("/vibe/pause", float32(t))
}

func (c *Client) SendSeek(t float64) {
	c.send("/vibe/seek", float32(t))
}

// SendFrame is the per-tick heartbeat carrying the arbitrated playhead.
func (c *Client) SendFrame(t float64, playing bool) {
	c.send("/vibe/frame", float32(t), playing)
}

// SendRegion publishes the loop region, or clears it when r is nil. The
// leading flag keeps the message arity fixed for simple engine handlers.
func (c *Client) SendRegion(r *[2]float64) {
	if r == nil {
		c.send("/vibe/region", int32(0), float32(0), float32(0))
		return
	}
	c.send("/vibe/region", int32(1), float32(r[0]), float32(r[1]))
}

func (c *Client) SendLooping(on bool) {
	c.send("/vibe/looping", on)
}

func (c *Client) SendBlackout() {
	c.send("/vibe/blackout")
}

// SendShowPath tells the engine which show file to mirror edits from.
func (c *Client) SendShowPath(path string) {
	c.send("/vibe/show", path)
}

func (c *Client) SendSequence(index int, name string) {
	c.send("/vibe/sequence", int32(index), name)
}
