// Package control implements the side channel used to push live pot
// updates into a running processing unit. Commands are one ASCII line
// each: p<index><value>\n, where index is a single digit 0-3 and value
// is a zero-padded two-digit number 00-99.
//
// The channel is fire-and-forget: there is no acknowledgement and no
// delivery guarantee beyond the FIFO order of the underlying pipe. A unit
// which exited between the update and the write simply misses it.
package control

import (
	"fmt"
	"io"
	"sync"
)

// Pots is the number of pot slots supported by the wire protocol.
const Pots = 4

// Clamp limits a pot value to the wire range [0, 99].
func Clamp(value int) int {
	if value < 0 {
		return 0
	}
	if value > 99 {
		return 99
	}
	return value
}

// Encode serializes a pot update command. The value is clamped to [0, 99].
// The index must be in [0, Pots).
func Encode(index, value int) []byte {
	return []byte(fmt.Sprintf("p%d%02d\n", index, Clamp(value)))
}

// Channel is the write end of the control pipe. The zero value and nil are
// both safe to use and behave as a closed channel.
type Channel struct {
	m      sync.Mutex
	w      io.WriteCloser
	closed bool
}

// New wraps the write end of a control pipe.
func New(w io.WriteCloser) *Channel {
	return &Channel{w: w}
}

// Send encodes and writes a single pot update. It is a no-op if the channel
// is closed or the index is out of range. Write failures are discarded: the
// unit going away mid-update is expected behavior, not an error.
func (c *Channel) Send(index, value int) {
	if c == nil || index < 0 || index >= Pots {
		return
	}
	c.m.Lock()
	defer c.m.Unlock()
	if c.closed || c.w == nil {
		return
	}
	_, _ = c.w.Write(Encode(index, value))
}

// Close closes the write end exactly once. Subsequent calls are no-ops.
func (c *Channel) Close() error {
	if c == nil {
		return nil
	}
	c.m.Lock()
	defer c.m.Unlock()
	if c.closed || c.w == nil {
		c.closed = true
		return nil
	}
	c.closed = true
	return c.w.Close()
}
