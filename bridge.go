package pedal

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipelined/pedal/signal"
)

// bridge pumps processed audio from the unit's stdout to the sink for the
// lifetime of one process handle. It keeps the latest decoded frame as a
// waveform snapshot and counts played samples. While the pause flag is set
// it substitutes equal-length silence, which keeps the device clock running
// without underrun clicks.
type bridge struct {
	out    io.Reader
	sink   Sink
	paused *atomic.Bool

	m        sync.Mutex
	snapshot signal.Float64
	position int64

	donec chan struct{}
	err   error
}

func newBridge(out io.Reader, sink Sink, paused *atomic.Bool) *bridge {
	return &bridge{
		out:    out,
		sink:   sink,
		paused: paused,
		donec:  make(chan struct{}),
	}
}

// run is the bridge loop. A zero read (io.EOF) or a partial read
// (io.ErrUnexpectedEOF) means the unit closed its output: any remainder is
// delivered and the stream ends cleanly. Anything else is a stream error.
func (b *bridge) run() {
	defer close(b.donec)
	buf := make([]byte, BufferSize*signal.SampleSize)
	for {
		n, err := io.ReadFull(b.out, buf)
		if n > 0 {
			frame := signal.Raw(buf[:n]).Float64()
			if b.paused.Load() {
				if werr := b.sink.Write(signal.Silence(frame.Size())); werr != nil {
					b.err = werr
					return
				}
			} else {
				if werr := b.sink.Write(frame); werr != nil {
					b.err = werr
					return
				}
				b.m.Lock()
				b.snapshot = frame
				b.position += int64(frame.Size())
				b.m.Unlock()
			}
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				b.err = err
			}
			return
		}
	}
}

// wait blocks until the bridge loop has exited and returns its error.
func (b *bridge) wait() error {
	<-b.donec
	return b.err
}

// join waits up to timeout for the bridge loop to exit. A false return
// means the bridge did not come down in time.
func (b *bridge) join(timeout time.Duration) bool {
	select {
	case <-b.donec:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Waveform returns a copy of the most recent decoded frame.
func (b *bridge) Waveform() signal.Float64 {
	b.m.Lock()
	defer b.m.Unlock()
	if b.snapshot == nil {
		return nil
	}
	frame := make(signal.Float64, len(b.snapshot))
	copy(frame, b.snapshot)
	return frame
}

// Position returns the number of samples played so far.
func (b *bridge) Position() int64 {
	b.m.Lock()
	defer b.m.Unlock()
	return b.position
}
