// Package portaudio plays pipeline audio on the default output device.
package portaudio

import (
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/pipelined/pedal"
	"github.com/pipelined/pedal/signal"
)

// Sink writes frames to a portaudio stream on the default device. Write
// blocks until the device consumed the frame, which is the backpressure the
// pipeline relies on.
type Sink struct {
	buf     []float32
	stream  *portaudio.Stream
	latency time.Duration

	m      sync.Mutex
	closed bool
}

// Open initializes portaudio and starts a stream on the default output
// device. It satisfies pedal.SinkOpener.
func Open(sampleRate, numChannels, bufferSize int) (pedal.Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := &Sink{buf: make([]float32, bufferSize*numChannels)}
	stream, err := portaudio.OpenDefaultStream(0, numChannels, float64(sampleRate), bufferSize, &s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	s.latency = signal.DurationOf(sampleRate, int64(bufferSize))
	if info := stream.Info(); info != nil {
		s.latency += info.OutputLatency
	}
	return s, nil
}

// Write plays one frame. A short trailing frame is padded with silence to
// the stream buffer length.
func (s *Sink) Write(frame []float64) error {
	for i := range s.buf {
		if i < len(frame) {
			s.buf[i] = float32(frame[i])
		} else {
			s.buf[i] = 0
		}
	}
	return s.stream.Write()
}

// Latency reports the device output latency plus one buffer.
func (s *Sink) Latency() time.Duration {
	return s.latency
}

// Close stops the stream and terminates portaudio. It is idempotent.
func (s *Sink) Close() error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.stream.Stop()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
