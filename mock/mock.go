// Package mock provides test doubles for pipeline components.
package mock

import (
	"sync"
	"time"
)

// Sink is a playback sink double which records every written frame.
//
// When Gate is set, each Write first receives one token from it, which lets
// tests step the bridge deterministically; closing Gate unblocks all
// writes. WriteErr, when set, is returned by every subsequent Write.
type Sink struct {
	Gate     chan struct{}
	Lat      time.Duration
	m        sync.Mutex
	frames   [][]float64
	writeErr error
	closed   bool
}

// Write records a copy of the frame.
func (s *Sink) Write(frame []float64) error {
	if s.Gate != nil {
		<-s.Gate
	}
	s.m.Lock()
	defer s.m.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	c := make([]float64, len(frame))
	copy(c, frame)
	s.frames = append(s.frames, c)
	return nil
}

// Latency returns the configured fake latency.
func (s *Sink) Latency() time.Duration {
	return s.Lat
}

// Close marks the sink closed. It is idempotent.
func (s *Sink) Close() error {
	s.m.Lock()
	defer s.m.Unlock()
	s.closed = true
	return nil
}

// FailWrites makes every subsequent Write return err.
func (s *Sink) FailWrites(err error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.writeErr = err
}

// Frames returns a snapshot of all recorded frames.
func (s *Sink) Frames() [][]float64 {
	s.m.Lock()
	defer s.m.Unlock()
	frames := make([][]float64, len(s.frames))
	copy(frames, s.frames)
	return frames
}

// FrameCount returns the number of frames written so far.
func (s *Sink) FrameCount() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.frames)
}

// Closed reports whether Close was called.
func (s *Sink) Closed() bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.closed
}
