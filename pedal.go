package pedal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/pipelined/pedal/control"
)

// Wire format constants. The processing unit and the playback device both
// run at this fixed rate.
const (
	// SampleRate of the audio wire format.
	SampleRate = 48000
	// NumChannels of the audio wire format.
	NumChannels = 1
	// BufferSize is the number of samples read from the unit per frame.
	BufferSize = 1024
)

// State identifies one of the possible states the pipeline can be in.
type State int

// Pipeline states.
const (
	Idle State = iota
	Starting
	Playing
	Paused
	Stopping
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopping:
		return "stopping"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrInvalidState is returned if a pipeline method cannot be executed at
// this moment.
var ErrInvalidState = errors.New("invalid state")

// ErrUnknownEffect is returned when the requested effect identity is not in
// the catalogue.
var ErrUnknownEffect = errors.New("unknown effect")

// ErrNoSource is returned by Start when no audio source was provided.
var ErrNoSource = errors.New("audio source is not set")

// ErrNoSink is returned by Start when no sink opener was provided.
var ErrNoSink = errors.New("playback sink is not set")

// ErrNoUnit is returned by Start when the processing unit executable was
// not provided.
var ErrNoUnit = errors.New("processing unit executable is not set")

// Parameters are the four pot values of the active effect, each in [0, 99].
type Parameters [4]int

// Clamped returns the parameters with every value limited to [0, 99].
func (p Parameters) Clamped() Parameters {
	for i := range p {
		p[i] = control.Clamp(p[i])
	}
	return p
}

// Notification is emitted by the pipeline on every state change. Err is set
// when the transition was caused by a stream or device failure.
type Notification struct {
	State State
	Err   error
}

// Logger is a global interface for pedal loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

// Sink is the playback device the bridge writes decoded frames to. Write
// may block to provide backpressure; this is the only flow control between
// the processing unit and playback.
type Sink interface {
	Write(frame []float64) error
	Latency() time.Duration
	Close() error
}

// SinkOpener opens a playback sink for a run of the pipeline.
type SinkOpener func(sampleRate, numChannels, bufferSize int) (Sink, error)

// Source provides the audio fed to the processing unit. Open is called on
// every pipeline start, so a restart replays the source from the beginning.
type Source interface {
	Open() (io.Reader, error)
}

type fileSource string

func (s fileSource) Open() (io.Reader, error) {
	return os.Open(string(s))
}

// FileSource reads wire-format audio from a file. The file descriptor is
// handed to the processing unit directly.
func FileSource(path string) Source {
	return fileSource(path)
}

type bufferSource []byte

func (s bufferSource) Open() (io.Reader, error) {
	return bytes.NewReader(s), nil
}

// BufferSource feeds wire-format audio from memory. The buffer is pumped
// into the unit by a writer which closes the unit's stdin after the last
// byte.
func BufferSource(data []byte) Source {
	return bufferSource(data)
}
