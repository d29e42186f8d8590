// Package mp3 records played frames to an mp3 file using lame.
package mp3

import (
	"bytes"
	"encoding/binary"
	"os"
	"sync"
	"time"

	"github.com/viert/lame"

	"github.com/pipelined/pedal"
)

// Recorder saves played frames to an mp3 file. It implements the playback
// sink interface and is meant to be combined with a real sink via Tee.
type Recorder struct {
	f  *os.File
	wr *lame.LameWriter

	m      sync.Mutex
	closed bool
}

// NewRecorder creates an mp3 file and initializes the encoder for the
// wire format.
func NewRecorder(path string, bitRate, quality int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r := &Recorder{
		f:  f,
		wr: lame.NewWriter(f),
	}
	r.wr.Encoder.SetBitrate(bitRate)
	r.wr.Encoder.SetQuality(quality)
	r.wr.Encoder.SetNumChannels(pedal.NumChannels)
	r.wr.Encoder.SetInSamplerate(pedal.SampleRate)
	r.wr.Encoder.SetMode(lame.MONO)
	r.wr.Encoder.SetVBR(lame.VBR_RH)
	r.wr.Encoder.InitParams()
	return r, nil
}

// Write encodes one frame as 16-bit little-endian samples.
func (r *Recorder) Write(frame []float64) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.closed {
		return os.ErrClosed
	}
	buf := new(bytes.Buffer)
	for _, v := range frame {
		switch {
		case v >= 1:
			v = 1 - 1.0/32768
		case v < -1:
			v = -1
		}
		if err := binary.Write(buf, binary.LittleEndian, int16(v*32768)); err != nil {
			return err
		}
	}
	_, err := r.wr.Write(buf.Bytes())
	return err
}

// Latency of a file recorder is zero.
func (r *Recorder) Latency() time.Duration { return 0 }

// Close flushes the encoder and closes the file. It is idempotent.
func (r *Recorder) Close() error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.wr.Close()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}
