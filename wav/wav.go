// Package wav adapts wav files to the pipeline wire format: a Source
// decodes a wav file into the raw stream fed to the processing unit, a
// Recorder captures played frames into a wav file.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/pedal"
	"github.com/pipelined/pedal/signal"
)

// ErrUnsupportedBitDepth is returned when the file is not 16 or 32 bit.
var ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")

// ErrInvalidFile is returned when the file is not a valid wav file.
var ErrInvalidFile = errors.New("wav is not valid")

// ErrSampleRate is returned when the file does not match the wire sample
// rate. Use the converter for such files.
var ErrSampleRate = errors.New("unsupported sample rate")

const audioFormatPCM = 1

// decode block size, in samples per channel
const blockSize = 2048

// Source decodes a wav file into the wire format. Multi-channel files are
// downmixed to mono by averaging; the file must already be at the wire
// sample rate.
type Source string

// Open validates the file and returns a reader producing wire-format
// bytes. The reader implements io.Closer and releases the file once
// drained or closed.
func (s Source) Open() (io.Reader, error) {
	f, err := os.Open(string(s))
	if err != nil {
		return nil, err
	}
	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, string(s))
	}
	if d.BitDepth != 16 && d.BitDepth != 32 {
		f.Close()
		return nil, ErrUnsupportedBitDepth
	}
	if int(d.SampleRate) != pedal.SampleRate {
		f.Close()
		return nil, fmt.Errorf("%w: %v Hz", ErrSampleRate, d.SampleRate)
	}

	numChannels := d.Format().NumChannels
	return &reader{
		file:     f,
		decoder:  d,
		channels: numChannels,
		scale:    float64(int(1) << (d.BitDepth - 1)),
		ib: &audio.IntBuffer{
			Format:         d.Format(),
			Data:           make([]int, blockSize*numChannels),
			SourceBitDepth: int(d.BitDepth),
		},
	}, nil
}

type reader struct {
	file     *os.File
	decoder  *wav.Decoder
	channels int
	scale    float64
	ib       *audio.IntBuffer

	m       sync.Mutex
	pending signal.Raw
	closed  bool
}

func (r *reader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.closed {
		return 0, os.ErrClosed
	}
	for len(r.pending) == 0 {
		if err := r.fill(); err != nil {
			r.closeLocked()
			return 0, err
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// Close releases the file. It is idempotent; reads after Close fail.
func (r *reader) Close() error {
	r.m.Lock()
	defer r.m.Unlock()
	return r.closeLocked()
}

func (r *reader) closeLocked() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// fill decodes one block, downmixes it and encodes it to raw bytes.
func (r *reader) fill() error {
	read, err := r.decoder.PCMBuffer(r.ib)
	if err != nil {
		return err
	}
	if read == 0 {
		return io.EOF
	}
	samples := r.ib.Data[:read]
	floats := make(signal.Float64, 0, read/r.channels)
	for i := 0; i+r.channels <= len(samples); i += r.channels {
		var sum float64
		for c := 0; c < r.channels; c++ {
			sum += float64(samples[i+c])
		}
		floats = append(floats, sum/float64(r.channels)/r.scale)
	}
	r.pending = floats.Raw()
	return nil
}

// Recorder saves played frames to a wav file. It implements the playback
// sink interface and is meant to be combined with a real sink via Tee.
type Recorder struct {
	bitDepth int
	scale    float64
	file     *os.File
	encoder  *wav.Encoder
	ib       *audio.IntBuffer

	m      sync.Mutex
	closed bool
}

// NewRecorder creates a wav file and prepares the encoder for wire-format
// frames.
func NewRecorder(path string, bitDepth int) (*Recorder, error) {
	if bitDepth != 16 && bitDepth != 32 {
		return nil, ErrUnsupportedBitDepth
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		bitDepth: bitDepth,
		scale:    float64(int(1) << (bitDepth - 1)),
		file:     f,
		encoder:  wav.NewEncoder(f, pedal.SampleRate, bitDepth, pedal.NumChannels, audioFormatPCM),
		ib: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: pedal.NumChannels,
				SampleRate:  pedal.SampleRate,
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write encodes one frame.
func (r *Recorder) Write(frame []float64) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.closed {
		return os.ErrClosed
	}
	data := make([]int, len(frame))
	for i, v := range frame {
		switch {
		case v >= 1:
			data[i] = int(r.scale) - 1
		case v < -1:
			data[i] = -int(r.scale)
		default:
			data[i] = int(v * r.scale)
		}
	}
	r.ib.Data = data
	return r.encoder.Write(r.ib)
}

// Latency of a file recorder is zero.
func (r *Recorder) Latency() time.Duration { return 0 }

// Close finalizes the wav header and closes the file. It is idempotent.
func (r *Recorder) Close() error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.encoder.Close()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}
