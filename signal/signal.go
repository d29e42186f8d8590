// Package signal converts between the raw wire format of the processing
// unit and in-memory sample buffers. The wire format is headerless
// interleaved signed 32-bit little-endian PCM, mono, 48 kHz. In memory
// samples are normalized float64 values in [-1, 1].
package signal

import (
	"encoding/binary"
	"math"
	"time"
)

// SampleSize is the size of a single wire-format sample in bytes.
const SampleSize = 4

// scale is used for int32-to-float conversion and backward.
const scale = float64(math.MaxInt32) + 1

// Float64 is a mono float64 signal.
type Float64 []float64

// Raw is a mono signal in wire format.
type Raw []byte

// Float64 decodes raw bytes to a normalized float64 buffer. Trailing bytes
// which do not form a full sample are dropped.
func (r Raw) Float64() Float64 {
	if len(r) < SampleSize {
		return nil
	}
	floats := make(Float64, len(r)/SampleSize)
	for i := range floats {
		s := int32(binary.LittleEndian.Uint32(r[i*SampleSize:]))
		floats[i] = float64(s) / scale
	}
	return floats
}

// Raw encodes a float64 buffer to wire format. Values outside [-1, 1] are
// clipped.
func (floats Float64) Raw() Raw {
	if len(floats) == 0 {
		return nil
	}
	raw := make(Raw, len(floats)*SampleSize)
	for i, f := range floats {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		s := int64(f * scale)
		if s > math.MaxInt32 {
			s = math.MaxInt32
		}
		binary.LittleEndian.PutUint32(raw[i*SampleSize:], uint32(int32(s)))
	}
	return raw
}

// Size returns the number of samples in the buffer.
func (floats Float64) Size() int {
	return len(floats)
}

// Silence returns a zero-valued buffer of the requested size.
func Silence(size int) Float64 {
	return make(Float64, size)
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}
