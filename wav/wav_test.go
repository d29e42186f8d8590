package wav_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/pedal"
	"github.com/pipelined/pedal/signal"
	"github.com/pipelined/pedal/wav"
)

// writeWav creates a wav file with the given interleaved samples.
func writeWav(t *testing.T, path string, sampleRate, bitDepth, numChannels int, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	e := gowav.NewEncoder(f, sampleRate, bitDepth, numChannels, 1)
	require.NoError(t, e.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, e.Close())
	require.NoError(t, f.Close())
}

func TestSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	// 0.5, -0.5, 0.25 at 16 bit
	writeWav(t, path, pedal.SampleRate, 16, 1, []int{16384, -16384, 8192})

	r, err := wav.Source(path).Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)

	floats := signal.Raw(data).Float64()
	require.Equal(t, 3, floats.Size())
	assert.InDelta(t, 0.5, floats[0], 1e-4)
	assert.InDelta(t, -0.5, floats[1], 1e-4)
	assert.InDelta(t, 0.25, floats[2], 1e-4)
}

func TestSourceDownmix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	// L/R pairs: (0.5, 0.25) and (-0.5, -0.25)
	writeWav(t, path, pedal.SampleRate, 16, 2, []int{16384, 8192, -16384, -8192})

	r, err := wav.Source(path).Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)

	floats := signal.Raw(data).Float64()
	require.Equal(t, 2, floats.Size())
	assert.InDelta(t, 0.375, floats[0], 1e-4)
	assert.InDelta(t, -0.375, floats[1], 1e-4)
}

func TestSourceClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWav(t, path, pedal.SampleRate, 16, 1, []int{16384, -16384, 8192})

	r, err := wav.Source(path).Open()
	require.NoError(t, err)
	c, ok := r.(io.Closer)
	require.True(t, ok)

	buf := make([]byte, signal.SampleSize)
	_, err = r.Read(buf)
	require.NoError(t, err)

	// close is idempotent and releases the file before the stream is
	// drained
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestSourceErrors(t *testing.T) {
	dir := t.TempDir()

	rate := filepath.Join(dir, "rate.wav")
	writeWav(t, rate, 44100, 16, 1, []int{0})
	depth := filepath.Join(dir, "depth.wav")
	writeWav(t, depth, pedal.SampleRate, 24, 1, []int{0})
	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("not audio at all"), 0o644))

	tests := []struct {
		description string
		path        string
		expected    error
	}{
		{"wrong sample rate", rate, wav.ErrSampleRate},
		{"unsupported bit depth", depth, wav.ErrUnsupportedBitDepth},
		{"invalid file", garbage, wav.ErrInvalidFile},
	}
	for _, test := range tests {
		_, err := wav.Source(test.path).Open()
		assert.ErrorIs(t, err, test.expected, test.description)
	}

	_, err := wav.Source(filepath.Join(dir, "missing.wav")).Open()
	assert.Error(t, err)
}

func TestRecorderRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	rec, err := wav.NewRecorder(path, 16)
	require.NoError(t, err)

	frame := make([]float64, 512)
	for i := range frame {
		frame[i] = float64(i%100-50) / 100
	}
	require.NoError(t, rec.Write(frame))
	require.NoError(t, rec.Write(frame))
	assert.Zero(t, rec.Latency())
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	r, err := wav.Source(path).Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	floats := signal.Raw(data).Float64()
	require.Equal(t, 1024, floats.Size())
	for i, v := range frame {
		assert.InDelta(t, v, floats[i], 1e-4)
	}
}

func TestRecorderBitDepth(t *testing.T) {
	_, err := wav.NewRecorder(filepath.Join(t.TempDir(), "out.wav"), 24)
	assert.ErrorIs(t, err, wav.ErrUnsupportedBitDepth)
}
