package mp3_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/pedal/mp3"
)

func TestRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mp3")
	rec, err := mp3.NewRecorder(path, 192, 2)
	require.NoError(t, err)
	assert.Zero(t, rec.Latency())

	frame := make([]float64, 1024)
	for i := range frame {
		frame[i] = float64(i%200-100) / 100
	}
	for i := 0; i < 48; i++ {
		require.NoError(t, rec.Write(frame))
	}
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// writes after close are rejected
	assert.ErrorIs(t, rec.Write(frame), os.ErrClosed)
}
