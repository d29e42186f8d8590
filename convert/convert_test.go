package convert_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/pedal/convert"
	"github.com/pipelined/pedal/signal"
	"github.com/pipelined/pedal/wav"
)

func TestArgs(t *testing.T) {
	assert.Equal(
		t,
		[]string{"-y", "-v", "fatal", "-i", "in.mp3", "-f", "s32le", "-ar", "48000", "-ac", "1", "out.raw"},
		convert.Args("in.mp3", "out.raw"),
	)
}

func TestFile(t *testing.T) {
	if _, err := exec.LookPath(convert.DefaultExecutable); err != nil {
		t.Skip("ffmpeg is not installed")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "in.wav")
	dst := filepath.Join(dir, "out.raw")

	rec, err := wav.NewRecorder(src, 16)
	require.NoError(t, err)
	frame := make([]float64, 4800)
	for i := range frame {
		frame[i] = float64(i%100-50) / 100
	}
	require.NoError(t, rec.Write(frame))
	require.NoError(t, rec.Close())

	require.NoError(t, convert.New("").File(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, len(frame)*signal.SampleSize, len(data))
}

func TestFileFailure(t *testing.T) {
	if _, err := exec.LookPath(convert.DefaultExecutable); err != nil {
		t.Skip("ffmpeg is not installed")
	}
	dir := t.TempDir()
	err := convert.New("").File(context.Background(), filepath.Join(dir, "missing.wav"), filepath.Join(dir, "out.raw"))
	assert.Error(t, err)
}
