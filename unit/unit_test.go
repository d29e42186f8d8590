package unit_test

import (
	"bytes"
	"crypto/rand"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/pedal/control"
	"github.com/pipelined/pedal/internal/fakeunit"
	"github.com/pipelined/pedal/unit"
)

func TestMain(m *testing.M) {
	if code, ok := fakeunit.Run(); ok {
		os.Exit(code)
	}
	goleak.VerifyTestMain(m)
}

func TestSpawnBufferSource(t *testing.T) {
	t.Setenv(fakeunit.Env, "copy")

	data := make([]byte, 16*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)

	h, err := unit.Spawn(unit.Spec{
		Executable: os.Args[0],
		Effect:     "echo",
		Pots:       [4]int{30, 30, 30, 30},
		Stdin:      bytes.NewReader(data),
	})
	require.NoError(t, err)
	defer h.Close()

	out, err := io.ReadAll(h.Output())
	assert.NoError(t, err)
	assert.Equal(t, data, out)

	assert.NoError(t, h.Terminate(time.Second))
	assert.False(t, h.Running())
	assert.NotEmpty(t, h.ID())
}

func TestSpawnFileSource(t *testing.T) {
	t.Setenv(fakeunit.Env, "copy")

	path := t.TempDir() + "/input.raw"
	data := []byte("raw audio bytes")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	h, err := unit.Spawn(unit.Spec{
		Executable: os.Args[0],
		Effect:     "flanger",
		Pots:       [4]int{60, 60, 60, 60},
		Stdin:      f,
	})
	require.NoError(t, err)
	defer h.Close()

	out, err := io.ReadAll(h.Output())
	assert.NoError(t, err)
	assert.Equal(t, data, out)
	assert.NoError(t, h.Terminate(time.Second))
}

func TestControlDelivery(t *testing.T) {
	t.Setenv(fakeunit.Env, "control-echo")

	h, err := unit.Spawn(unit.Spec{
		Executable: os.Args[0],
		Effect:     "echo",
		Pots:       [4]int{30, 30, 30, 30},
		Stdin:      bytes.NewReader(nil),
		Control:    true,
	})
	require.NoError(t, err)
	defer h.Close()

	ch := control.New(h.Control())
	ch.Send(1, 80)

	line := make([]byte, 5)
	_, err = io.ReadFull(h.Output(), line)
	assert.NoError(t, err)
	assert.Equal(t, "p180\n", string(line))

	assert.NoError(t, ch.Close())
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("unit did not exit after control close")
	}
	assert.NoError(t, h.Terminate(time.Second))
}

func TestTerminateEscalatesToKill(t *testing.T) {
	t.Setenv(fakeunit.Env, "stubborn")

	h, err := unit.Spawn(unit.Spec{
		Executable: os.Args[0],
		Effect:     "echo",
		Stdin:      bytes.NewReader(nil),
	})
	require.NoError(t, err)
	defer h.Close()

	start := time.Now()
	h.Terminate(100 * time.Millisecond)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.False(t, h.Running())
}

func TestSpawnFailure(t *testing.T) {
	h, err := unit.Spawn(unit.Spec{
		Executable: "/nonexistent/processing-unit",
		Effect:     "echo",
		Stdin:      bytes.NewReader(nil),
	})
	assert.Error(t, err)
	assert.Nil(t, h)
}

func TestCloseIdempotent(t *testing.T) {
	t.Setenv(fakeunit.Env, "copy")

	h, err := unit.Spawn(unit.Spec{
		Executable: os.Args[0],
		Effect:     "echo",
		Stdin:      bytes.NewReader(nil),
		Control:    true,
	})
	require.NoError(t, err)
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("unit did not exit")
	}
	require.NoError(t, h.Terminate(time.Second))

	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
}
