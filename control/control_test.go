package control_test

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/pedal/control"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		description string
		index       int
		value       int
		expected    string
	}{
		{"pot 1 to 80", 1, 80, "p180\n"},
		{"zero padded", 0, 5, "p005\n"},
		{"zero", 0, 0, "p000\n"},
		{"max", 3, 99, "p399\n"},
		{"clamped below", 2, -5, "p200\n"},
		{"clamped above", 2, 150, "p299\n"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, string(control.Encode(test.index, test.value)), test.description)
	}
}

func TestEncodeGrid(t *testing.T) {
	for index := 0; index < control.Pots; index++ {
		for value := 0; value < 100; value++ {
			expected := fmt.Sprintf("p%d%02d\n", index, value)
			got := control.Encode(index, value)
			assert.Equal(t, expected, string(got))
			assert.Len(t, got, 5)
		}
	}
}

type closableBuffer struct {
	bytes.Buffer
	closed int
}

func (b *closableBuffer) Close() error {
	b.closed++
	return nil
}

func TestChannelSend(t *testing.T) {
	buf := &closableBuffer{}
	c := control.New(buf)

	c.Send(1, 80)
	c.Send(0, 150)
	assert.Equal(t, "p180\np099\n", buf.String())

	// out of range indexes are dropped
	c.Send(-1, 10)
	c.Send(4, 10)
	assert.Equal(t, "p180\np099\n", buf.String())
}

func TestChannelCloseIdempotent(t *testing.T) {
	buf := &closableBuffer{}
	c := control.New(buf)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, buf.closed)

	// send after close is a no-op
	c.Send(1, 80)
	assert.Zero(t, buf.Len())
}

func TestChannelNil(t *testing.T) {
	var c *control.Channel
	c.Send(1, 80)
	assert.NoError(t, c.Close())
}

func TestChannelBrokenPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, r.Close())

	c := control.New(w)
	// the reader is gone; the write fails with EPIPE and must be discarded
	assert.NotPanics(t, func() { c.Send(1, 80) })
	assert.NoError(t, c.Close())
}

var _ io.WriteCloser = &closableBuffer{}
