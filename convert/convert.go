// Package convert produces wire-format raw files from arbitrary audio
// files using ffmpeg.
package convert

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pipelined/pedal"
)

// DefaultExecutable is the converter binary looked up on PATH.
const DefaultExecutable = "ffmpeg"

// Converter shells out to ffmpeg.
type Converter struct {
	executable string
}

// New returns a converter using the given ffmpeg binary, or the one from
// PATH when empty.
func New(executable string) Converter {
	if executable == "" {
		executable = DefaultExecutable
	}
	return Converter{executable: executable}
}

// Args returns the ffmpeg arguments converting src into a wire-format raw
// file at dst.
func Args(src, dst string) []string {
	return []string{
		"-y", "-v", "fatal",
		"-i", src,
		"-f", "s32le",
		"-ar", fmt.Sprint(pedal.SampleRate),
		"-ac", fmt.Sprint(pedal.NumChannels),
		dst,
	}
}

// File converts src into a wire-format raw file at dst, overwriting it.
func (c Converter) File(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, c.executable, Args(src, dst)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%v: %s", err, out)
		}
		return err
	}
	return nil
}
