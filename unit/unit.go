// Package unit spawns and supervises the external processing unit. The
// unit is an opaque executable which consumes wire-format PCM on stdin,
// produces processed PCM on stdout and optionally accepts live pot updates
// on an inherited control descriptor:
//
//	<executable> [--control=<fd>] <effect> <p0> <p1> <p2> <p3>
//
// Pot arguments are formatted with two fractional digits in "0.00".."1.00".
package unit

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rs/xid"
)

// controlFD is the child-side descriptor number of the control pipe. The
// first ExtraFiles entry always lands on descriptor 3.
const controlFD = 3

// Spec describes a single run of the processing unit.
type Spec struct {
	// Executable is the path of the processing unit binary.
	Executable string
	// Effect is the identity passed as the first positional argument.
	Effect string
	// Pots are the four pot values in [0, 99].
	Pots [4]int
	// Stdin is the audio source. An *os.File is handed to the child as its
	// stdin descriptor directly; any other reader is pumped through a pipe
	// by a writer goroutine which closes the write end after the last byte.
	Stdin io.Reader
	// Control requests a live control channel for this run.
	Control bool
}

// Handle owns a running processing unit: the process itself, the read end
// of its stdout pipe and, if requested, the write end of the control pipe.
type Handle struct {
	id  string
	cmd *exec.Cmd
	out *os.File
	ctl *os.File

	waitErr error
	donec   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// args builds the child argv past the executable name.
func args(spec Spec, withControl bool) []string {
	argv := make([]string, 0, 6)
	if withControl {
		argv = append(argv, fmt.Sprintf("--control=%d", controlFD))
	}
	argv = append(argv, spec.Effect)
	for _, pot := range spec.Pots {
		argv = append(argv, fmt.Sprintf("%.2f", float64(clamp(pot))/100))
	}
	return argv
}

func clamp(value int) int {
	if value < 0 {
		return 0
	}
	if value > 99 {
		return 99
	}
	return value
}

// Spawn starts the processing unit. On return the parent holds exactly two
// descriptors related to the child: the stdout read end and, if requested,
// the control write end. Every child-owned pipe end is closed in the parent
// so that stream EOF propagates correctly. On error nothing is leaked.
func Spawn(spec Spec) (*Handle, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("spawn %v: %w", spec.Effect, err)
	}

	var ctlR, ctlW *os.File
	if spec.Control {
		ctlR, ctlW, err = os.Pipe()
		if err != nil {
			outR.Close()
			outW.Close()
			return nil, fmt.Errorf("spawn %v: %w", spec.Effect, err)
		}
	}

	cmd := exec.Command(spec.Executable, args(spec, spec.Control)...)
	cmd.Stdin = spec.Stdin
	cmd.Stdout = outW
	if spec.Control {
		cmd.ExtraFiles = []*os.File{ctlR}
	}

	if err := cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		if spec.Control {
			ctlR.Close()
			ctlW.Close()
		}
		return nil, fmt.Errorf("spawn %v: %w", spec.Effect, err)
	}

	// the child owns these ends now
	outW.Close()
	if spec.Control {
		ctlR.Close()
	}

	h := &Handle{
		id:    xid.New().String(),
		cmd:   cmd,
		out:   outR,
		ctl:   ctlW,
		donec: make(chan struct{}),
	}
	go func() {
		h.waitErr = cmd.Wait()
		close(h.donec)
	}()
	return h, nil
}

// ID returns the unique identity of this run.
func (h *Handle) ID() string {
	return h.id
}

// Output returns the read end of the unit's stdout pipe. It reports io.EOF
// once the unit has exited and all buffered output was consumed.
func (h *Handle) Output() io.Reader {
	return h.out
}

// Control returns the write end of the control pipe, nil if no control
// channel was requested.
func (h *Handle) Control() io.WriteCloser {
	if h.ctl == nil {
		return nil
	}
	return h.ctl
}

// Running reports whether the unit process is still alive.
func (h *Handle) Running() bool {
	select {
	case <-h.donec:
		return false
	default:
		return true
	}
}

// Done is closed once the unit process has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.donec
}

// Terminate asks the unit to exit and waits up to timeout. On timeout the
// unit is force-killed. Terminate always returns, regardless of how
// responsive the child is.
func (h *Handle) Terminate(timeout time.Duration) error {
	select {
	case <-h.donec:
		return h.waitErr
	default:
	}

	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// already gone
		<-h.donec
		return h.waitErr
	}

	select {
	case <-h.donec:
		return h.waitErr
	case <-time.After(timeout):
	}

	_ = h.cmd.Process.Kill()
	<-h.donec
	return h.waitErr
}

// Close releases the parent-side pipe ends. It is idempotent and safe to
// call regardless of process state.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = h.out.Close()
		if h.ctl != nil {
			if err := h.ctl.Close(); h.closeErr == nil {
				h.closeErr = err
			}
		}
	})
	return h.closeErr
}
