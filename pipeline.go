package pedal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipelined/pedal/control"
	"github.com/pipelined/pedal/effect"
	"github.com/pipelined/pedal/unit"
)

const (
	defaultTerminateTimeout = 500 * time.Millisecond
	defaultJoinTimeout      = time.Second
)

// Pipeline is the state machine coupling the processing unit, the control
// channel and the stream bridge. It is the only type the outside world
// talks to. All methods are safe for concurrent use; state is mutated only
// under the pipeline lock.
type Pipeline struct {
	executable       string
	openSink         SinkOpener
	notify           func(Notification)
	log              Logger
	live             bool
	terminateTimeout time.Duration
	joinTimeout      time.Duration

	m       sync.Mutex
	state   State
	source  Source
	current string
	params  map[string]Parameters

	handle *unit.Handle
	ctl    *control.Channel
	src    io.Reader
	sink   Sink
	br     *bridge
	paused atomic.Bool
	gen    int
}

// New creates a pipeline in Idle state and applies provided options.
func New(options ...Option) (*Pipeline, error) {
	p := &Pipeline{
		log:              silentLogger{},
		live:             true,
		terminateTimeout: defaultTerminateTimeout,
		joinTimeout:      defaultJoinTimeout,
		current:          effect.Default().Name,
		params:           make(map[string]Parameters),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// parameters returns the stored pots for an effect, seeding them from the
// catalogue defaults on first use.
func (p *Pipeline) parameters(name string) Parameters {
	if ps, ok := p.params[name]; ok {
		return ps
	}
	ps := Parameters{50, 50, 50, 50}
	if e, ok := effect.Get(name); ok {
		ps = Parameters(e.Defaults)
	}
	p.params[name] = ps
	return ps
}

// Start brings the pipeline to Playing. From Idle it spawns the processing
// unit, opens the sink and launches the bridge; from Paused it only clears
// the pause flag; while already Playing it is a no-op. Spawn and sink-open
// failures are returned synchronously and leave the pipeline Idle with no
// resources retained.
func (p *Pipeline) Start() error {
	p.m.Lock()
	ns, err := p.startLocked()
	p.m.Unlock()
	p.emit(ns)
	return err
}

// Resume is Start for readability at call sites which only ever resume.
func (p *Pipeline) Resume() error {
	return p.Start()
}

func (p *Pipeline) startLocked() ([]Notification, error) {
	switch p.state {
	case Playing:
		return nil, nil
	case Paused:
		p.paused.Store(false)
		p.state = Playing
		return []Notification{{State: Playing}}, nil
	case Idle, Failed:
	default:
		return nil, ErrInvalidState
	}

	if p.source == nil {
		return nil, ErrNoSource
	}
	if p.openSink == nil {
		return nil, ErrNoSink
	}
	if p.executable == "" {
		return nil, ErrNoUnit
	}

	p.state = Starting
	ns := []Notification{{State: Starting}}

	in, err := p.source.Open()
	if err != nil {
		p.state = Idle
		return append(ns, Notification{State: Idle, Err: err}), fmt.Errorf("open source: %w", err)
	}

	h, err := unit.Spawn(unit.Spec{
		Executable: p.executable,
		Effect:     p.current,
		Pots:       [4]int(p.parameters(p.current).Clamped()),
		Stdin:      in,
		Control:    p.live,
	})
	if err != nil {
		closeIfCloser(in)
		p.state = Idle
		return append(ns, Notification{State: Idle, Err: err}), err
	}
	// a file-backed source was inherited by the child; drop our copy.
	// anything else is pumped into the child by exec and stays ours to
	// close on teardown
	if f, ok := in.(*os.File); ok {
		f.Close()
		in = nil
	}

	sink, err := p.openSink(SampleRate, NumChannels, BufferSize)
	if err != nil {
		h.Terminate(p.terminateTimeout)
		h.Close()
		closeIfCloser(in)
		p.state = Idle
		return append(ns, Notification{State: Idle, Err: err}), fmt.Errorf("open sink: %w", err)
	}

	p.handle = h
	p.ctl = control.New(h.Control())
	p.src = in
	p.sink = sink
	p.paused.Store(false)
	p.br = newBridge(h.Output(), sink, &p.paused)
	go p.br.run()

	p.gen++
	go p.watch(p.gen, p.br)

	p.log.Debug(fmt.Sprintf("started unit %v effect %v", h.ID(), p.current))
	p.state = Playing
	return append(ns, Notification{State: Playing}), nil
}

// watch waits for the bridge of one run to finish and tears the pipeline
// down unless a stop or restart already took over.
func (p *Pipeline) watch(gen int, br *bridge) {
	err := br.wait()

	p.m.Lock()
	if p.gen != gen {
		p.m.Unlock()
		return
	}
	p.teardownLocked()
	var n Notification
	if err != nil {
		p.state = Failed
		n = Notification{State: Failed, Err: err}
		p.log.Info(fmt.Sprintf("stream failed: %v", err))
	} else {
		p.state = Idle
		n = Notification{State: Idle}
		p.log.Debug("stream finished")
	}
	p.m.Unlock()
	p.emit([]Notification{n})
}

// teardownLocked releases the resources of the active run. The bridge of
// the run must already be down or about to come down; callers join it.
func (p *Pipeline) teardownLocked() {
	if p.ctl != nil {
		p.ctl.Close()
	}
	if p.handle != nil {
		p.handle.Terminate(p.terminateTimeout)
		p.handle.Close()
	}
	if p.sink != nil {
		p.sink.Close()
	}
	closeIfCloser(p.src)
	p.handle = nil
	p.ctl = nil
	p.src = nil
	p.sink = nil
	p.br = nil
	p.paused.Store(false)
}

// Stop tears the pipeline down to Idle. It is callable from any state and
// returns within a bounded time; a bridge which does not come down in time
// is reported as an error, not waited on forever.
func (p *Pipeline) Stop() error {
	p.m.Lock()
	ns, err := p.stopLocked()
	p.m.Unlock()
	p.emit(ns)
	return err
}

func (p *Pipeline) stopLocked() ([]Notification, error) {
	if p.state == Idle {
		return nil, nil
	}
	if p.state == Failed {
		p.state = Idle
		return []Notification{{State: Idle}}, nil
	}

	p.state = Stopping
	ns := []Notification{{State: Stopping}}
	p.gen++ // the watcher of this run must not race the teardown

	var err error
	if p.ctl != nil {
		p.ctl.Close()
	}
	if p.handle != nil {
		p.handle.Terminate(p.terminateTimeout)
	}
	if p.br != nil && !p.br.join(p.joinTimeout) {
		err = fmt.Errorf("bridge did not stop within %v", p.joinTimeout)
		p.log.Info(err.Error())
	}
	if p.handle != nil {
		p.handle.Close()
	}
	if p.sink != nil {
		p.sink.Close()
	}
	closeIfCloser(p.src)
	p.handle = nil
	p.ctl = nil
	p.src = nil
	p.sink = nil
	p.br = nil
	p.paused.Store(false)

	p.state = Idle
	return append(ns, Notification{State: Idle}), err
}

// Pause keeps the process and pipes untouched and makes the bridge feed
// silence to the sink. It is a no-op unless the pipeline is Playing.
func (p *Pipeline) Pause() {
	p.m.Lock()
	var ns []Notification
	if p.state == Playing {
		p.paused.Store(true)
		p.state = Paused
		ns = []Notification{{State: Paused}}
	}
	p.m.Unlock()
	p.emit(ns)
}

// SetEffect selects the active effect. While Idle it only records the
// identity; while Playing or Paused the protocol has no hot-swap, so the
// pipeline performs exactly one stop+start cycle with the new identity and
// the stored parameters, preserving the pause state.
func (p *Pipeline) SetEffect(name string) error {
	p.m.Lock()
	ns, err := p.setEffectLocked(name)
	p.m.Unlock()
	p.emit(ns)
	return err
}

func (p *Pipeline) setEffectLocked(name string) ([]Notification, error) {
	if _, ok := effect.Get(name); !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEffect, name)
	}
	if name == p.current {
		return nil, nil
	}
	p.current = name
	if p.state != Playing && p.state != Paused {
		return nil, nil
	}

	wasPaused := p.state == Paused
	ns, err := p.stopLocked()
	if err != nil {
		return ns, err
	}
	startNs, err := p.startLocked()
	ns = append(ns, startNs...)
	if err != nil {
		return ns, err
	}
	if wasPaused {
		p.paused.Store(true)
		p.state = Paused
		ns = append(ns, Notification{State: Paused})
	}
	return ns, nil
}

// SetParameter updates one pot of the active effect. The update is stored
// in any state; it is forwarded over the control channel only while
// Playing. Values are clamped to [0, 99]; out-of-range indexes are
// ignored.
func (p *Pipeline) SetParameter(index, value int) {
	if index < 0 || index >= control.Pots {
		return
	}
	p.m.Lock()
	ps := p.parameters(p.current)
	ps[index] = control.Clamp(value)
	p.params[p.current] = ps
	ctl := p.ctl
	playing := p.state == Playing
	p.m.Unlock()

	if playing {
		ctl.Send(index, value)
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.m.Lock()
	defer p.m.Unlock()
	return p.state
}

// Effect returns the active effect identity.
func (p *Pipeline) Effect() string {
	p.m.Lock()
	defer p.m.Unlock()
	return p.current
}

// Parameters returns the pots of the active effect.
func (p *Pipeline) Parameters() Parameters {
	p.m.Lock()
	defer p.m.Unlock()
	return p.parameters(p.current)
}

// Waveform returns a copy of the most recent frame sent to the sink, nil
// when nothing is running.
func (p *Pipeline) Waveform() []float64 {
	p.m.Lock()
	br := p.br
	p.m.Unlock()
	if br == nil {
		return nil
	}
	return br.Waveform()
}

// Position returns the number of samples played in the current run.
func (p *Pipeline) Position() int64 {
	p.m.Lock()
	br := p.br
	p.m.Unlock()
	if br == nil {
		return 0
	}
	return br.Position()
}

// Latency reports the playback latency of the open sink, for UI display.
func (p *Pipeline) Latency() time.Duration {
	p.m.Lock()
	defer p.m.Unlock()
	if p.sink == nil {
		return 0
	}
	return p.sink.Latency()
}

// SetSource sets the audio source used by the next start.
func (p *Pipeline) SetSource(s Source) {
	p.m.Lock()
	p.source = s
	p.m.Unlock()
}

func (p *Pipeline) emit(ns []Notification) {
	if p.notify == nil {
		return
	}
	for _, n := range ns {
		p.notify(n)
	}
}

func closeIfCloser(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}
}
